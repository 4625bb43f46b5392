// Package alerts delivers operator-facing notifications — emergency
// exits, consensus failures, RPC degradation, halts — through one or
// more Alerter channels.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Severity levels for alerts.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Alert represents an alert message.
type Alert struct {
	Title     string
	Message   string
	Severity  Severity
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// Alerter defines the interface for sending alerts.
type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// Manager fans an alert out to every configured channel, collecting
// but not short-circuiting on per-channel failures.
type Manager struct {
	alerters []Alerter
	log      zerolog.Logger
}

// NewManager creates a new alert manager.
func NewManager(log zerolog.Logger, alerters ...Alerter) *Manager {
	return &Manager{alerters: alerters, log: log}
}

// Send sends an alert to all configured alerters.
func (m *Manager) Send(ctx context.Context, alert Alert) error {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	var lastErr error
	for _, alerter := range m.alerters {
		if err := alerter.Send(ctx, alert); err != nil {
			m.log.Error().Err(err).Str("title", alert.Title).Msg("alerts: channel send failed")
			lastErr = err
		}
	}

	return lastErr
}

// SendCritical is a convenience method for sending critical alerts.
func (m *Manager) SendCritical(ctx context.Context, title, message string, metadata map[string]interface{}) error {
	return m.Send(ctx, Alert{Title: title, Message: message, Severity: SeverityCritical, Metadata: metadata})
}

// SendWarning is a convenience method for sending warning alerts.
func (m *Manager) SendWarning(ctx context.Context, title, message string, metadata map[string]interface{}) error {
	return m.Send(ctx, Alert{Title: title, Message: message, Severity: SeverityWarning, Metadata: metadata})
}

// SendInfo is a convenience method for sending info alerts.
func (m *Manager) SendInfo(ctx context.Context, title, message string, metadata map[string]interface{}) error {
	return m.Send(ctx, Alert{Title: title, Message: message, Severity: SeverityInfo, Metadata: metadata})
}

// LogAlerter logs alerts using zerolog.
type LogAlerter struct {
	log zerolog.Logger
}

// NewLogAlerter creates a new log-based alerter.
func NewLogAlerter(log zerolog.Logger) *LogAlerter {
	return &LogAlerter{log: log}
}

// Send sends an alert by logging it.
func (l *LogAlerter) Send(ctx context.Context, alert Alert) error {
	var event *zerolog.Event
	switch alert.Severity {
	case SeverityCritical:
		event = l.log.Error()
	case SeverityWarning:
		event = l.log.Warn()
	default:
		event = l.log.Info()
	}

	for key, value := range alert.Metadata {
		event = event.Interface(key, value)
	}

	event.
		Str("alert_title", alert.Title).
		Str("alert_severity", string(alert.Severity)).
		Time("alert_time", alert.Timestamp).
		Msg(alert.Message)

	return nil
}

// ConsoleAlerter prints alerts to console with prominent formatting, for
// operators running the agent interactively without a log aggregator.
type ConsoleAlerter struct{}

// NewConsoleAlerter creates a new console-based alerter.
func NewConsoleAlerter() *ConsoleAlerter {
	return &ConsoleAlerter{}
}

// Send sends an alert by printing to console.
func (c *ConsoleAlerter) Send(ctx context.Context, alert Alert) error {
	banner := "ALERT"
	switch alert.Severity {
	case SeverityCritical:
		banner = "CRITICAL ALERT"
	case SeverityWarning:
		banner = "WARNING ALERT"
	}

	fmt.Println()
	fmt.Println("========================================")
	fmt.Println(banner)
	fmt.Println("========================================")
	fmt.Printf("Title: %s\n", alert.Title)
	fmt.Printf("Message: %s\n", alert.Message)
	fmt.Printf("Severity: %s\n", alert.Severity)
	fmt.Printf("Time: %s\n", alert.Timestamp.Format(time.RFC3339))

	if len(alert.Metadata) > 0 {
		fmt.Println("Metadata:")
		for key, value := range alert.Metadata {
			fmt.Printf("  - %s: %v\n", key, value)
		}
	}

	fmt.Println("========================================")
	fmt.Println()

	return nil
}

// AlertEmergencyExit sends a critical alert that the guardian has
// triggered an emergency exit.
func AlertEmergencyExit(ctx context.Context, m *Manager, reason string, metadata map[string]interface{}) {
	m.SendCritical(ctx, "Emergency Exit Triggered", reason, metadata)
}

// AlertConsensusFailure sends a warning that a swarm round failed to
// reach consensus on a proposal.
func AlertConsensusFailure(ctx context.Context, m *Manager, proposalID, reason string) {
	m.SendWarning(ctx, "Swarm Consensus Not Reached", reason, map[string]interface{}{
		"proposal_id": proposalID,
	})
}

// AlertRPCDegraded sends a warning that the RPC gateway has exhausted
// its endpoint pool or tripped a circuit breaker.
func AlertRPCDegraded(ctx context.Context, m *Manager, endpoint string, err error) {
	m.SendWarning(ctx, "RPC Endpoint Degraded", fmt.Sprintf("endpoint %s: %v", endpoint, err), map[string]interface{}{
		"endpoint": endpoint,
		"error":    err.Error(),
	})
}

// AlertHalted sends an info alert that trading has been halted or
// resumed via control signal.
func AlertHalted(ctx context.Context, m *Manager, halted bool, reason string) {
	title := "Trading Resumed"
	if halted {
		title = "Trading Halted"
	}
	m.SendInfo(ctx, title, reason, nil)
}
