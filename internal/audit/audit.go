// Package audit keeps a durable trail of the guardian's own control
// decisions — proposal outcomes, emergency exits, halt/resume signals —
// distinct from internal/memory's strategy-outcome log, which tracks
// whether a trade was profitable rather than why it was made.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ajitpratap0/solana-guardian/internal/metrics"
)

// EventType represents the type of audit event.
type EventType string

const (
	EventProposalDecided EventType = "PROPOSAL_DECIDED"
	EventEmergencyExit   EventType = "EMERGENCY_EXIT"
	EventTradingHalted   EventType = "TRADING_HALTED"
	EventTradingResumed  EventType = "TRADING_RESUMED"
	EventRPCDegraded     EventType = "RPC_DEGRADED"
	EventConfigLoaded    EventType = "CONFIG_LOADED"
	EventAgentStarted    EventType = "AGENT_STARTED"
	EventAgentFailed     EventType = "AGENT_FAILED"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Event represents a single audit log event.
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	EventType  EventType              `json:"event_type"`
	Severity   Severity               `json:"severity"`
	ProposalID string                 `json:"proposal_id,omitempty"`
	AgentID    string                 `json:"agent_id,omitempty"`
	Action     string                 `json:"action"`
	Success    bool                   `json:"success"`
	ErrorMsg   string                 `json:"error_message,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS guardian_audit_log (
	id          UUID PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	event_type  TEXT NOT NULL,
	severity    TEXT NOT NULL,
	proposal_id TEXT NOT NULL DEFAULT '',
	agent_id    TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	success     BOOLEAN NOT NULL,
	error_msg   TEXT NOT NULL DEFAULT '',
	metadata    JSONB NOT NULL,
	duration_ms BIGINT NOT NULL DEFAULT 0
)`

// Logger handles audit logging operations. A nil db disables
// persistence; events still reach the structured logger.
type Logger struct {
	db      *pgxpool.Pool
	enabled bool
	log     zerolog.Logger
}

// NewLogger creates a new audit logger.
func NewLogger(db *pgxpool.Pool, enabled bool, log zerolog.Logger) *Logger {
	return &Logger{db: db, enabled: enabled, log: log}
}

// EnsureSchema creates the audit table if persistence is enabled and it
// doesn't already exist. Safe to call on every startup.
func (l *Logger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.db == nil {
		return nil
	}
	_, err := l.db.Exec(ctx, createTableSQL)
	return err
}

// Log records an audit event to the structured logger, and to Postgres
// when a pool is configured. A nil or disabled Logger records nothing.
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if l == nil || !l.enabled {
		return nil
	}

	start := time.Now()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	logEvent := l.log.With().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.EventType)).
		Str("severity", string(event.Severity)).
		Str("proposal_id", event.ProposalID).
		Str("agent_id", event.AgentID).
		Str("action", event.Action).
		Bool("success", event.Success).
		Logger()

	if event.ErrorMsg != "" {
		logEvent = logEvent.With().Str("error", event.ErrorMsg).Logger()
	}

	switch event.Severity {
	case SeverityCritical, SeverityError:
		logEvent.Error().Msg("audit event")
	case SeverityWarning:
		logEvent.Warn().Msg("audit event")
	default:
		logEvent.Info().Msg("audit event")
	}

	if l.db != nil {
		if err := l.persistEvent(ctx, event); err != nil {
			durationMs := float64(time.Since(start).Milliseconds())
			metrics.RecordAuditLog(string(event.EventType), false, durationMs)
			metrics.RecordAuditLogFailure("persist_error", string(event.EventType))
			return err
		}
	}

	metrics.RecordAuditLog(string(event.EventType), true, float64(time.Since(start).Milliseconds()))

	return nil
}

func (l *Logger) persistEvent(ctx context.Context, event *Event) error {
	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			l.log.Error().Err(err).Msg("audit: marshal metadata failed")
			metadataJSON = []byte("{}")
		}
	} else {
		metadataJSON = []byte("{}")
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO guardian_audit_log
			(id, occurred_at, event_type, severity, proposal_id, agent_id, action, success, error_msg, metadata, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.ID, event.Timestamp, event.EventType, event.Severity, event.ProposalID, event.AgentID,
		event.Action, event.Success, event.ErrorMsg, metadataJSON, event.DurationMs,
	)
	if err != nil {
		l.log.Error().Err(err).Str("event_id", event.ID.String()).Msg("audit: persist event failed")
		return err
	}
	return nil
}

// LogProposalDecided records a swarm consensus outcome.
func (l *Logger) LogProposalDecided(ctx context.Context, proposalID string, consensus bool, decision string, metadata map[string]interface{}) error {
	return l.Log(ctx, &Event{
		EventType:  EventProposalDecided,
		Severity:   SeverityInfo,
		ProposalID: proposalID,
		Action:     "proposal decided: " + decision,
		Success:    consensus,
		Metadata:   metadata,
	})
}

// LogEmergencyExit records an emergency-exit trigger.
func (l *Logger) LogEmergencyExit(ctx context.Context, proposalID, reason string, success bool, errorMsg string) error {
	return l.Log(ctx, &Event{
		EventType:  EventEmergencyExit,
		Severity:   SeverityCritical,
		ProposalID: proposalID,
		Action:     reason,
		Success:    success,
		ErrorMsg:   errorMsg,
	})
}

// LogHaltControl records a halt/resume control signal.
func (l *Logger) LogHaltControl(ctx context.Context, halted bool, reason string) error {
	eventType := EventTradingResumed
	if halted {
		eventType = EventTradingHalted
	}
	return l.Log(ctx, &Event{EventType: eventType, Severity: SeverityWarning, Action: reason, Success: true})
}

// LogAgentFailure records an agent plugin failure.
func (l *Logger) LogAgentFailure(ctx context.Context, agentID, action, errorMsg string) error {
	return l.Log(ctx, &Event{
		EventType: EventAgentFailed,
		Severity:  SeverityError,
		AgentID:   agentID,
		Action:    action,
		Success:   false,
		ErrorMsg:  errorMsg,
	})
}
