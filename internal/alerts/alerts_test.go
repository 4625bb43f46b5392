package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// MockAlerter is a test implementation of Alerter.
type MockAlerter struct {
	alerts []Alert
	err    error
}

func NewMockAlerter(err error) *MockAlerter {
	return &MockAlerter{alerts: make([]Alert, 0), err: err}
}

func (m *MockAlerter) Send(ctx context.Context, alert Alert) error {
	m.alerts = append(m.alerts, alert)
	return m.err
}

func TestNewManager(t *testing.T) {
	alerter1 := NewMockAlerter(nil)
	alerter2 := NewMockAlerter(nil)

	manager := NewManager(zerolog.Nop(), alerter1, alerter2)

	if manager == nil {
		t.Fatal("Expected non-nil manager")
	}

	if len(manager.alerters) != 2 {
		t.Errorf("Expected 2 alerters, got %d", len(manager.alerters))
	}
}

func TestManager_Send(t *testing.T) {
	tests := []struct {
		name           string
		alert          Alert
		mockErr        error
		expectErr      bool
		checkTimestamp bool
	}{
		{
			name:           "Successful send",
			alert:          Alert{Title: "Test Alert", Message: "Test Message", Severity: SeverityInfo},
			mockErr:        nil,
			expectErr:      false,
			checkTimestamp: true,
		},
		{
			name:      "Send with error",
			alert:     Alert{Title: "Test Alert", Message: "Test Message", Severity: SeverityWarning},
			mockErr:   errors.New("send error"),
			expectErr: true,
		},
		{
			name: "Send with explicit timestamp",
			alert: Alert{
				Title: "Test Alert", Message: "Test Message", Severity: SeverityCritical,
				Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			mockErr:        nil,
			expectErr:      false,
			checkTimestamp: false,
		},
		{
			name: "Send with metadata",
			alert: Alert{
				Title: "Test Alert", Message: "Test Message", Severity: SeverityInfo,
				Metadata: map[string]interface{}{"key1": "value1", "key2": 123},
			},
			mockErr:   nil,
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAlerter := NewMockAlerter(tt.mockErr)
			manager := NewManager(zerolog.Nop(), mockAlerter)

			err := manager.Send(context.Background(), tt.alert)

			if tt.expectErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if len(mockAlerter.alerts) != 1 {
				t.Fatalf("Expected 1 alert to be sent, got %d", len(mockAlerter.alerts))
			}

			sentAlert := mockAlerter.alerts[0]
			if sentAlert.Title != tt.alert.Title {
				t.Errorf("Expected title %q, got %q", tt.alert.Title, sentAlert.Title)
			}
			if sentAlert.Message != tt.alert.Message {
				t.Errorf("Expected message %q, got %q", tt.alert.Message, sentAlert.Message)
			}
			if sentAlert.Severity != tt.alert.Severity {
				t.Errorf("Expected severity %q, got %q", tt.alert.Severity, sentAlert.Severity)
			}
			if tt.checkTimestamp && sentAlert.Timestamp.IsZero() {
				t.Error("Expected timestamp to be set, got zero value")
			}
		})
	}
}

func TestManager_SendToMultipleAlerters(t *testing.T) {
	alerter1 := NewMockAlerter(nil)
	alerter2 := NewMockAlerter(errors.New("alerter2 error"))
	alerter3 := NewMockAlerter(nil)

	manager := NewManager(zerolog.Nop(), alerter1, alerter2, alerter3)

	alert := Alert{Title: "Multi-send Test", Message: "Testing multiple alerters", Severity: SeverityWarning}

	err := manager.Send(context.Background(), alert)

	if err == nil {
		t.Error("Expected error from alerter2, got nil")
	}
	if len(alerter1.alerts) != 1 {
		t.Errorf("Expected alerter1 to receive 1 alert, got %d", len(alerter1.alerts))
	}
	if len(alerter2.alerts) != 1 {
		t.Errorf("Expected alerter2 to receive 1 alert, got %d", len(alerter2.alerts))
	}
	if len(alerter3.alerts) != 1 {
		t.Errorf("Expected alerter3 to receive 1 alert, got %d", len(alerter3.alerts))
	}
}

func TestManager_SendCritical(t *testing.T) {
	mockAlerter := NewMockAlerter(nil)
	manager := NewManager(zerolog.Nop(), mockAlerter)

	err := manager.SendCritical(context.Background(), "Critical Test", "Critical message", map[string]interface{}{
		"test": "value",
	})

	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(mockAlerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(mockAlerter.alerts))
	}

	alert := mockAlerter.alerts[0]
	if alert.Title != "Critical Test" {
		t.Errorf("Expected title 'Critical Test', got %q", alert.Title)
	}
	if alert.Severity != SeverityCritical {
		t.Errorf("Expected severity CRITICAL, got %q", alert.Severity)
	}
	if alert.Metadata["test"] != "value" {
		t.Errorf("Expected metadata test='value', got %v", alert.Metadata["test"])
	}
}

func TestManager_SendWarning(t *testing.T) {
	mockAlerter := NewMockAlerter(nil)
	manager := NewManager(zerolog.Nop(), mockAlerter)

	err := manager.SendWarning(context.Background(), "Warning Test", "Warning message", nil)

	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(mockAlerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(mockAlerter.alerts))
	}
	if mockAlerter.alerts[0].Severity != SeverityWarning {
		t.Errorf("Expected severity WARNING, got %q", mockAlerter.alerts[0].Severity)
	}
}

func TestManager_SendInfo(t *testing.T) {
	mockAlerter := NewMockAlerter(nil)
	manager := NewManager(zerolog.Nop(), mockAlerter)

	err := manager.SendInfo(context.Background(), "Info Test", "Info message", nil)

	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(mockAlerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(mockAlerter.alerts))
	}
	if mockAlerter.alerts[0].Severity != SeverityInfo {
		t.Errorf("Expected severity INFO, got %q", mockAlerter.alerts[0].Severity)
	}
}

func TestLogAlerter_Send(t *testing.T) {
	alerter := NewLogAlerter(zerolog.Nop())

	tests := []struct {
		name     string
		severity Severity
	}{
		{"Critical alert", SeverityCritical},
		{"Warning alert", SeverityWarning},
		{"Info alert", SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := Alert{
				Title: "Log Test", Message: "Log test message", Severity: tt.severity,
				Timestamp: time.Now(),
				Metadata:  map[string]interface{}{"test_key": "test_value"},
			}

			if err := alerter.Send(context.Background(), alert); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestConsoleAlerter_Send(t *testing.T) {
	alerter := NewConsoleAlerter()

	tests := []struct {
		name     string
		severity Severity
	}{
		{"Critical alert to console", SeverityCritical},
		{"Warning alert to console", SeverityWarning},
		{"Info alert to console", SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := Alert{
				Title: "Console Test", Message: "Console test message", Severity: tt.severity,
				Timestamp: time.Now(),
				Metadata:  map[string]interface{}{"symbol": "SOL", "price": 150.0},
			}

			if err := alerter.Send(context.Background(), alert); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestConsoleAlerter_SendWithoutMetadata(t *testing.T) {
	alerter := NewConsoleAlerter()

	alert := Alert{
		Title: "No Metadata Test", Message: "Testing without metadata", Severity: SeverityInfo,
		Timestamp: time.Now(), Metadata: nil,
	}

	if err := alerter.Send(context.Background(), alert); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestAlertEmergencyExit(t *testing.T) {
	mockAlerter := NewMockAlerter(nil)
	manager := NewManager(zerolog.Nop(), mockAlerter)

	AlertEmergencyExit(context.Background(), manager, "drop threshold breached", map[string]interface{}{
		"token": "SOL",
	})

	if len(mockAlerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(mockAlerter.alerts))
	}
	alert := mockAlerter.alerts[0]
	if alert.Severity != SeverityCritical {
		t.Errorf("Expected CRITICAL severity, got %q", alert.Severity)
	}
	if alert.Metadata["token"] != "SOL" {
		t.Errorf("Expected token SOL, got %v", alert.Metadata["token"])
	}
}

func TestAlertConsensusFailure(t *testing.T) {
	mockAlerter := NewMockAlerter(nil)
	manager := NewManager(zerolog.Nop(), mockAlerter)

	AlertConsensusFailure(context.Background(), manager, "prop-1", "insufficient votes")

	if len(mockAlerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(mockAlerter.alerts))
	}
	alert := mockAlerter.alerts[0]
	if alert.Severity != SeverityWarning {
		t.Errorf("Expected WARNING severity, got %q", alert.Severity)
	}
	if alert.Metadata["proposal_id"] != "prop-1" {
		t.Errorf("Expected proposal_id prop-1, got %v", alert.Metadata["proposal_id"])
	}
}

func TestAlertRPCDegraded(t *testing.T) {
	mockAlerter := NewMockAlerter(nil)
	manager := NewManager(zerolog.Nop(), mockAlerter)

	AlertRPCDegraded(context.Background(), manager, "https://rpc.example.com", errors.New("timeout"))

	if len(mockAlerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(mockAlerter.alerts))
	}
	alert := mockAlerter.alerts[0]
	if alert.Severity != SeverityWarning {
		t.Errorf("Expected WARNING severity, got %q", alert.Severity)
	}
	if alert.Metadata["endpoint"] != "https://rpc.example.com" {
		t.Errorf("Expected endpoint set, got %v", alert.Metadata["endpoint"])
	}
}

func TestAlertHalted(t *testing.T) {
	mockAlerter := NewMockAlerter(nil)
	manager := NewManager(zerolog.Nop(), mockAlerter)

	AlertHalted(context.Background(), manager, true, "manual halt via control channel")

	if len(mockAlerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(mockAlerter.alerts))
	}
	if mockAlerter.alerts[0].Title != "Trading Halted" {
		t.Errorf("Expected title 'Trading Halted', got %q", mockAlerter.alerts[0].Title)
	}
}

func TestSeverityConstants(t *testing.T) {
	if SeverityInfo != "INFO" {
		t.Errorf("Expected SeverityInfo to be 'INFO', got %q", SeverityInfo)
	}
	if SeverityWarning != "WARNING" {
		t.Errorf("Expected SeverityWarning to be 'WARNING', got %q", SeverityWarning)
	}
	if SeverityCritical != "CRITICAL" {
		t.Errorf("Expected SeverityCritical to be 'CRITICAL', got %q", SeverityCritical)
	}
}
