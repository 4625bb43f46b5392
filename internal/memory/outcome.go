// Package memory implements the Guardian's optional append-only outcome
// log: a record of what the swarm decided, whether it was executed, and
// what actually happened, kept for later inspection. The core never reads
// its own history back into a decision — this is write-only persisted
// state.
package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Outcome is one row of the outcome log.
type Outcome struct {
	ID               uuid.UUID
	StrategyID       string
	Timestamp        time.Time
	Success          bool
	ConfidenceScores map[string]float64
	ActualProfit     float64
	PredictedProfit  float64
	ExecutionTimeMs  int64
	AgentsInvolved   []string
}

// Log appends Outcome rows to Postgres. A nil pool disables persistence
// entirely (Append becomes a no-op) so the core never requires a
// database to run.
type Log struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewLog builds a Log. Pass a nil pool to disable persistence.
func NewLog(db *pgxpool.Pool, log zerolog.Logger) *Log {
	return &Log{db: db, log: log}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS guardian_outcomes (
	id                UUID PRIMARY KEY,
	strategy_id       TEXT NOT NULL,
	occurred_at       TIMESTAMPTZ NOT NULL,
	success           BOOLEAN NOT NULL,
	confidence_scores JSONB NOT NULL,
	actual_profit     DOUBLE PRECISION NOT NULL,
	predicted_profit  DOUBLE PRECISION NOT NULL,
	execution_time_ms BIGINT NOT NULL,
	agents_involved   JSONB NOT NULL
)`

// EnsureSchema creates the outcome table if it doesn't already exist.
// Safe to call on every startup.
func (l *Log) EnsureSchema(ctx context.Context) error {
	if l == nil || l.db == nil {
		return nil
	}
	_, err := l.db.Exec(ctx, createTableSQL)
	return err
}

// Append records one outcome. Failures are logged, not propagated — the
// outcome log is a diagnostic aid, never a gate on the control loop.
func (l *Log) Append(ctx context.Context, o Outcome) {
	if l == nil || l.db == nil {
		return
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	confidenceJSON, err := json.Marshal(o.ConfidenceScores)
	if err != nil {
		l.log.Error().Err(err).Msg("memory: marshal confidence scores failed")
		return
	}
	agentsJSON, err := json.Marshal(o.AgentsInvolved)
	if err != nil {
		l.log.Error().Err(err).Msg("memory: marshal agents involved failed")
		return
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO guardian_outcomes
			(id, strategy_id, occurred_at, success, confidence_scores, actual_profit, predicted_profit, execution_time_ms, agents_involved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.StrategyID, o.Timestamp, o.Success, confidenceJSON, o.ActualProfit, o.PredictedProfit, o.ExecutionTimeMs, agentsJSON,
	)
	if err != nil {
		l.log.Error().Err(err).Str("strategy_id", o.StrategyID).Msg("memory: append outcome failed")
	}
}
