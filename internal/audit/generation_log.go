package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// Generation attempt statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

// Trigger sources
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// GenerationLogger records report generation attempts to report_generation_logs
type GenerationLogger struct {
	db *sql.DB
}

// GenerationLog represents a generation attempt log entry
type GenerationLog struct {
	Sport         string
	ReportID      *string
	TriggerSource string // "manual" or "scheduled"
	Status        string // "success", "failed", "timeout"
	LatencyMs     int
	PickCount     int
	ErrorMessage  string
}

// NewGenerationLogger creates a new generation logger
func NewGenerationLogger(db *sql.DB) *GenerationLogger {
	return &GenerationLogger{
		db: db,
	}
}

// LogGeneration logs a generation attempt
func (l *GenerationLogger) LogGeneration(ctx context.Context, log *GenerationLog) error {
	query := `
		INSERT INTO report_generation_logs (
			sport, report_id, trigger_source, status, latency_ms, pick_count, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := l.db.ExecContext(ctx, query,
		log.Sport,
		log.ReportID,
		log.TriggerSource,
		log.Status,
		log.LatencyMs,
		log.PickCount,
		log.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to log generation: %w", err)
	}

	return nil
}
