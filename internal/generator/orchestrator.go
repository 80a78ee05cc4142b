package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/internal/audit"
	"github.com/restocktime/WizJock-sub001/internal/engine"
	"github.com/restocktime/WizJock-sub001/internal/metrics"
	"github.com/restocktime/WizJock-sub001/pkg/contracts"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// EngineResolver resolves a sport to its engine
type EngineResolver interface {
	Get(sport models.Sport) (contracts.PredictionEngine, error)
}

// ReportWriter persists a draft report atomically
type ReportWriter interface {
	CreateReport(ctx context.Context, report *models.Report) error
}

// AttemptLogger records generation attempts
type AttemptLogger interface {
	LogGeneration(ctx context.Context, log *audit.GenerationLog) error
}

const auditTimeout = 5 * time.Second

// Orchestrator runs an engine and persists its output as one draft report.
// It never retries; callers decide what to do with a failure.
type Orchestrator struct {
	engines   EngineResolver
	store     ReportWriter
	assembler *Assembler
	audit     AttemptLogger
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(engines EngineResolver, store ReportWriter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		engines:   engines,
		store:     store,
		assembler: NewAssembler(),
		logger:    logger,
		now:       time.Now,
	}
}

// WithAudit records every attempt through a
func (o *Orchestrator) WithAudit(a AttemptLogger) *Orchestrator {
	o.audit = a
	return o
}

// WithMetrics records generation metrics on m
func (o *Orchestrator) WithMetrics(m *metrics.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// GenerateReport runs the sport's engine on behalf of an operator
func (o *Orchestrator) GenerateReport(ctx context.Context, sport models.Sport) (*models.Report, error) {
	return o.generate(ctx, sport, audit.TriggerManual)
}

// GenerateScheduled runs the sport's engine on behalf of the scheduler
func (o *Orchestrator) GenerateScheduled(ctx context.Context, sport models.Sport) (*models.Report, error) {
	return o.generate(ctx, sport, audit.TriggerScheduled)
}

func (o *Orchestrator) generate(ctx context.Context, sport models.Sport, trigger string) (*models.Report, error) {
	start := o.now()
	logger := o.logger.With(zap.String("sport", string(sport)), zap.String("trigger", trigger))

	report, err := o.run(ctx, sport, logger)

	elapsed := o.now().Sub(start)
	status := attemptStatus(err)
	o.metrics.RecordGeneration(string(sport), status, elapsed.Seconds())

	entry := &audit.GenerationLog{
		Sport:         string(sport),
		TriggerSource: trigger,
		Status:        status,
		LatencyMs:     int(elapsed.Milliseconds()),
	}

	if err != nil {
		entry.ErrorMessage = err.Error()
		logger.Error("report generation failed",
			zap.String("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		entry.ReportID = &report.ID
		entry.PickCount = len(report.Picks)
		for _, pick := range report.Picks {
			o.metrics.RecordPick(string(sport), string(pick.Hierarchy))
		}
		logger.Info("report generated",
			zap.String("report_id", report.ID),
			zap.Int("picks", len(report.Picks)),
			zap.Int("injuries", len(report.Injuries)),
			zap.Int("intelligence", len(report.Intelligence)),
			zap.Duration("elapsed", elapsed))
	}

	o.logAttempt(ctx, entry, logger)

	return report, err
}

func (o *Orchestrator) run(ctx context.Context, sport models.Sport, logger *zap.Logger) (*models.Report, error) {
	eng, err := o.engines.Get(sport)
	if err != nil {
		return nil, &engine.GenerationError{Sport: sport, Err: err}
	}

	output, err := eng.Generate(ctx)
	if err != nil {
		return nil, err
	}

	assembly, err := o.assembler.Assemble(sport, output)
	if err != nil {
		return nil, &engine.GenerationError{Sport: sport, Err: fmt.Errorf("%w: %w", engine.ErrInvalidOutput, err)}
	}

	for _, warning := range assembly.Warnings {
		logger.Warn(warning, zap.String("report_id", assembly.Report.ID))
	}

	if err := o.store.CreateReport(ctx, assembly.Report); err != nil {
		return nil, err
	}

	return assembly.Report, nil
}

// logAttempt writes the audit row even when the request context is gone
func (o *Orchestrator) logAttempt(ctx context.Context, entry *audit.GenerationLog, logger *zap.Logger) {
	if o.audit == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := o.audit.LogGeneration(ctx, entry); err != nil {
		logger.Warn("failed to record generation attempt", zap.Error(err))
	}
}

func attemptStatus(err error) string {
	var timeout *engine.TimeoutError
	switch {
	case err == nil:
		return audit.StatusSuccess
	case errors.As(err, &timeout):
		return audit.StatusTimeout
	default:
		return audit.StatusFailed
	}
}
