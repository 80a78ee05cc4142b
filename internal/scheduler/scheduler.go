package scheduler

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/internal/engine"
	"github.com/restocktime/WizJock-sub001/internal/retry"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Generator produces a report for a sport
type Generator interface {
	GenerateScheduled(ctx context.Context, sport models.Sport) (*models.Report, error)
}

// Runner triggers report generation on a cron schedule. Retrying is its
// decision; the orchestrator itself never retries.
type Runner struct {
	cron      *cron.Cron
	generator Generator
	policy    *retry.RetryPolicy
	logger    *zap.Logger
	baseCtx   context.Context
}

// New creates a runner. Specs use the six-field (seconds) cron format.
func New(baseCtx context.Context, generator Generator, policy *retry.RetryPolicy, logger *zap.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		generator: generator,
		policy:    policy,
		logger:    logger,
		baseCtx:   baseCtx,
	}
}

// Schedule registers generation of each sport on spec
func (r *Runner) Schedule(spec string, sports []models.Sport) error {
	for _, sport := range sports {
		sport := sport
		if _, err := r.cron.AddFunc(spec, func() { r.RunOnce(r.baseCtx, sport) }); err != nil {
			return err
		}
	}
	return nil
}

// RunOnce generates one sport's report under the retry policy
func (r *Runner) RunOnce(ctx context.Context, sport models.Sport) {
	logger := r.logger.With(zap.String("sport", string(sport)))

	var report *models.Report
	err := r.policy.Execute(ctx, func(ctx context.Context) error {
		var err error
		report, err = r.generator.GenerateScheduled(ctx, sport)
		if err != nil {
			logger.Warn("scheduled generation attempt failed", zap.Error(err))
		}
		return err
	})

	if err != nil {
		logger.Error("scheduled generation gave up", zap.Error(err))
		return
	}

	logger.Info("scheduled report ready for review",
		zap.String("report_id", report.ID),
		zap.Int("picks", len(report.Picks)))
}

// Retryable reports whether a generation failure may succeed on another
// attempt. Engine failures and timeouts can; rejected payloads cannot.
func Retryable(err error) bool {
	var genErr *engine.GenerationError
	if errors.As(err, &genErr) {
		return !errors.Is(err, engine.ErrInvalidOutput)
	}
	return true
}

func (r *Runner) Start() {
	r.logger.Info("cron started", zap.Int("jobs", len(r.cron.Entries())))
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}
