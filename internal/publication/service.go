package publication

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/internal/metrics"
	"github.com/restocktime/WizJock-sub001/internal/store"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Transitioner applies publication state changes in the system of record
type Transitioner interface {
	PublishReport(ctx context.Context, reportID, publishedBy string, at time.Time) (*store.PublishResult, error)
	UnpublishReport(ctx context.Context, reportID string) (models.Sport, error)
}

// Invalidator drops cached views of a sport's published picks
type Invalidator interface {
	InvalidateSport(ctx context.Context, sport models.Sport) (int, error)
}

// EventPublisher announces committed state changes
type EventPublisher interface {
	PublishReportEvent(ctx context.Context, event models.ReportEvent) error
}

// afterCommitTimeout bounds the best-effort work that follows a commit
const afterCommitTimeout = 5 * time.Second

// Service is the report publication state machine:
// draft → published → unpublished, with at most one published report per sport.
// The transition commits first; cache invalidation and events follow and
// never undo it.
type Service struct {
	store   Transitioner
	cache   Invalidator
	events  EventPublisher
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates the publication service. cache and events may be nil.
func NewService(st Transitioner, cache Invalidator, events EventPublisher, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   st,
		cache:   cache,
		events:  events,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Publish makes reportID the published report of its sport and returns the
// publish time. publishedBy may be empty.
func (s *Service) Publish(ctx context.Context, reportID, publishedBy string) (time.Time, error) {
	publishedBy = strings.TrimSpace(publishedBy)
	at := s.now().UTC()
	result, err := s.store.PublishReport(ctx, reportID, publishedBy, at)
	if err != nil {
		s.metrics.RecordTransition("unknown", "publish", transitionStatus(err))
		return time.Time{}, err
	}

	s.metrics.RecordTransition(string(result.Sport), "publish", "success")
	s.logger.Info("report published",
		zap.String("report_id", reportID),
		zap.String("sport", string(result.Sport)),
		zap.String("published_by", publishedBy),
		zap.Strings("demoted", result.Demoted))

	events := []models.ReportEvent{{
		Type: models.EventPublished, ReportID: reportID, Sport: result.Sport, At: result.PublishedAt, By: publishedBy,
	}}
	for _, id := range result.Demoted {
		events = append(events, models.ReportEvent{
			Type: models.EventDemoted, ReportID: id, Sport: result.Sport, At: result.PublishedAt, By: publishedBy,
		})
	}

	s.afterCommit(ctx, result.Sport, events)

	return result.PublishedAt, nil
}

// Unpublish withdraws a published report
func (s *Service) Unpublish(ctx context.Context, reportID string) error {
	sport, err := s.store.UnpublishReport(ctx, reportID)
	if err != nil {
		s.metrics.RecordTransition("unknown", "unpublish", transitionStatus(err))
		return err
	}

	s.metrics.RecordTransition(string(sport), "unpublish", "success")
	s.logger.Info("report unpublished",
		zap.String("report_id", reportID),
		zap.String("sport", string(sport)))

	s.afterCommit(ctx, sport, []models.ReportEvent{{
		Type: models.EventUnpublished, ReportID: reportID, Sport: sport, At: s.now().UTC(),
	}})

	return nil
}

// InvalidateSport drops the sport's cached picks after an edit that
// touched published data. Failures are logged only.
func (s *Service) InvalidateSport(ctx context.Context, sport models.Sport) {
	s.afterCommit(ctx, sport, nil)
}

// afterCommit runs the best-effort side effects of a committed change.
// A stale cache entry left behind here expires on its TTL.
func (s *Service) afterCommit(ctx context.Context, sport models.Sport, events []models.ReportEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterCommitTimeout)
	defer cancel()

	if s.cache != nil {
		if n, err := s.cache.InvalidateSport(ctx, sport); err != nil {
			s.metrics.RecordInvalidationFailure(string(sport))
			s.logger.Error("cache invalidation failed; stale picks will expire on TTL",
				zap.String("sport", string(sport)),
				zap.Error(err))
		} else {
			s.logger.Debug("cache invalidated",
				zap.String("sport", string(sport)),
				zap.Int("keys", n))
		}
	}

	if s.events == nil {
		return
	}
	for _, event := range events {
		if err := s.events.PublishReportEvent(ctx, event); err != nil {
			s.logger.Warn("failed to publish report event",
				zap.String("report_id", event.ReportID),
				zap.String("type", string(event.Type)),
				zap.Error(err))
		}
	}
}

func transitionStatus(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
