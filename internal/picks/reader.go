package picks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/internal/metrics"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Source reads published picks from the system of record
type Source interface {
	ListPublishedPicks(ctx context.Context, filters models.PickFilters) ([]models.PublishedPick, error)
	ListLinkedInjuries(ctx context.Context, pickIDs []string, impact models.InjuryImpact) ([]models.LinkedInjury, error)
}

// Cache is the read-side accelerator in front of Source
type Cache interface {
	Get(ctx context.Context, f models.PickFilters) ([]models.PublishedPick, bool, error)
	Set(ctx context.Context, f models.PickFilters, picks []models.PublishedPick) error
}

// Reader serves published picks cache-first. Cache failures degrade to a
// store read; they are never returned.
type Reader struct {
	source  Source
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewReader creates a reader. cache may be nil.
func NewReader(source Source, cache Cache, m *metrics.Metrics, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{source: source, cache: cache, metrics: m, logger: logger}
}

// ListPublished returns the published picks matching filters, each
// annotated with a summary of its critical injuries
func (r *Reader) ListPublished(ctx context.Context, filters models.PickFilters) ([]models.PublishedPick, error) {
	if r.cache != nil {
		cached, found, err := r.cache.Get(ctx, filters)
		switch {
		case err != nil:
			r.metrics.RecordCacheLookup("error")
			r.logger.Warn("picks cache read failed", zap.Error(err))
		case found:
			r.metrics.RecordCacheLookup("hit")
			return cached, nil
		default:
			r.metrics.RecordCacheLookup("miss")
		}
	}

	published, err := r.source.ListPublishedPicks(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list published picks: %w", err)
	}

	if len(published) > 0 {
		ids := make([]string, len(published))
		for i := range published {
			ids[i] = published[i].ID
		}

		linked, err := r.source.ListLinkedInjuries(ctx, ids, models.ImpactCritical)
		if err != nil {
			return nil, fmt.Errorf("list linked injuries: %w", err)
		}

		byPick := make(map[string][]models.LinkedInjury, len(linked))
		for _, li := range linked {
			byPick[li.PickID] = append(byPick[li.PickID], li)
		}
		for i := range published {
			published[i].InjurySummary = InjurySummary(byPick[published[i].ID])
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, filters, published); err != nil {
			r.logger.Warn("picks cache write failed", zap.Error(err))
		}
	}

	return published, nil
}

// InjurySummary condenses the critical injuries linked to a pick into a
// short label. Sidelined players outrank questionable ones.
func InjurySummary(injuries []models.LinkedInjury) string {
	out, doubtful := 0, 0
	for _, injury := range injuries {
		if injury.Impact != models.ImpactCritical {
			continue
		}
		switch {
		case injury.Status.Sidelined():
			out++
		case injury.Status == models.InjuryQuestionable:
			doubtful++
		}
	}

	switch {
	case out == 1:
		return "Key player out"
	case out > 1:
		return fmt.Sprintf("%d key players out", out)
	case doubtful == 1:
		return "Key player questionable"
	case doubtful > 1:
		return fmt.Sprintf("%d key players questionable", doubtful)
	}
	return ""
}
