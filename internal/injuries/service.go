package injuries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/restocktime/WizJock-sub001/internal/linking"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Store is the persistence the manual injury path needs
type Store interface {
	GetReport(ctx context.Context, id string) (*models.Report, error)
	GetInjury(ctx context.Context, id string) (*models.InjuryUpdate, error)
	CreateInjuryWithLinks(ctx context.Context, injury *models.InjuryUpdate, pickIDs []string) (int, error)
	LinkInjury(ctx context.Context, injuryID string, pickIDs []string) (int, error)
}

// Invalidator drops cached published picks of a sport
type Invalidator interface {
	InvalidateSport(ctx context.Context, sport models.Sport)
}

// LinkResult reports what an auto-link pass did
type LinkResult struct {
	Injury  *models.InjuryUpdate `json:"injury"`
	Matched []string             `json:"matched_pick_ids"`
	Added   int                  `json:"links_added"`
}

// Service handles injuries entered by an operator after generation
type Service struct {
	store  Store
	cache  Invalidator
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates the manual injury service. cache may be nil.
func NewService(store Store, cache Invalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: cache, logger: logger, now: time.Now}
}

// AddInjury stores an injury on reportID and, when the player is out or
// done for the season, links it to the report's picks that mention the
// player or team
func (s *Service) AddInjury(ctx context.Context, reportID string, injury models.InjuryUpdate) (*LinkResult, error) {
	if err := injury.Validate(); err != nil {
		return nil, err
	}

	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	injury.ID = uuid.NewString()
	injury.ReportID = report.ID
	injury.AffectedPickIDs = nil
	if injury.ReportedAt.IsZero() {
		injury.ReportedAt = s.now().UTC()
	}

	// Injury and links commit together
	autoLink := linking.ShouldAutoLink(&injury)
	var matched []string
	if autoLink {
		matched = linking.MatchPicks(&injury, report.Picks)
	}

	added, err := s.store.CreateInjuryWithLinks(ctx, &injury, matched)
	if err != nil {
		return nil, err
	}

	result := &LinkResult{Injury: &injury}
	if autoLink {
		s.linked(ctx, report, result, matched, added)
	}
	return result, nil
}

// AutoLink reruns the link heuristic for an existing injury. Links are
// only ever added, and repeating the call adds nothing new.
func (s *Service) AutoLink(ctx context.Context, injuryID string) (*LinkResult, error) {
	injury, err := s.store.GetInjury(ctx, injuryID)
	if err != nil {
		return nil, err
	}

	report, err := s.store.GetReport(ctx, injury.ReportID)
	if err != nil {
		return nil, fmt.Errorf("loading report for injury %s: %w", injuryID, err)
	}

	return s.link(ctx, report, injury)
}

func (s *Service) link(ctx context.Context, report *models.Report, injury *models.InjuryUpdate) (*LinkResult, error) {
	result := &LinkResult{Injury: injury}
	if !linking.ShouldAutoLink(injury) {
		return result, nil
	}

	matched := linking.MatchPicks(injury, report.Picks)

	added, err := s.store.LinkInjury(ctx, injury.ID, matched)
	if err != nil {
		return nil, err
	}

	s.linked(ctx, report, result, matched, added)
	return result, nil
}

func (s *Service) linked(ctx context.Context, report *models.Report, result *LinkResult, matched []string, added int) {
	injury := result.Injury
	result.Matched = matched
	result.Added = added
	injury.AffectedPickIDs = mergeIDs(injury.AffectedPickIDs, matched)

	s.logger.Info("injury auto-linked",
		zap.String("injury_id", injury.ID),
		zap.String("player", injury.PlayerName),
		zap.Int("matched", len(matched)),
		zap.Int("added", added))

	if added > 0 && report.Status == models.ReportPublished && s.cache != nil {
		s.cache.InvalidateSport(ctx, report.Sport)
	}
}

func mergeIDs(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range more {
		if !seen[id] {
			existing = append(existing, id)
			seen[id] = true
		}
	}
	return existing
}
