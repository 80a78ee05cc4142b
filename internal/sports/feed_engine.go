package sports

import (
	"context"
	"fmt"
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Feed is the external source of engine payloads
type Feed interface {
	FetchReport(ctx context.Context, sport models.Sport) (*models.EngineOutput, error)
	Ping(ctx context.Context, sport models.Sport) error
}

// Rules holds what differs between sports when accepting a feed payload
type Rules interface {
	// NormalizePick rewrites feed fields into the house format
	NormalizePick(p *models.Pick)

	// ValidatePick rejects picks the sport cannot have
	ValidatePick(p *models.Pick) error
}

// FeedEngine implements contracts.PredictionEngine on top of a Feed.
// It holds no per-call state, so one instance serves the whole process.
type FeedEngine struct {
	sport models.Sport
	feed  Feed
	rules Rules
	now   func() time.Time
}

// NewFeedEngine creates an engine for sport
func NewFeedEngine(sport models.Sport, feed Feed, rules Rules) *FeedEngine {
	return &FeedEngine{
		sport: sport,
		feed:  feed,
		rules: rules,
		now:   time.Now,
	}
}

// Sport returns the engine's sport
func (e *FeedEngine) Sport() models.Sport {
	return e.sport
}

// Generate pulls the payload and checks every pick against shared and
// sport-specific rules. One bad pick rejects the whole payload.
func (e *FeedEngine) Generate(ctx context.Context) (*models.EngineOutput, error) {
	output, err := e.feed.FetchReport(ctx, e.sport)
	if err != nil {
		return nil, fmt.Errorf("fetching %s payload: %w", e.sport, err)
	}
	if output == nil {
		return nil, fmt.Errorf("empty %s payload", e.sport)
	}

	for i := range output.Picks {
		pick := &output.Picks[i]
		e.rules.NormalizePick(pick)

		if err := pick.Validate(); err != nil {
			return nil, fmt.Errorf("pick %d: %w", i, err)
		}
		if pick.BetType == models.BetProp && len(pick.PlayerProps) == 0 {
			return nil, fmt.Errorf("pick %d (%s): prop pick without player props", i, pick.GameID)
		}
		if err := e.rules.ValidatePick(pick); err != nil {
			return nil, fmt.Errorf("pick %d (%s): %w", i, pick.GameID, err)
		}
	}

	for i := range output.Injuries {
		if err := output.Injuries[i].Validate(); err != nil {
			return nil, fmt.Errorf("injury %d: %w", i, err)
		}
	}

	for i := range output.Intelligence {
		if err := output.Intelligence[i].Validate(); err != nil {
			return nil, fmt.Errorf("intelligence %d: %w", i, err)
		}
	}

	return output, nil
}

// HealthCheck pings the feed for this sport
func (e *FeedEngine) HealthCheck(ctx context.Context) models.HealthStatus {
	status := models.HealthStatus{
		Sport:     e.sport,
		Healthy:   true,
		LastCheck: e.now(),
	}

	if err := e.feed.Ping(ctx, e.sport); err != nil {
		status.Healthy = false
		status.Error = err.Error()
	}

	return status
}

// AllowStatTypes returns a validator that accepts only the listed prop stat types
func AllowStatTypes(statTypes ...string) func(p *models.Pick) error {
	allowed := make(map[string]bool, len(statTypes))
	for _, s := range statTypes {
		allowed[s] = true
	}

	return func(p *models.Pick) error {
		for _, prop := range p.PlayerProps {
			if !allowed[prop.StatType] {
				return fmt.Errorf("unsupported stat_type %q for %s", prop.StatType, prop.PlayerName)
			}
		}
		return nil
	}
}
