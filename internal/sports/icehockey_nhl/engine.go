package icehockey_nhl

import (
	"fmt"
	"strings"

	"github.com/restocktime/WizJock-sub001/internal/sports"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

var validateProps = sports.AllowStatTypes("goals", "assists", "points", "shots_on_goal", "saves")

type rules struct{}

// New creates the NHL prediction engine
func New(feed sports.Feed) *sports.FeedEngine {
	return sports.NewFeedEngine(models.SportNHL, feed, rules{})
}

func (rules) NormalizePick(p *models.Pick) {}

// ValidatePick requires hockey spreads to be quoted as a puck line
func (rules) ValidatePick(p *models.Pick) error {
	if p.BetType == models.BetSpread && !strings.Contains(p.Recommendation, "1.5") {
		return fmt.Errorf("puck line must be +/-1.5, got %q", p.Recommendation)
	}
	return validateProps(p)
}
