package mma_mixed_martial_arts

import (
	"fmt"

	"github.com/restocktime/WizJock-sub001/internal/sports"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

var validateProps = sports.AllowStatTypes("significant_strikes", "takedowns", "method_of_victory", "round")

type rules struct{}

// New creates the UFC prediction engine
func New(feed sports.Feed) *sports.FeedEngine {
	return sports.NewFeedEngine(models.SportUFC, feed, rules{})
}

func (rules) NormalizePick(p *models.Pick) {}

// ValidatePick rejects spreads; fights are bet on moneylines, totals (rounds) and props
func (rules) ValidatePick(p *models.Pick) error {
	if p.BetType == models.BetSpread {
		return fmt.Errorf("spread bets are not offered on fights")
	}
	return validateProps(p)
}
