package americanfootball_nfl

import (
	"github.com/restocktime/WizJock-sub001/internal/sports"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

var validateProps = sports.AllowStatTypes(
	"passing_yards", "passing_tds", "rushing_yards", "receiving_yards",
	"receptions", "anytime_td", "interceptions",
)

type rules struct{}

// New creates the NFL prediction engine
func New(feed sports.Feed) *sports.FeedEngine {
	return sports.NewFeedEngine(models.SportNFL, feed, rules{})
}

func (rules) NormalizePick(p *models.Pick) {}

func (rules) ValidatePick(p *models.Pick) error {
	return validateProps(p)
}
