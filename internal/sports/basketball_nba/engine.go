package basketball_nba

import (
	"strings"

	"github.com/restocktime/WizJock-sub001/internal/sports"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

var validateProps = sports.AllowStatTypes("points", "rebounds", "assists", "threes", "pra", "steals", "blocks")

// rules implements sports.Rules for NBA basketball
type rules struct{}

// New creates the NBA prediction engine
func New(feed sports.Feed) *sports.FeedEngine {
	return sports.NewFeedEngine(models.SportNBA, feed, rules{})
}

// NormalizePick expands team abbreviations in the matchup ("BOS @ LAL")
func (rules) NormalizePick(p *models.Pick) {
	p.Matchup = ExpandMatchup(p.Matchup)
}

func (rules) ValidatePick(p *models.Pick) error {
	return validateProps(p)
}

// ExpandMatchup replaces known abbreviations on either side of "@" or "vs"
func ExpandMatchup(matchup string) string {
	for _, sep := range []string{" @ ", " vs ", " vs. "} {
		if parts := strings.SplitN(matchup, sep, 2); len(parts) == 2 {
			away := GetTeamName(strings.TrimSpace(parts[0]))
			home := GetTeamName(strings.TrimSpace(parts[1]))
			return away + sep + home
		}
	}
	return matchup
}
