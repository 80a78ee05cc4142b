package registry

import (
	"time"

	"github.com/restocktime/WizJock-sub001/internal/sports"
	"github.com/restocktime/WizJock-sub001/internal/sports/americanfootball_nfl"
	"github.com/restocktime/WizJock-sub001/internal/sports/basketball_nba"
	"github.com/restocktime/WizJock-sub001/internal/sports/icehockey_nhl"
	"github.com/restocktime/WizJock-sub001/internal/sports/mma_mixed_martial_arts"
	"github.com/restocktime/WizJock-sub001/pkg/contracts"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// NewDefault creates a registry with every supported sport backed by feed
func NewDefault(feed sports.Feed, generateTimeout, healthTimeout time.Duration) *Registry {
	r := New(generateTimeout, healthTimeout)

	r.Register(models.SportNBA, func() contracts.PredictionEngine { return basketball_nba.New(feed) })
	r.Register(models.SportNFL, func() contracts.PredictionEngine { return americanfootball_nfl.New(feed) })
	r.Register(models.SportNHL, func() contracts.PredictionEngine { return icehockey_nhl.New(feed) })
	r.Register(models.SportUFC, func() contracts.PredictionEngine { return mma_mixed_martial_arts.New(feed) })

	return r
}
