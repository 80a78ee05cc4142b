package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BetType classifies the market a pick is on
type BetType string

const (
	BetMoneyline BetType = "moneyline"
	BetSpread    BetType = "spread"
	BetTotal     BetType = "total"
	BetProp      BetType = "prop"
)

// Valid reports whether b is a known bet type
func (b BetType) Valid() bool {
	switch b {
	case BetMoneyline, BetSpread, BetTotal, BetProp:
		return true
	}
	return false
}

// Hierarchy is the editorial tier of a pick
type Hierarchy string

const (
	HierarchyLock     Hierarchy = "lock"
	HierarchyFeatured Hierarchy = "featured"
	HierarchyHigh     Hierarchy = "high"
	HierarchyMedium   Hierarchy = "medium"
	HierarchyValue    Hierarchy = "value"
)

var hierarchyRank = map[Hierarchy]int{
	HierarchyLock:     0,
	HierarchyFeatured: 1,
	HierarchyHigh:     2,
	HierarchyMedium:   3,
	HierarchyValue:    4,
}

// Valid reports whether h is a known tier
func (h Hierarchy) Valid() bool {
	_, ok := hierarchyRank[h]
	return ok
}

// Rank orders tiers for display, lock first
func (h Hierarchy) Rank() int {
	if rank, ok := hierarchyRank[h]; ok {
		return rank
	}
	return len(hierarchyRank)
}

// Outcome is the graded result of a pick or prop. A nil *Outcome means ungraded.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// OverUnder is the side of a player prop
type OverUnder string

const (
	Over  OverUnder = "over"
	Under OverUnder = "under"
)

// Stake sizing bounds
var (
	MinUnits = decimal.NewFromInt(1)
	MaxUnits = decimal.NewFromInt(5)
)

// Pick is a single recommended bet
type Pick struct {
	ID       string `json:"id"`
	ReportID string `json:"report_id"`

	// Ref is an engine-local reference used to attach line movements during
	// generation. It is not persisted.
	Ref string `json:"ref,omitempty"`

	GameID           string          `json:"game_id"`
	Matchup          string          `json:"matchup"`
	GameTime         time.Time       `json:"game_time"`
	BetType          BetType         `json:"bet_type"`
	Recommendation   string          `json:"recommendation"`
	ConfidenceScore  int             `json:"confidence_score"`
	RiskScore        *int            `json:"risk_score,omitempty"`
	Hierarchy        Hierarchy       `json:"hierarchy"`
	Units            decimal.Decimal `json:"units"`
	CurrentOdds      string          `json:"current_odds"`
	OpeningOdds      string          `json:"opening_odds"`
	ExpectedValue    *float64        `json:"expected_value,omitempty"`
	Reasoning        string          `json:"reasoning"`
	DetailedAnalysis string          `json:"detailed_analysis"`
	Outcome          *Outcome        `json:"outcome"`

	PlayerProps   []PlayerProp   `json:"player_props"`
	LineMovements []LineMovement `json:"line_movements"`
}

// Validate checks the field ranges a pick must satisfy before it is stored
func (p *Pick) Validate() error {
	if p.GameID == "" || p.Matchup == "" {
		return fmt.Errorf("pick missing game_id or matchup")
	}
	if !p.BetType.Valid() {
		return fmt.Errorf("pick %s: invalid bet_type %q", p.GameID, p.BetType)
	}
	if !p.Hierarchy.Valid() {
		return fmt.Errorf("pick %s: invalid hierarchy %q", p.GameID, p.Hierarchy)
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 100 {
		return fmt.Errorf("pick %s: confidence_score %d out of range [0,100]", p.GameID, p.ConfidenceScore)
	}
	if p.RiskScore != nil && (*p.RiskScore < 0 || *p.RiskScore > 100) {
		return fmt.Errorf("pick %s: risk_score %d out of range [0,100]", p.GameID, *p.RiskScore)
	}
	if p.Units.LessThan(MinUnits) || p.Units.GreaterThan(MaxUnits) {
		return fmt.Errorf("pick %s: units %s out of range [1,5]", p.GameID, p.Units.String())
	}
	for i := range p.PlayerProps {
		if err := p.PlayerProps[i].Validate(); err != nil {
			return fmt.Errorf("pick %s: %w", p.GameID, err)
		}
	}
	return nil
}

// PlayerProp is a player-level bet attached to a pick
type PlayerProp struct {
	ID         string    `json:"id"`
	PickID     string    `json:"pick_id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	StatType   string    `json:"stat_type"` // "points", "passing_yards", "significant_strikes"
	Line       float64   `json:"line"`
	OverUnder  OverUnder `json:"over_under"`
	Odds       string    `json:"odds"`
	Confidence int       `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Outcome    *Outcome  `json:"outcome"`
}

// Validate checks prop field ranges
func (p *PlayerProp) Validate() error {
	if p.OverUnder != Over && p.OverUnder != Under {
		return fmt.Errorf("prop %s %s: invalid over_under %q", p.PlayerName, p.StatType, p.OverUnder)
	}
	if p.Confidence < 0 || p.Confidence > 100 {
		return fmt.Errorf("prop %s %s: confidence %d out of range [0,100]", p.PlayerName, p.StatType, p.Confidence)
	}
	return nil
}
