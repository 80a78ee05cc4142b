package models_test

import (
	"testing"
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/models"
	"github.com/shopspring/decimal"
)

func validPick() models.Pick {
	return models.Pick{
		GameID:          "nba-401",
		Matchup:         "Boston Celtics @ Los Angeles Lakers",
		BetType:         models.BetSpread,
		Recommendation:  "Celtics -3.5",
		ConfidenceScore: 72,
		Hierarchy:       models.HierarchyFeatured,
		Units:           decimal.RequireFromString("2.5"),
		CurrentOdds:     "-110",
		OpeningOdds:     "-105",
	}
}

func TestParseSport(t *testing.T) {
	tests := []struct {
		raw     string
		want    models.Sport
		wantErr bool
	}{
		{"basketball_nba", models.SportNBA, false},
		{"nfl", models.SportNFL, false},
		{"UFC", models.SportUFC, false},
		{" icehockey_nhl ", models.SportNHL, false},
		{"cricket", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := models.ParseSport(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSport(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPickValidate(t *testing.T) {
	risk := 140

	tests := []struct {
		name    string
		mutate  func(p *models.Pick)
		wantErr bool
	}{
		{"Valid", func(p *models.Pick) {}, false},
		{"Units below range", func(p *models.Pick) { p.Units = decimal.RequireFromString("0.5") }, true},
		{"Units above range", func(p *models.Pick) { p.Units = decimal.NewFromInt(6) }, true},
		{"Units upper bound", func(p *models.Pick) { p.Units = decimal.NewFromInt(5) }, false},
		{"Confidence above range", func(p *models.Pick) { p.ConfidenceScore = 101 }, true},
		{"Bad bet type", func(p *models.Pick) { p.BetType = "teaser" }, true},
		{"Bad hierarchy", func(p *models.Pick) { p.Hierarchy = "banker" }, true},
		{"Risk out of range", func(p *models.Pick) { p.RiskScore = &risk }, true},
		{"Missing matchup", func(p *models.Pick) { p.Matchup = "" }, true},
		{"Bad prop side", func(p *models.Pick) {
			p.PlayerProps = []models.PlayerProp{{PlayerName: "Jayson Tatum", StatType: "points", OverUnder: "sideways"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pick := validPick()
			tt.mutate(&pick)
			err := pick.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestHierarchyRank(t *testing.T) {
	order := []models.Hierarchy{
		models.HierarchyLock,
		models.HierarchyFeatured,
		models.HierarchyHigh,
		models.HierarchyMedium,
		models.HierarchyValue,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("%s should rank before %s", order[i-1], order[i])
		}
	}
}

func TestDefaultCredibility(t *testing.T) {
	tests := map[models.SourceType]int{
		models.SourceOfficial:       95,
		models.SourceVerifiedSocial: 85,
		models.SourceMedia:          80,
		models.SourceInsider:        75,
		models.SourceForum:          70,
		"rumor-mill":                0,
	}

	for source, want := range tests {
		if got := models.DefaultCredibility(source); got != want {
			t.Errorf("DefaultCredibility(%s) = %d, want %d", source, got, want)
		}
	}
}

func TestIntelligenceApplyDefaults(t *testing.T) {
	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

	derived := models.IntelligenceUpdate{
		SourceType: models.SourceMedia,
		ReportedAt: now.Add(-2 * time.Hour),
	}
	derived.ApplyDefaults(now)
	if derived.CredibilityRating == nil || *derived.CredibilityRating != 80 {
		t.Errorf("expected derived credibility 80, got %v", derived.CredibilityRating)
	}
	if !derived.IsNew {
		t.Error("update reported 2h ago should be new")
	}

	override := 40
	explicit := models.IntelligenceUpdate{
		SourceType:        models.SourceOfficial,
		CredibilityRating: &override,
		ReportedAt:        now.Add(-25 * time.Hour),
	}
	explicit.ApplyDefaults(now)
	if *explicit.CredibilityRating != 40 {
		t.Errorf("explicit credibility should be kept, got %d", *explicit.CredibilityRating)
	}
	if explicit.IsNew {
		t.Error("update reported 25h ago should not be new")
	}
}

func TestReportLockCount(t *testing.T) {
	report := models.Report{Picks: []models.Pick{
		{Hierarchy: models.HierarchyLock},
		{Hierarchy: models.HierarchyHigh},
		{Hierarchy: models.HierarchyLock},
	}}
	if got := report.LockCount(); got != 2 {
		t.Errorf("LockCount() = %d, want 2", got)
	}
}

func TestInjuryStatusSidelined(t *testing.T) {
	if !models.InjuryOut.Sidelined() || !models.InjurySeasonEnding.Sidelined() {
		t.Error("out and season-ending should be sidelined")
	}
	if models.InjuryQuestionable.Sidelined() || models.InjuryProbable.Sidelined() {
		t.Error("questionable and probable should not be sidelined")
	}
}
