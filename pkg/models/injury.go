package models

import (
	"fmt"
	"time"
)

// InjuryStatus is a player's availability designation
type InjuryStatus string

const (
	InjuryOut          InjuryStatus = "out"
	InjuryQuestionable InjuryStatus = "questionable"
	InjuryProbable     InjuryStatus = "probable"
	InjurySeasonEnding InjuryStatus = "season-ending"
)

// Valid reports whether s is a known status
func (s InjuryStatus) Valid() bool {
	switch s {
	case InjuryOut, InjuryQuestionable, InjuryProbable, InjurySeasonEnding:
		return true
	}
	return false
}

// Sidelined reports whether the player is definitely unavailable
func (s InjuryStatus) Sidelined() bool {
	return s == InjuryOut || s == InjurySeasonEnding
}

// InjuryImpact grades how much an injury matters to the picks it touches
type InjuryImpact string

const (
	ImpactCritical InjuryImpact = "critical"
	ImpactModerate InjuryImpact = "moderate"
	ImpactMinor    InjuryImpact = "minor"
)

// Valid reports whether i is a known impact grade
func (i InjuryImpact) Valid() bool {
	switch i {
	case ImpactCritical, ImpactModerate, ImpactMinor:
		return true
	}
	return false
}

// InjuryUpdate is an injury report attached to a report, linked to the
// picks it may affect
type InjuryUpdate struct {
	ID         string       `json:"id"`
	ReportID   string       `json:"report_id"`
	PlayerID   string       `json:"player_id"`
	PlayerName string       `json:"player_name"`
	Team       string       `json:"team"`
	Status     InjuryStatus `json:"status"`
	InjuryType string       `json:"injury_type"`
	Impact     InjuryImpact `json:"impact"`
	Details    string       `json:"details"`
	ReportedAt time.Time    `json:"reported_at"`

	AffectedPickIDs []string `json:"affected_pick_ids"`
}

// Validate checks enum fields
func (i *InjuryUpdate) Validate() error {
	if i.PlayerName == "" {
		return fmt.Errorf("injury missing player_name")
	}
	if !i.Status.Valid() {
		return fmt.Errorf("injury %s: invalid status %q", i.PlayerName, i.Status)
	}
	if !i.Impact.Valid() {
		return fmt.Errorf("injury %s: invalid impact %q", i.PlayerName, i.Impact)
	}
	return nil
}

// LinkedInjury is the slice of an injury needed to annotate a pick on read
type LinkedInjury struct {
	PickID     string       `json:"pick_id"`
	PlayerName string       `json:"player_name"`
	Status     InjuryStatus `json:"status"`
	Impact     InjuryImpact `json:"impact"`
}
