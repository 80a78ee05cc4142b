package models

import (
	"fmt"
	"time"
)

// UpdateType classifies an intelligence update
type UpdateType string

const (
	UpdateTraining  UpdateType = "training"
	UpdateWeightCut UpdateType = "weight-cut"
	UpdatePersonal  UpdateType = "personal"
	UpdateLineup    UpdateType = "lineup"
	UpdateOther     UpdateType = "other"
)

// Valid reports whether u is a known update type
func (u UpdateType) Valid() bool {
	switch u {
	case UpdateTraining, UpdateWeightCut, UpdatePersonal, UpdateLineup, UpdateOther:
		return true
	}
	return false
}

// SourceType is where a piece of intelligence came from
type SourceType string

const (
	SourceOfficial       SourceType = "official"
	SourceVerifiedSocial SourceType = "verified-social"
	SourceMedia          SourceType = "media"
	SourceForum          SourceType = "forum"
	SourceInsider        SourceType = "insider"
)

var credibilityBySource = map[SourceType]int{
	SourceOfficial:       95,
	SourceVerifiedSocial: 85,
	SourceMedia:          80,
	SourceInsider:        75,
	SourceForum:          70,
}

// FreshWindow is how long an intelligence update counts as new
const FreshWindow = 24 * time.Hour

// DefaultCredibility returns the credibility rating for a source type.
// Unknown source types rate 0.
func DefaultCredibility(source SourceType) int {
	return credibilityBySource[source]
}

// IntelligenceUpdate is non-injury news about a team, player or fighter
type IntelligenceUpdate struct {
	ID         string     `json:"id"`
	ReportID   string     `json:"report_id"`
	EntityID   string     `json:"entity_id"`
	EntityName string     `json:"entity_name"`
	UpdateType UpdateType `json:"update_type"`
	Content    string     `json:"content"`
	Source     string     `json:"source"`
	SourceType SourceType `json:"source_type"`

	// CredibilityRating is nil on engine input when the engine wants the
	// source-type default
	CredibilityRating *int      `json:"credibility_rating"`
	ReportedAt        time.Time `json:"reported_at"`
	IsNew             bool      `json:"is_new"`
}

// Validate checks enum and range fields
func (u *IntelligenceUpdate) Validate() error {
	if !u.UpdateType.Valid() {
		return fmt.Errorf("intelligence %s: invalid update_type %q", u.EntityName, u.UpdateType)
	}
	if _, ok := credibilityBySource[u.SourceType]; !ok {
		return fmt.Errorf("intelligence %s: invalid source_type %q", u.EntityName, u.SourceType)
	}
	if u.CredibilityRating != nil && (*u.CredibilityRating < 0 || *u.CredibilityRating > 100) {
		return fmt.Errorf("intelligence %s: credibility_rating %d out of range [0,100]", u.EntityName, *u.CredibilityRating)
	}
	return nil
}

// ApplyDefaults fills the credibility rating from the source type when it
// was not supplied and refreshes IsNew against now
func (u *IntelligenceUpdate) ApplyDefaults(now time.Time) {
	if u.CredibilityRating == nil {
		rating := DefaultCredibility(u.SourceType)
		u.CredibilityRating = &rating
	}
	u.IsNew = ReportedWithin(u.ReportedAt, now, FreshWindow)
}

// ReportedWithin reports whether reportedAt lies within window before now
func ReportedWithin(reportedAt, now time.Time, window time.Duration) bool {
	if reportedAt.IsZero() {
		return false
	}
	return now.Sub(reportedAt) <= window
}
