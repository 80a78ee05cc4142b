package models

import "time"

// PublishedPick is the client-facing read model of a pick in a published report
type PublishedPick struct {
	Pick
	Sport         Sport     `json:"sport"`
	PublishedAt   time.Time `json:"published_at"`
	InjurySummary string    `json:"injury_summary,omitempty"`
}

// PickFilters narrows the published picks read. Empty fields mean "all".
type PickFilters struct {
	Sport     Sport
	BetType   BetType
	Hierarchy Hierarchy
}
