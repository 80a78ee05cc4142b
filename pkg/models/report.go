package models

import "time"

// ReportStatus is the publication state of a report
type ReportStatus string

const (
	ReportDraft       ReportStatus = "draft"
	ReportPublished   ReportStatus = "published"
	ReportUnpublished ReportStatus = "unpublished"
)

// SystemPerformance is the engine's self-reported track record
type SystemPerformance struct {
	Record  string  `json:"record"`   // "112-87-4"
	WinRate float64 `json:"win_rate"` // 56.3
}

// Report is a generated, sport-scoped bundle of picks and supporting context
type Report struct {
	ID                string             `json:"id"`
	Sport             Sport              `json:"sport"`
	Status            ReportStatus       `json:"status"`
	GeneratedAt       time.Time          `json:"generated_at"`
	PublishedAt       *time.Time         `json:"published_at,omitempty"`
	PublishedBy       *string            `json:"published_by,omitempty"`
	SystemPerformance *SystemPerformance `json:"system_performance,omitempty"`

	Picks        []Pick               `json:"picks"`
	Injuries     []InjuryUpdate       `json:"injuries"`
	Intelligence []IntelligenceUpdate `json:"intelligence"`
}

// LockCount returns how many picks carry the "lock" tier
func (r *Report) LockCount() int {
	count := 0
	for _, p := range r.Picks {
		if p.Hierarchy == HierarchyLock {
			count++
		}
	}
	return count
}

// PickByID finds a pick of this report
func (r *Report) PickByID(id string) (*Pick, bool) {
	for i := range r.Picks {
		if r.Picks[i].ID == id {
			return &r.Picks[i], true
		}
	}
	return nil, false
}
