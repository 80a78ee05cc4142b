package models

import "time"

// ReportEventType names a publication state change
type ReportEventType string

const (
	EventPublished   ReportEventType = "published"
	EventUnpublished ReportEventType = "unpublished"

	// EventDemoted is emitted for a report unpublished because another
	// report of its sport was published
	EventDemoted ReportEventType = "demoted"
)

// ReportEvent is a committed publication state change
type ReportEvent struct {
	Type     ReportEventType `json:"type"`
	ReportID string          `json:"report_id"`
	Sport    Sport           `json:"sport"`
	At       time.Time       `json:"at"`
	By       string          `json:"by,omitempty"`
}
