package models

import "time"

// EngineOutput is the fixed-shape payload every prediction engine returns
type EngineOutput struct {
	Picks             []Pick               `json:"picks"`
	Injuries          []InjuryUpdate       `json:"injuries,omitempty"`
	Intelligence      []IntelligenceUpdate `json:"intelligence,omitempty"`
	LineMovements     []LineMovement       `json:"line_movements,omitempty"`
	SystemPerformance *SystemPerformance   `json:"system_performance,omitempty"`
}

// HealthStatus is the result of an engine health probe
type HealthStatus struct {
	Sport     Sport     `json:"sport"`
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}
