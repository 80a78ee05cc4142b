package models

import (
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/oddsmath"
)

// LineMovement records how a pick's line moved between open and now
type LineMovement struct {
	ID     string `json:"id"`
	PickID string `json:"pick_id"`

	// PickRef names the engine-local Ref of the pick this movement belongs
	// to. Required on engine output, not persisted.
	PickRef string `json:"pick_ref,omitempty"`

	OpeningLine        string             `json:"opening_line"`
	CurrentLine        string             `json:"current_line"`
	MovementPercentage float64            `json:"movement_percentage"`
	Direction          oddsmath.Direction `json:"direction"`
	SharpMoney         bool               `json:"sharp_money"`
	Notes              string             `json:"notes"`
	Timestamp          time.Time          `json:"timestamp"`
}

// IsSignificant reports whether the movement exceeds the significance threshold
func (m LineMovement) IsSignificant() bool {
	return oddsmath.IsSignificantMovement(m.MovementPercentage)
}
