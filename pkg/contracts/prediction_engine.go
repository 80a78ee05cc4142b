package contracts

import (
	"context"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// PredictionEngine is the pluggable per-sport source of picks.
// How an engine produces its picks is its own business; the service only
// relies on the shape of the output.
type PredictionEngine interface {
	// Sport returns the sport this engine produces picks for
	Sport() models.Sport

	// Generate produces a fresh report payload
	Generate(ctx context.Context) (*models.EngineOutput, error)

	// HealthCheck probes the engine. Failures are reported in the returned
	// status, never as a panic.
	HealthCheck(ctx context.Context) models.HealthStatus
}
