package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/contracts"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Default deadlines
const (
	DefaultGenerateTimeout = 120 * time.Second
	DefaultHealthTimeout   = 5 * time.Second
)

// TimeoutEngine decorates a PredictionEngine with hard deadlines.
// A hung Generate degrades to a TimeoutError; HealthCheck never fails.
type TimeoutEngine struct {
	inner           contracts.PredictionEngine
	generateTimeout time.Duration
	healthTimeout   time.Duration
	now             func() time.Time
}

// WithTimeout wraps inner. Non-positive timeouts fall back to the defaults.
func WithTimeout(inner contracts.PredictionEngine, generateTimeout, healthTimeout time.Duration) *TimeoutEngine {
	if generateTimeout <= 0 {
		generateTimeout = DefaultGenerateTimeout
	}
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}

	return &TimeoutEngine{
		inner:           inner,
		generateTimeout: generateTimeout,
		healthTimeout:   healthTimeout,
		now:             time.Now,
	}
}

// Sport returns the wrapped engine's sport
func (t *TimeoutEngine) Sport() models.Sport {
	return t.inner.Sport()
}

// Generate races the wrapped engine against the generate deadline
func (t *TimeoutEngine) Generate(ctx context.Context) (*models.EngineOutput, error) {
	sport := t.inner.Sport()

	ctx, cancel := context.WithTimeout(ctx, t.generateTimeout)
	defer cancel()

	type result struct {
		output *models.EngineOutput
		err    error
	}

	// Buffered so a late engine never blocks after we stop listening
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("engine panic: %v", r)}
			}
		}()

		output, err := t.inner.Generate(ctx)
		done <- result{output: output, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == context.DeadlineExceeded {
				return nil, &TimeoutError{Sport: sport, Timeout: t.generateTimeout}
			}
			return nil, &GenerationError{Sport: sport, Err: res.err}
		}
		if res.output == nil {
			return nil, &GenerationError{Sport: sport, Err: errors.New("engine returned no output")}
		}
		return res.output, nil

	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &TimeoutError{Sport: sport, Timeout: t.generateTimeout}
		}
		return nil, &GenerationError{Sport: sport, Err: ctx.Err()}
	}
}

// HealthCheck probes the wrapped engine under the health deadline and
// folds every failure into an unhealthy status
func (t *TimeoutEngine) HealthCheck(ctx context.Context) models.HealthStatus {
	sport := t.inner.Sport()

	ctx, cancel := context.WithTimeout(ctx, t.healthTimeout)
	defer cancel()

	done := make(chan models.HealthStatus, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- unhealthy(sport, t.now(), fmt.Sprintf("health check panic: %v", r))
			}
		}()
		done <- t.inner.HealthCheck(ctx)
	}()

	select {
	case status := <-done:
		status.Sport = sport
		if status.LastCheck.IsZero() {
			status.LastCheck = t.now()
		}
		if !status.Healthy && status.Error == "" {
			status.Error = "engine reported unhealthy"
		}
		return status

	case <-ctx.Done():
		return unhealthy(sport, t.now(), fmt.Sprintf("health check timed out after %s", t.healthTimeout))
	}
}

func unhealthy(sport models.Sport, at time.Time, msg string) models.HealthStatus {
	return models.HealthStatus{
		Sport:     sport,
		Healthy:   false,
		LastCheck: at,
		Error:     msg,
	}
}
