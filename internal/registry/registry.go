package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/restocktime/WizJock-sub001/internal/engine"
	"github.com/restocktime/WizJock-sub001/pkg/contracts"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Factory builds the engine for one sport
type Factory func() contracts.PredictionEngine

// Registry resolves a sport to its prediction engine. Engines are built on
// first use, wrapped with deadlines and reused for the process lifetime.
type Registry struct {
	mu        sync.Mutex
	factories map[models.Sport]Factory
	engines   map[models.Sport]contracts.PredictionEngine

	generateTimeout time.Duration
	healthTimeout   time.Duration
}

// New creates an empty registry
func New(generateTimeout, healthTimeout time.Duration) *Registry {
	return &Registry{
		factories:       make(map[models.Sport]Factory),
		engines:         make(map[models.Sport]contracts.PredictionEngine),
		generateTimeout: generateTimeout,
		healthTimeout:   healthTimeout,
	}
}

// Register adds a factory for sport, replacing any earlier one
func (r *Registry) Register(sport models.Sport, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[sport] = factory
	delete(r.engines, sport)
}

// Get returns the engine for sport, constructing it on first call
func (r *Registry) Get(sport models.Sport) (contracts.PredictionEngine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if eng, ok := r.engines[sport]; ok {
		return eng, nil
	}

	factory, ok := r.factories[sport]
	if !ok {
		return nil, fmt.Errorf("prediction engine not found: %s", sport)
	}

	inner := factory()
	if inner == nil {
		return nil, fmt.Errorf("prediction engine factory for %s returned nil", sport)
	}

	eng := engine.WithTimeout(inner, r.generateTimeout, r.healthTimeout)
	r.engines[sport] = eng
	return eng, nil
}

// Sports returns all registered sports in stable order
func (r *Registry) Sports() []models.Sport {
	r.mu.Lock()
	defer r.mu.Unlock()

	sports := make([]models.Sport, 0, len(r.factories))
	for sport := range r.factories {
		sports = append(sports, sport)
	}
	sort.Slice(sports, func(i, j int) bool { return sports[i] < sports[j] })
	return sports
}

// HealthCheckAll probes every registered sport concurrently. Each sport is
// evaluated on its own; a failure to even build an engine is reported as
// unhealthy for that sport only.
func (r *Registry) HealthCheckAll(ctx context.Context) map[models.Sport]models.HealthStatus {
	sports := r.Sports()
	results := make(map[models.Sport]models.HealthStatus, len(sports))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, sport := range sports {
		wg.Add(1)
		go func(sport models.Sport) {
			defer wg.Done()

			status := r.checkOne(ctx, sport)

			mu.Lock()
			results[sport] = status
			mu.Unlock()
		}(sport)
	}

	wg.Wait()
	return results
}

func (r *Registry) checkOne(ctx context.Context, sport models.Sport) (status models.HealthStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			status = models.HealthStatus{
				Sport:     sport,
				Healthy:   false,
				LastCheck: time.Now(),
				Error:     fmt.Sprintf("health check panicked: %v", rec),
			}
		}
	}()

	eng, err := r.Get(sport)
	if err != nil {
		return models.HealthStatus{
			Sport:     sport,
			Healthy:   false,
			LastCheck: time.Now(),
			Error:     err.Error(),
		}
	}

	return eng.HealthCheck(ctx)
}
