package registry_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/restocktime/WizJock-sub001/internal/engine"
	"github.com/restocktime/WizJock-sub001/internal/registry"
	"github.com/restocktime/WizJock-sub001/pkg/contracts"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

type stubEngine struct {
	sport  models.Sport
	health func(ctx context.Context) models.HealthStatus
}

func (s *stubEngine) Sport() models.Sport { return s.sport }

func (s *stubEngine) Generate(ctx context.Context) (*models.EngineOutput, error) {
	return &models.EngineOutput{}, nil
}

func (s *stubEngine) HealthCheck(ctx context.Context) models.HealthStatus {
	if s.health != nil {
		return s.health(ctx)
	}
	return models.HealthStatus{Sport: s.sport, Healthy: true}
}

func TestGet_ConstructsOnce(t *testing.T) {
	var built int32
	r := registry.New(time.Second, time.Second)
	r.Register(models.SportNBA, func() contracts.PredictionEngine {
		atomic.AddInt32(&built, 1)
		return &stubEngine{sport: models.SportNBA}
	})

	var wg sync.WaitGroup
	engines := make([]contracts.PredictionEngine, 20)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			eng, err := r.Get(models.SportNBA)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			engines[i] = eng
		}(i)
	}
	wg.Wait()

	if built != 1 {
		t.Errorf("expected factory to run once, ran %d times", built)
	}
	for i := 1; i < len(engines); i++ {
		if engines[i] != engines[0] {
			t.Fatal("expected the same engine instance for every call")
		}
	}
	if _, ok := engines[0].(*engine.TimeoutEngine); !ok {
		t.Errorf("expected engine to be wrapped with deadlines, got %T", engines[0])
	}
}

func TestGet_UnknownSport(t *testing.T) {
	r := registry.New(time.Second, time.Second)

	if _, err := r.Get(models.SportNHL); err == nil {
		t.Fatal("expected error for unregistered sport")
	}
}

func TestSports_StableOrder(t *testing.T) {
	r := registry.New(time.Second, time.Second)
	for _, sport := range []models.Sport{models.SportUFC, models.SportNBA, models.SportNHL} {
		sport := sport
		r.Register(sport, func() contracts.PredictionEngine { return &stubEngine{sport: sport} })
	}

	got := r.Sports()
	want := []models.Sport{models.SportNBA, models.SportNHL, models.SportUFC}
	if len(got) != len(want) {
		t.Fatalf("expected %d sports, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestHealthCheckAll_IsolatesFailures(t *testing.T) {
	r := registry.New(time.Second, 50*time.Millisecond)

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	r.Register(models.SportNBA, func() contracts.PredictionEngine {
		return &stubEngine{sport: models.SportNBA}
	})
	r.Register(models.SportNFL, func() contracts.PredictionEngine {
		return &stubEngine{sport: models.SportNFL, health: func(ctx context.Context) models.HealthStatus {
			panic("engine exploded")
		}}
	})
	r.Register(models.SportNHL, func() contracts.PredictionEngine {
		return &stubEngine{sport: models.SportNHL, health: func(ctx context.Context) models.HealthStatus {
			<-release
			return models.HealthStatus{Sport: models.SportNHL, Healthy: true}
		}}
	})
	r.Register(models.SportUFC, func() contracts.PredictionEngine { return nil })

	results := r.HealthCheckAll(context.Background())

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if !results[models.SportNBA].Healthy {
		t.Errorf("expected NBA healthy, got %+v", results[models.SportNBA])
	}
	for _, sport := range []models.Sport{models.SportNFL, models.SportNHL, models.SportUFC} {
		status := results[sport]
		if status.Healthy {
			t.Errorf("expected %s unhealthy", sport)
		}
		if status.Error == "" {
			t.Errorf("expected %s to carry an error message", sport)
		}
		if status.Sport != sport {
			t.Errorf("expected sport %s on status, got %s", sport, status.Sport)
		}
	}
}

func TestNewDefault_RegistersAllSports(t *testing.T) {
	r := registry.NewDefault(nil, time.Second, time.Second)

	if got := len(r.Sports()); got != len(models.AllSports()) {
		t.Fatalf("expected %d sports, got %d", len(models.AllSports()), got)
	}

	for _, sport := range models.AllSports() {
		eng, err := r.Get(sport)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", sport, err)
		}
		if eng.Sport() != sport {
			t.Errorf("expected engine for %s, got %s", sport, eng.Sport())
		}
	}
}

