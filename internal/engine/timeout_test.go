package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/restocktime/WizJock-sub001/internal/engine"
	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// stubEngine is a configurable PredictionEngine
type stubEngine struct {
	sport    models.Sport
	generate func(ctx context.Context) (*models.EngineOutput, error)
	health   func(ctx context.Context) models.HealthStatus
}

func (s *stubEngine) Sport() models.Sport { return s.sport }

func (s *stubEngine) Generate(ctx context.Context) (*models.EngineOutput, error) {
	return s.generate(ctx)
}

func (s *stubEngine) HealthCheck(ctx context.Context) models.HealthStatus {
	return s.health(ctx)
}

func hangingEngine(t *testing.T) *stubEngine {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	return &stubEngine{
		sport: models.SportNBA,
		generate: func(ctx context.Context) (*models.EngineOutput, error) {
			// ignores ctx on purpose, like a wedged engine
			<-release
			return &models.EngineOutput{}, nil
		},
		health: func(ctx context.Context) models.HealthStatus {
			<-release
			return models.HealthStatus{Healthy: true}
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	want := &models.EngineOutput{Picks: []models.Pick{{GameID: "g1"}}}
	inner := &stubEngine{
		sport: models.SportNFL,
		generate: func(ctx context.Context) (*models.EngineOutput, error) {
			return want, nil
		},
	}

	got, err := engine.WithTimeout(inner, time.Second, time.Second).Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Error("expected the inner engine's output to be returned as-is")
	}
}

func TestGenerate_TimesOutNearDeadline(t *testing.T) {
	timeout := 50 * time.Millisecond
	wrapped := engine.WithTimeout(hangingEngine(t), timeout, time.Second)

	start := time.Now()
	_, err := wrapped.Generate(context.Background())
	elapsed := time.Since(start)

	var timeoutErr *engine.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Sport != models.SportNBA {
		t.Errorf("expected sport %s, got %s", models.SportNBA, timeoutErr.Sport)
	}
	if !errors.Is(err, engine.ErrGeneration) {
		t.Error("timeout should also match ErrGeneration")
	}
	if !errors.Is(err, context.DeadlineExceeded) || errors.Unwrap(timeoutErr) != context.DeadlineExceeded {
		t.Error("timeout should unwrap to context.DeadlineExceeded")
	}
	if elapsed < timeout {
		t.Errorf("returned after %s, before the %s deadline", elapsed, timeout)
	}
	if elapsed > timeout+time.Second {
		t.Errorf("returned after %s, far past the %s deadline", elapsed, timeout)
	}
}

func TestGenerate_WrapsEngineError(t *testing.T) {
	cause := errors.New("model feed returned 503")
	inner := &stubEngine{
		sport: models.SportUFC,
		generate: func(ctx context.Context) (*models.EngineOutput, error) {
			return nil, cause
		},
	}

	_, err := engine.WithTimeout(inner, time.Second, time.Second).Generate(context.Background())

	var genErr *engine.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Sport != models.SportUFC {
		t.Errorf("expected sport %s, got %s", models.SportUFC, genErr.Sport)
	}
	if !errors.Is(err, cause) {
		t.Error("original cause should be preserved")
	}

	var timeoutErr *engine.TimeoutError
	if errors.As(err, &timeoutErr) {
		t.Error("plain engine error must not look like a timeout")
	}
}

func TestGenerate_RecoversPanic(t *testing.T) {
	inner := &stubEngine{
		sport: models.SportNHL,
		generate: func(ctx context.Context) (*models.EngineOutput, error) {
			panic("nil map write")
		},
	}

	_, err := engine.WithTimeout(inner, time.Second, time.Second).Generate(context.Background())
	if !errors.Is(err, engine.ErrGeneration) {
		t.Fatalf("expected generation error from panic, got %v", err)
	}
}

func TestGenerate_NilOutput(t *testing.T) {
	inner := &stubEngine{
		sport: models.SportNHL,
		generate: func(ctx context.Context) (*models.EngineOutput, error) {
			return nil, nil
		},
	}

	_, err := engine.WithTimeout(inner, time.Second, time.Second).Generate(context.Background())
	if !errors.Is(err, engine.ErrGeneration) {
		t.Fatalf("expected generation error for nil output, got %v", err)
	}
}

func TestGenerate_CallerCancel(t *testing.T) {
	wrapped := engine.WithTimeout(hangingEngine(t), time.Minute, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wrapped.Generate(ctx)

	var timeoutErr *engine.TimeoutError
	if errors.As(err, &timeoutErr) {
		t.Fatal("caller cancellation is not a timeout")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestHealthCheck_TimeoutIsUnhealthy(t *testing.T) {
	wrapped := engine.WithTimeout(hangingEngine(t), time.Second, 30*time.Millisecond)

	status := wrapped.HealthCheck(context.Background())
	if status.Healthy {
		t.Fatal("hung health check should be unhealthy")
	}
	if status.Error == "" {
		t.Error("expected an error message")
	}
	if status.Sport != models.SportNBA {
		t.Errorf("expected sport %s, got %s", models.SportNBA, status.Sport)
	}
	if status.LastCheck.IsZero() {
		t.Error("expected last check timestamp")
	}
}

func TestHealthCheck_PanicIsUnhealthy(t *testing.T) {
	inner := &stubEngine{
		sport: models.SportNFL,
		health: func(ctx context.Context) models.HealthStatus {
			panic("boom")
		},
	}

	status := engine.WithTimeout(inner, time.Second, time.Second).HealthCheck(context.Background())
	if status.Healthy {
		t.Fatal("panicking health check should be unhealthy")
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	inner := &stubEngine{
		sport: models.SportNFL,
		health: func(ctx context.Context) models.HealthStatus {
			return models.HealthStatus{Healthy: true}
		},
	}

	status := engine.WithTimeout(inner, time.Second, time.Second).HealthCheck(context.Background())
	if !status.Healthy {
		t.Fatalf("expected healthy, got error %q", status.Error)
	}
	if status.Sport != models.SportNFL || status.LastCheck.IsZero() {
		t.Error("expected sport and last check to be filled in")
	}
}
