package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/restocktime/WizJock-sub001/internal/engine"
	"github.com/restocktime/WizJock-sub001/internal/metrics"
	"github.com/restocktime/WizJock-sub001/internal/store"
	"github.com/restocktime/WizJock-sub001/pkg/models"
	"go.uber.org/zap"
)

// Pinger is the database liveness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// EngineHealth probes every registered prediction engine
type EngineHealth interface {
	HealthCheckAll(ctx context.Context) map[models.Sport]models.HealthStatus
	Sports() []models.Sport
}

// HealthHandler serves service and engine health
type HealthHandler struct {
	db      Pinger
	engines EngineHealth
	metrics *metrics.Metrics
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, engines EngineHealth, m *metrics.Metrics) *HealthHandler {
	return &HealthHandler{
		db:      db,
		engines: engines,
		metrics: m,
	}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unhealthy")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "report-service",
	})
}

// EnginesHealth probes every engine. One failing engine never hides the
// others; the response is 200 as long as the probe itself ran.
func (h *HealthHandler) EnginesHealth(w http.ResponseWriter, r *http.Request) {
	results := h.engines.HealthCheckAll(r.Context())

	engines := make([]models.HealthStatus, 0, len(results))
	healthy := 0
	for _, sport := range h.engines.Sports() {
		status, ok := results[sport]
		if !ok {
			continue
		}
		h.metrics.SetEngineHealth(string(sport), status.Healthy)
		if status.Healthy {
			healthy++
		}
		engines = append(engines, status)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"engines": engines,
		"healthy": healthy,
		"total":   len(engines),
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondFailure maps a domain error onto its HTTP status. Server-side
// failures are logged with the request's context; their detail is not
// echoed to the client.
func respondFailure(w http.ResponseWriter, logger *zap.Logger, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.Error(err), zap.Int("status", status))
		respondError(w, status, message)
		return
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	var timeoutErr *engine.TimeoutError
	var genErr *engine.GenerationError

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
