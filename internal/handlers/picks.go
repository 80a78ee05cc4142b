package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/models"
	"go.uber.org/zap"
)

// PicksLister reads the client-facing published picks
type PicksLister interface {
	ListPublished(ctx context.Context, filters models.PickFilters) ([]models.PublishedPick, error)
}

// PicksHandler serves published picks to clients
type PicksHandler struct {
	picks  PicksLister
	logger *zap.Logger
}

// NewPicksHandler creates a new picks handler
func NewPicksHandler(picks PicksLister, logger *zap.Logger) *PicksHandler {
	return &PicksHandler{
		picks:  picks,
		logger: logger,
	}
}

// GetPublishedPicks lists picks from published reports
// Query params: sport, bet_type, hierarchy
func (h *PicksHandler) GetPublishedPicks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filters, err := parsePickFilters(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	picks, err := h.picks.ListPublished(ctx, filters)
	if err != nil {
		respondFailure(w, h.logger, "failed to retrieve picks", err)
		return
	}
	if picks == nil {
		picks = []models.PublishedPick{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"picks": picks,
		"count": len(picks),
	})
}

func parsePickFilters(r *http.Request) (models.PickFilters, error) {
	var filters models.PickFilters
	query := r.URL.Query()

	if raw := query.Get("sport"); raw != "" {
		sport, err := models.ParseSport(raw)
		if err != nil {
			return filters, err
		}
		filters.Sport = sport
	}

	if raw := query.Get("bet_type"); raw != "" {
		betType := models.BetType(raw)
		if !betType.Valid() {
			return filters, fmt.Errorf("unsupported bet_type: %q", raw)
		}
		filters.BetType = betType
	}

	if raw := query.Get("hierarchy"); raw != "" {
		hierarchy := models.Hierarchy(raw)
		if !hierarchy.Valid() {
			return filters, fmt.Errorf("unsupported hierarchy: %q", raw)
		}
		filters.Hierarchy = hierarchy
	}

	return filters, nil
}
