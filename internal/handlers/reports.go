package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/restocktime/WizJock-sub001/internal/injuries"
	"github.com/restocktime/WizJock-sub001/pkg/models"
	"go.uber.org/zap"
)

// Generator produces and stores a draft report for a sport
type Generator interface {
	GenerateReport(ctx context.Context, sport models.Sport) (*models.Report, error)
}

// ReportReader loads a stored report with its children
type ReportReader interface {
	GetReport(ctx context.Context, reportID string) (*models.Report, error)
}

// Publisher moves reports through the publication lifecycle
type Publisher interface {
	Publish(ctx context.Context, reportID, publishedBy string) (time.Time, error)
	Unpublish(ctx context.Context, reportID string) error
}

// InjuryLinker attaches injuries to a report's picks
type InjuryLinker interface {
	AddInjury(ctx context.Context, reportID string, injury models.InjuryUpdate) (*injuries.LinkResult, error)
	AutoLink(ctx context.Context, injuryID string) (*injuries.LinkResult, error)
}

// ReportHandler handles report generation, review and publication
type ReportHandler struct {
	generator Generator
	reports   ReportReader
	publisher Publisher
	injuries  InjuryLinker
	logger    *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(gen Generator, reports ReportReader, pub Publisher, inj InjuryLinker, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		generator: gen,
		reports:   reports,
		publisher: pub,
		injuries:  inj,
		logger:    logger,
	}
}

// GenerateReport runs the sport's engine and stores the result as a draft.
// Bounded by the engine timeout, not a handler deadline.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	sport, err := models.ParseSport(chi.URLParam(r, "sport"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.generator.GenerateReport(r.Context(), sport)
	if err != nil {
		respondFailure(w, h.logger, "report generation failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, report)
}

// GetReport returns a report with its picks, injuries and intelligence
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reportID := chi.URLParam(r, "reportID")
	if reportID == "" {
		respondError(w, http.StatusBadRequest, "report_id is required")
		return
	}

	report, err := h.reports.GetReport(ctx, reportID)
	if err != nil {
		respondFailure(w, h.logger, "failed to retrieve report", err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

type publishRequest struct {
	PublishedBy string `json:"published_by"`
}

// PublishReport makes the report the live one for its sport
func (h *ReportHandler) PublishReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reportID := chi.URLParam(r, "reportID")
	if reportID == "" {
		respondError(w, http.StatusBadRequest, "report_id is required")
		return
	}

	// An empty body publishes anonymously
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	publishedAt, err := h.publisher.Publish(ctx, reportID, req.PublishedBy)
	if err != nil {
		respondFailure(w, h.logger, "failed to publish report", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_id":    reportID,
		"status":       models.ReportPublished,
		"published_at": publishedAt,
	})
}

// UnpublishReport withdraws a published report
func (h *ReportHandler) UnpublishReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reportID := chi.URLParam(r, "reportID")
	if reportID == "" {
		respondError(w, http.StatusBadRequest, "report_id is required")
		return
	}

	if err := h.publisher.Unpublish(ctx, reportID); err != nil {
		respondFailure(w, h.logger, "failed to unpublish report", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_id": reportID,
		"status":    models.ReportUnpublished,
	})
}

// AddInjury attaches a manually entered injury to a report
func (h *ReportHandler) AddInjury(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reportID := chi.URLParam(r, "reportID")
	if reportID == "" {
		respondError(w, http.StatusBadRequest, "report_id is required")
		return
	}

	var injury models.InjuryUpdate
	if err := json.NewDecoder(r.Body).Decode(&injury); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := injury.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.injuries.AddInjury(ctx, reportID, injury)
	if err != nil {
		respondFailure(w, h.logger, "failed to add injury", err)
		return
	}

	respondJSON(w, http.StatusCreated, linkResponse(result))
}

// AutoLinkInjury reruns pick matching for an existing injury
func (h *ReportHandler) AutoLinkInjury(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	injuryID := chi.URLParam(r, "injuryID")
	if injuryID == "" {
		respondError(w, http.StatusBadRequest, "injury_id is required")
		return
	}

	result, err := h.injuries.AutoLink(ctx, injuryID)
	if err != nil {
		respondFailure(w, h.logger, "failed to link injury", err)
		return
	}

	respondJSON(w, http.StatusOK, linkResponse(result))
}

func linkResponse(result *injuries.LinkResult) *injuries.LinkResult {
	if result.Matched == nil {
		result.Matched = []string{}
	}
	return result
}
