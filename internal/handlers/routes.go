package handlers

import "github.com/go-chi/chi/v5"

// Mount registers the service routes on r
func Mount(r chi.Router, health *HealthHandler, reports *ReportHandler, picks *PicksHandler) {
	r.Get("/health", health.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Engines
		r.Get("/engines/health", health.EnginesHealth)

		// Reports
		r.Post("/reports/generate/{sport}", reports.GenerateReport)
		r.Get("/reports/{reportID}", reports.GetReport)
		r.Post("/reports/{reportID}/publish", reports.PublishReport)
		r.Post("/reports/{reportID}/unpublish", reports.UnpublishReport)
		r.Post("/reports/{reportID}/injuries", reports.AddInjury)

		// Injuries
		r.Post("/injuries/{injuryID}/autolink", reports.AutoLinkInjury)

		// Published picks
		r.Get("/picks", picks.GetPublishedPicks)
	})
}
