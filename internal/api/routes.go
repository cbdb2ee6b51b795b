package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		RequestID(),
		Logging(h.logger),
	)

	// Pipelines
	mux.Handle("GET /api/v1/pipelines", chain(http.HandlerFunc(h.ListPipelines)))
	mux.Handle("GET /api/v1/pipelines/{id}", chain(http.HandlerFunc(h.GetPipeline)))
	mux.Handle("PATCH /api/v1/pipelines/{id}", chain(http.HandlerFunc(h.UpdatePipeline)))
	mux.Handle("POST /api/v1/pipelines/{id}/trigger", chain(http.HandlerFunc(h.TriggerPipeline)))

	// Runs
	mux.Handle("GET /api/v1/pipelines/{id}/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /api/v1/pipelines/{id}/runs/{run_id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("GET /api/v1/pipelines/{id}/runs/{run_id}/steps", chain(http.HandlerFunc(h.ListRunSteps)))

	// Schedules
	mux.Handle("GET /api/v1/pipelines/{id}/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/pipelines/{id}/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("DELETE /api/v1/pipelines/{id}/schedules/{schedule_id}", chain(http.HandlerFunc(h.DeleteSchedule)))

	// Quotas
	mux.Handle("GET /api/v1/quotas", chain(http.HandlerFunc(h.GetQuotas)))

	// Webhooks (без аутентификации: подпись вместо сессии)
	mux.Handle("POST /api/v1/webhooks/linear", chain(http.HandlerFunc(h.LinearWebhook)))
}
