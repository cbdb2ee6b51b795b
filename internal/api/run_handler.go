package api

import (
	"net/http"

	"github.com/shaiso/Langsync/internal/domain"
)

// defaultRunsLimit — сколько runs отдаётся по умолчанию.
const defaultRunsLimit = 25

// ListRuns возвращает последние runs pipeline, новые первыми.
// GET /api/v1/pipelines/{id}/runs?limit=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	limit := defaultRunsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit = mustParseInt(limitStr, defaultRunsLimit)
	}
	if limit <= 0 || limit > 100 {
		limit = defaultRunsLimit
	}

	runs, err := h.storage.ListRuns(r.Context(), p.ID, limit)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i := range runs {
		result[i] = RunFromDomain(&runs[i])
	}
	List(w, result, len(result))
}

// GetRun возвращает run с шагами и производным состоянием.
// GET /api/v1/pipelines/{id}/runs/{run_id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	run, err := h.storage.GetRun(r.Context(), p.ID, r.PathValue("run_id"))
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	steps, err := h.storage.ListRunSteps(r.Context(), p.ID, run.ID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := RunDetailResponse{
		RunResponse: RunFromDomain(run),
		State:       domain.DeriveRunState(steps),
		Steps:       make([]StepResponse, len(steps)),
	}
	for i := range steps {
		result.Steps[i] = StepFromDomain(&steps[i])
	}
	Success(w, result)
}

// ListRunSteps возвращает шаги run'а.
// GET /api/v1/pipelines/{id}/runs/{run_id}/steps
func (h *Handler) ListRunSteps(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	run, err := h.storage.GetRun(r.Context(), p.ID, r.PathValue("run_id"))
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	steps, err := h.storage.ListRunSteps(r.Context(), p.ID, run.ID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]StepResponse, len(steps))
	for i := range steps {
		result[i] = StepFromDomain(&steps[i])
	}
	List(w, result, len(result))
}
