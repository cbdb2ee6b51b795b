package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Langsync/internal/domain"
)

// ListPipelines возвращает pipelines аккаунта.
// GET /api/v1/pipelines
func (h *Handler) ListPipelines(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	pipelines, err := h.storage.ListPipelines(r.Context(), accountID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]PipelineResponse, len(pipelines))
	for i := range pipelines {
		result[i] = PipelineFromDomain(&pipelines[i])
	}
	List(w, result, len(result))
}

// GetPipeline возвращает pipeline по id.
// GET /api/v1/pipelines/{id}
func (h *Handler) GetPipeline(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}
	Success(w, PipelineFromDomain(p))
}

// UpdatePipeline частично обновляет pipeline.
// PATCH /api/v1/pipelines/{id}
//
// Переход is_enabled false→true запускает полную индексацию
// (trigger=system): строки run создаются в той же транзакции, что
// и обновление, сообщения публикуются после коммита. Отказ по
// квотам откатывает и само включение.
func (h *Handler) UpdatePipeline(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	var req UpdatePipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	wasEnabled := p.IsEnabled
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Config != nil {
		p.Config = *req.Config
	}
	if req.IsEnabled != nil {
		p.IsEnabled = *req.IsEnabled
	}
	if req.IsDefault != nil {
		p.IsDefault = *req.IsDefault
	}

	if !wasEnabled && p.IsEnabled {
		rws, prepMsgs, err := h.dispatcher.PrepareFullRun(r.Context(), p, domain.RunTriggerSystem)
		if HandleDispatchError(w, h.logger, err) {
			return
		}

		if err := h.storage.UpdatePipelineWithRun(r.Context(), p, rws); err != nil {
			InternalError(w, h.logger, err)
			return
		}

		if err := h.dispatcher.Publish(r.Context(), prepMsgs); err != nil {
			HandleDispatchError(w, h.logger, err)
			return
		}

		h.logger.Info("pipeline enabled, full index dispatched",
			"pipeline_id", p.ID,
			"run_id", rws.Run.ID,
		)
		Success(w, PipelineFromDomain(p))
		return
	}

	if err := h.storage.UpdatePipelineWithRun(r.Context(), p, nil); err != nil {
		InternalError(w, h.logger, err)
		return
	}
	Success(w, PipelineFromDomain(p))
}

// TriggerPipeline запускает полную индексацию вручную.
// POST /api/v1/pipelines/{id}/trigger
func (h *Handler) TriggerPipeline(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	run, err := h.dispatcher.DispatchFullPipeline(r.Context(), p, domain.RunTriggerManual)
	if HandleDispatchError(w, h.logger, err) {
		return
	}

	Created(w, RunFromDomain(run))
}
