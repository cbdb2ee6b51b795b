package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Langsync/internal/domain"
	"github.com/shaiso/Langsync/internal/scheduler"
)

// ListSchedules возвращает расписания pipeline.
// GET /api/v1/pipelines/{id}/schedules
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	schedules, err := h.storage.ListSchedules(r.Context(), p.ID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ScheduleResponse, len(schedules))
	for i := range schedules {
		result[i] = ScheduleFromDomain(&schedules[i])
	}
	List(w, result, len(result))
}

// CreateSchedule создаёт расписание периодической полной индексации.
// POST /api/v1/pipelines/{id}/schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.CronExpr == "" && req.IntervalSec <= 0 {
		BadRequest(w, "either cron_expr or interval_sec is required")
		return
	}
	if req.CronExpr != "" {
		if err := scheduler.ValidateCronExpr(req.CronExpr); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	p, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	now := time.Now()
	sched := &domain.SyncSchedule{
		ID:          uuid.New(),
		Pipeline:    p.ID,
		Name:        req.Name,
		CronExpr:    req.CronExpr,
		IntervalSec: req.IntervalSec,
		Timezone:    timezone,
		Enabled:     req.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	nextDue, err := scheduler.CalculateNextDue(sched, now)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}
	sched.NextDueAt = &nextDue

	if err := h.storage.CreateSchedule(r.Context(), sched); HandleRepoError(w, h.logger, err, "") {
		return
	}

	Created(w, ScheduleFromDomain(sched))
}

// DeleteSchedule удаляет расписание pipeline.
// DELETE /api/v1/pipelines/{id}/schedules/{schedule_id}
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	// Владение проверяется через pipeline
	if _, err := h.storage.GetPipeline(r.Context(), accountID, r.PathValue("id")); HandleRepoError(w, h.logger, err, "pipeline not found") {
		return
	}

	scheduleID, err := uuid.Parse(r.PathValue("schedule_id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	if err := h.storage.DeleteSchedule(r.Context(), scheduleID); HandleRepoError(w, h.logger, err, "schedule not found") {
		return
	}
	NoContent(w)
}
