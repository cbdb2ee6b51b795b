package api

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Langsync/internal/domain"
)

// Pipeline DTOs

// UpdatePipelineRequest — запрос на частичное обновление pipeline.
// Отсутствующие поля не меняются.
type UpdatePipelineRequest struct {
	Name      *string                `json:"name,omitempty"`
	Config    *domain.PipelineConfig `json:"config,omitempty"`
	IsEnabled *bool                  `json:"is_enabled,omitempty"`
	IsDefault *bool                  `json:"is_default,omitempty"`
}

// PipelineResponse — ответ с pipeline.
type PipelineResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Config    domain.PipelineConfig `json:"config"`
	IsEnabled bool                  `json:"is_enabled"`
	IsDefault bool                  `json:"is_default"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt *time.Time            `json:"updated_at,omitempty"`
}

// PipelineFromDomain конвертирует domain.Pipeline в PipelineResponse.
func PipelineFromDomain(p *domain.Pipeline) PipelineResponse {
	return PipelineResponse{
		ID:        p.ID,
		Name:      p.Name,
		Config:    p.Config,
		IsEnabled: p.IsEnabled,
		IsDefault: p.IsDefault,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Run DTOs

// RunResponse — ответ с run.
type RunResponse struct {
	ID          string                         `json:"id"`
	Pipeline    string                         `json:"pipeline"`
	Trigger     domain.RunTrigger              `json:"trigger"`
	SyncMode    domain.SyncMode                `json:"sync_mode"`
	ChangeEvent *domain.IntegrationChangeEvent `json:"integration_change_event,omitempty"`
	CreatedAt   time.Time                      `json:"created_at"`
}

// RunFromDomain конвертирует domain.PipelineRun в RunResponse.
func RunFromDomain(run *domain.PipelineRun) RunResponse {
	return RunResponse{
		ID:          run.ID,
		Pipeline:    run.Pipeline,
		Trigger:     run.Trigger,
		SyncMode:    run.SyncMode,
		ChangeEvent: run.ChangeEvent,
		CreatedAt:   run.CreatedAt,
	}
}

// RunDetailResponse — run вместе с производным состоянием и шагами.
type RunDetailResponse struct {
	RunResponse
	State domain.RunState `json:"state"`
	Steps []StepResponse  `json:"steps"`
}

// StepResponse — ответ с шагом run'а.
type StepResponse struct {
	DataSource  string            `json:"data_source"`
	Status      domain.StepStatus `json:"status"`
	Error       *domain.StepError `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// StepFromDomain конвертирует domain.PipelineRunStep в StepResponse.
func StepFromDomain(s *domain.PipelineRunStep) StepResponse {
	return StepResponse{
		DataSource:  s.DataSource,
		Status:      s.Status,
		Error:       s.Error,
		CreatedAt:   s.CreatedAt,
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание расписания.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// ScheduleResponse — ответ с расписанием.
type ScheduleResponse struct {
	ID          uuid.UUID  `json:"id"`
	Pipeline    string     `json:"pipeline"`
	Name        string     `json:"name,omitempty"`
	CronExpr    string     `json:"cron_expr,omitempty"`
	IntervalSec int        `json:"interval_sec,omitempty"`
	Timezone    string     `json:"timezone"`
	Enabled     bool       `json:"enabled"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastRunID   string     `json:"last_run_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ScheduleFromDomain конвертирует domain.SyncSchedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.SyncSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:          s.ID,
		Pipeline:    s.Pipeline,
		Name:        s.Name,
		CronExpr:    s.CronExpr,
		IntervalSec: s.IntervalSec,
		Timezone:    s.Timezone,
		Enabled:     s.Enabled,
		NextDueAt:   s.NextDueAt,
		LastRunAt:   s.LastRunAt,
		LastRunID:   s.LastRunID,
		CreatedAt:   s.CreatedAt,
	}
}

// mustParseInt парсит строку в int с дефолтным значением.
func mustParseInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
