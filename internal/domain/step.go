package domain

import "time"

// StepStatus — статус шага run'а.
//
// Жизненный цикл:
//
//	pending → running → completed
//	                  ↘ failed
//
// Ядро диспетчеризации создаёт шаги только в pending; все переходы
// делает внешний индексирующий worker.
type StepStatus string

const (
	// StepStatusPending — шаг создан, worker его ещё не взял.
	StepStatusPending StepStatus = "pending"

	// StepStatusRunning — worker индексирует источник.
	StepStatusRunning StepStatus = "running"

	// StepStatusCompleted — индексация завершена успешно.
	StepStatusCompleted StepStatus = "completed"

	// StepStatusFailed — индексация завершилась с ошибкой.
	StepStatusFailed StepStatus = "failed"
)

// IsTerminal возвращает true, если статус финальный.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusCompleted, StepStatusFailed:
		return true
	default:
		return false
	}
}

// StepError — структурированная ошибка шага (из worker'а).
type StepError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PipelineRunStep — единица работы по одному источнику внутри run.
//
// Составной ключ: (pipeline, pipeline_run, data_source). Шаги создаются
// только при создании run — по одному на каждый включённый на тот момент
// источник — и позже не добавляются.
type PipelineRunStep struct {
	// Pipeline — pipeline, которому принадлежит шаг.
	Pipeline string `json:"pipeline"`

	// PipelineRun — run, которому принадлежит шаг.
	PipelineRun string `json:"pipeline_run"`

	// DataSource — id источника из config pipeline на момент создания run.
	DataSource string `json:"data_source"`

	// Status — текущий статус.
	Status StepStatus `json:"status"`

	// Error — структурированная ошибка для status=failed.
	Error *StepError `json:"error,omitempty"`

	// CreatedAt — время создания шага.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt — когда worker начал индексацию.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — когда worker закончил (успехом или ошибкой).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewPendingStep создаёт шаг в начальном статусе.
func NewPendingStep(pipeline, run, dataSource string, now time.Time) *PipelineRunStep {
	return &PipelineRunStep{
		Pipeline:    pipeline,
		PipelineRun: run,
		DataSource:  dataSource,
		Status:      StepStatusPending,
		CreatedAt:   now,
	}
}

// RunState — производное агрегатное состояние run.
type RunState string

const (
	// RunStateEmpty — у run нет шагов (валидно: нет включённых источников).
	RunStateEmpty RunState = "empty"

	// RunStateRunning — хотя бы один шаг pending или running.
	RunStateRunning RunState = "running"

	// RunStateCompleted — все шаги completed.
	RunStateCompleted RunState = "completed"

	// RunStateFailed — все шаги финальные и хотя бы один failed.
	RunStateFailed RunState = "failed"
)

// DeriveRunState выводит состояние run из его шагов.
// У run нет собственной колонки статуса — это единственный способ.
func DeriveRunState(steps []PipelineRunStep) RunState {
	if len(steps) == 0 {
		return RunStateEmpty
	}

	failed := false
	for i := range steps {
		if !steps[i].Status.IsTerminal() {
			return RunStateRunning
		}
		if steps[i].Status == StepStatusFailed {
			failed = true
		}
	}

	if failed {
		return RunStateFailed
	}
	return RunStateCompleted
}
