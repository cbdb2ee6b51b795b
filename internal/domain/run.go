package domain

import "time"

// RunTrigger — причина запуска pipeline.
type RunTrigger string

const (
	// RunTriggerManual — пользователь нажал "sync" в UI или CLI.
	RunTriggerManual RunTrigger = "manual"

	// RunTriggerSystem — системный триггер: включение pipeline
	// или периодический запуск планировщиком.
	RunTriggerSystem RunTrigger = "system"

	// RunTriggerChangeEvent — входящее событие изменения из интеграции.
	RunTriggerChangeEvent RunTrigger = "integration_change_event"
)

// SyncMode — объём работы одного run.
type SyncMode string

const (
	// SyncModeFullIndex — полная переиндексация всех документов источника.
	SyncModeFullIndex SyncMode = "full_index"

	// SyncModeSingleDocument — индексация одного документа из change event.
	SyncModeSingleDocument SyncMode = "single_document"
)

// PipelineRun — одна попытка выполнения pipeline.
//
// Создаётся один раз за вызов диспетчеризации и после создания
// неизменяем (кроме updated_at). Явного агрегатного статуса нет:
// состояние run выводится из его шагов (см. DeriveRunState).
type PipelineRun struct {
	// ID — уникальный идентификатор run.
	ID string `json:"id"`

	// Pipeline — какой pipeline выполняется.
	Pipeline string `json:"pipeline"`

	// Trigger — причина запуска.
	Trigger RunTrigger `json:"trigger"`

	// SyncMode — полная индексация или один документ.
	SyncMode SyncMode `json:"sync_mode"`

	// ChangeEvent — событие, породившее run.
	// Заполнено только для trigger=integration_change_event.
	ChangeEvent *IntegrationChangeEvent `json:"integration_change_event,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления (nil, если не менялся).
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RunWithSteps — run вместе со своими шагами.
//
// Агрегат диспетчеризации: run и его шаги всегда создаются вместе,
// в одной транзакции.
type RunWithSteps struct {
	Run   *PipelineRun      `json:"run"`
	Steps []PipelineRunStep `json:"steps"`
}
