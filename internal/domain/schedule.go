package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncSchedule — расписание периодической полной индексации pipeline.
//
// Планировщик проверяет next_due_at и диспатчит полный run
// (trigger=system), когда время подошло.
type SyncSchedule struct {
	// ID — уникальный идентификатор расписания.
	ID uuid.UUID `json:"id"`

	// Pipeline — pipeline, который нужно запускать.
	Pipeline string `json:"pipeline"`

	// Name — имя расписания для удобства.
	Name string `json:"name,omitempty"`

	// CronExpr — cron-выражение ("0 3 * * *" — каждый день в 3:00).
	// Если задан, IntervalSec игнорируется.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — интервал в секундах, если CronExpr не задан.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — часовой пояс для вычисления времени (default: UTC).
	Timezone string `json:"timezone"`

	// Enabled — выключенные расписания планировщик игнорирует.
	Enabled bool `json:"enabled"`

	// NextDueAt — время следующего запуска.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// LastRunAt — время последнего запуска.
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// LastRunID — id последнего созданного run (пустой, если run
	// был пропущен, например, из-за квот).
	LastRunID string `json:"last_run_id,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCron возвращает true, если расписание использует cron-выражение.
func (s *SyncSchedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если расписание использует интервал.
func (s *SyncSchedule) IsInterval() bool {
	return s.CronExpr == "" && s.IntervalSec > 0
}

// IsDue проверяет, пора ли запускать.
func (s *SyncSchedule) IsDue(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if s.NextDueAt == nil {
		return false
	}
	return !now.Before(*s.NextDueAt)
}

// RecordTick записывает результат обработки: runID пустой, если run
// не был создан (pipeline выключен, квоты исчерпаны).
func (s *SyncSchedule) RecordTick(runID string, nextDue time.Time) {
	now := time.Now()
	if runID != "" {
		s.LastRunAt = &now
		s.LastRunID = runID
	}
	s.NextDueAt = &nextDue
	s.UpdatedAt = now
}
