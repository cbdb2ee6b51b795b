package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Langsync/internal/domain"
	"github.com/shaiso/Langsync/internal/mq"
	"github.com/shaiso/Langsync/internal/quota"
	"github.com/shaiso/Langsync/internal/repo"
)

// ScheduleStore — доступ к расписаниям. Реализуется repo.ScheduleRepo.
type ScheduleStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.SyncSchedule, error)
	Update(ctx context.Context, s *domain.SyncSchedule) error
}

// PipelineStore — доступ к pipelines. Реализуется repo.PipelineRepo.
type PipelineStore interface {
	GetByID(ctx context.Context, id string) (*domain.Pipeline, error)
}

// FullDispatcher — запуск полной индексации. Реализуется
// dispatch.Dispatcher.
type FullDispatcher interface {
	DispatchFullPipeline(ctx context.Context, pipeline *domain.Pipeline, trigger domain.RunTrigger) (*domain.PipelineRun, error)
}

// Scheduler — планировщик, обрабатывающий due расписания.
type Scheduler struct {
	schedules  ScheduleStore
	pipelines  PipelineStore
	dispatcher FullDispatcher
	logger     *slog.Logger
	batchSize  int
}

// Config — конфигурация Scheduler.
type Config struct {
	Schedules  ScheduleStore
	Pipelines  PipelineStore
	Dispatcher FullDispatcher
	Logger     *slog.Logger
	BatchSize  int // количество расписаний за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Scheduler{
		schedules:  cfg.Schedules,
		pipelines:  cfg.Pipelines,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		batchSize:  batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due расписания (enabled=true, next_due_at <= now)
// 2. Для каждого диспатчит полную индексацию (trigger=system)
// 3. Обновляет next_due_at
//
// Ошибки одного расписания не блокируют обработку остальных.
// Отказ по квотам — штатный исход: расписание сдвигается дальше,
// run не создаётся.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	due, err := s.schedules.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	s.logger.Debug("processing due schedules", "count", len(due))

	for i := range due {
		if err := s.processSchedule(ctx, &due[i], now); err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", due[i].ID,
				"pipeline_id", due[i].Pipeline,
				"error", err,
			)
		}
	}
	return nil
}

// processSchedule обрабатывает одно due расписание.
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.SyncSchedule, now time.Time) error {
	runID := ""

	pipeline, err := s.pipelines.GetByID(ctx, sched.Pipeline)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		// Pipeline удалён — расписание только сдвигаем, чтобы
		// не молотить его каждый тик
		s.logger.Warn("schedule points to missing pipeline",
			"schedule_id", sched.ID,
			"pipeline_id", sched.Pipeline,
		)
	case err != nil:
		return fmt.Errorf("get pipeline: %w", err)
	case !pipeline.IsEnabled:
		s.logger.Debug("skipping schedule for disabled pipeline",
			"schedule_id", sched.ID,
			"pipeline_id", pipeline.ID,
		)
	default:
		run, err := s.dispatcher.DispatchFullPipeline(ctx, pipeline, domain.RunTriggerSystem)
		switch {
		case errors.Is(err, quota.ErrQuotasExceeded),
			errors.Is(err, quota.ErrAccountSuspended),
			errors.Is(err, quota.ErrAccountNotFound):
			// Квоты или состояние аккаунта: run пропущен, следующая
			// попытка в следующий due
			s.logger.Info("scheduled run skipped",
				"schedule_id", sched.ID,
				"pipeline_id", pipeline.ID,
				"reason", err,
			)
		case err != nil:
			var pubErr *mq.PublishError
			if errors.As(err, &pubErr) && run != nil {
				// Строки созданы, публикация не удалась: run
				// учитываем, восстановление — забота реконсиляции
				s.logger.Warn("scheduled run created but publish failed",
					"schedule_id", sched.ID,
					"run_id", run.ID,
					"failed_ids", pubErr.FailedIDs,
				)
				runID = run.ID
				break
			}
			return fmt.Errorf("dispatch full pipeline: %w", err)
		default:
			runID = run.ID
			s.logger.Info("dispatched scheduled run",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"pipeline_id", pipeline.ID,
				"run_id", run.ID,
			)
		}
	}

	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		// Расписание некорректное — лучше не трогать next_due_at
		s.logger.Error("failed to calculate next due",
			"schedule_id", sched.ID,
			"error", err,
		)
		return nil
	}

	sched.RecordTick(runID, nextDue)
	if err := s.schedules.Update(ctx, sched); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}
