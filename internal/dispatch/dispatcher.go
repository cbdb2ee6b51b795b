package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Langsync/internal/domain"
	"github.com/shaiso/Langsync/internal/mq"
	"github.com/shaiso/Langsync/internal/quota"
	"github.com/shaiso/Langsync/internal/repo"
	"github.com/shaiso/Langsync/internal/telemetry"
)

// Storage — доступ диспетчера к БД. Реализуется repo.Stores.
type Storage interface {
	FindAccount(ctx context.Context, id string) (*domain.Account, error)
	ListPipelines(ctx context.Context, account string) ([]domain.Pipeline, error)

	// CreateRuns создаёт runs и их шаги атомарно — одна транзакция
	// на весь батч.
	CreateRuns(ctx context.Context, batch []domain.RunWithSteps) error
}

// Publisher — публикация индексирующей работы. Реализуется mq.Publisher.
type Publisher interface {
	PublishIndexBatch(ctx context.Context, messages []mq.IndexMessage) error
}

// Dispatcher — приём запусков pipeline.
type Dispatcher struct {
	storage   Storage
	publisher Publisher
	logger    *slog.Logger

	now   func() time.Time
	newID func() string
}

// Config — конфигурация Dispatcher.
type Config struct {
	Storage   Storage
	Publisher Publisher
	Logger    *slog.Logger

	// Now и NewID перекрываются в тестах; nil — time.Now и uuid.
	Now   func() time.Time
	NewID func() string
}

// New создаёт новый Dispatcher.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		storage:   cfg.Storage,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		now:       cfg.Now,
		newID:     cfg.NewID,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	return d
}

// DispatchFullPipeline запускает полную индексацию pipeline.
//
// Отказ по квотам жёсткий: ошибка возвращается вызывающему, run не
// создаётся. Выключенный pipeline — ErrPipelineDisabled.
func (d *Dispatcher) DispatchFullPipeline(ctx context.Context, pipeline *domain.Pipeline, trigger domain.RunTrigger) (*domain.PipelineRun, error) {
	if !pipeline.IsEnabled {
		return nil, ErrPipelineDisabled
	}

	rws, messages, err := d.PrepareFullRun(ctx, pipeline, trigger)
	if err != nil {
		return nil, err
	}

	if err := d.storage.CreateRuns(ctx, []domain.RunWithSteps{*rws}); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	d.recordRuns(trigger, 1, len(rws.Steps))

	if err := d.Publish(ctx, messages); err != nil {
		// Строки уже закоммичены: run существует, но работа не ушла
		// в очередь. Вызывающий получает ошибку публикации как есть.
		return rws.Run, err
	}

	logger := telemetry.WithRunID(telemetry.WithPipelineID(d.logger, pipeline.ID), rws.Run.ID)
	logger.Info("dispatched full pipeline run",
		"trigger", trigger,
		"steps", len(rws.Steps),
	)
	return rws.Run, nil
}

// PrepareFullRun проверяет квоты и собирает run с шагами и сообщениями,
// ничего не записывая. Для вызывающих, которым нужно создать строки
// в собственной транзакции (включение pipeline через PATCH).
func (d *Dispatcher) PrepareFullRun(ctx context.Context, pipeline *domain.Pipeline, trigger domain.RunTrigger) (*domain.RunWithSteps, []mq.IndexMessage, error) {
	if err := d.checkAccount(ctx, pipeline.Account); err != nil {
		telemetry.QuotaRejections.WithLabelValues("hard").Inc()
		return nil, nil, err
	}

	rws, messages := d.buildFullRun(pipeline, trigger)
	return rws, messages, nil
}

// DispatchChangeEvent разворачивает событие изменения в runs аккаунта.
//
// Run создаётся для каждого pipeline аккаунта с включённым источником
// провайдера события. Флаг is_enabled самого pipeline не участвует:
// он закрывает только полную индексацию, точечные обновления документов
// проходят. Отказ по квотам мягкий: событие пропускается, ошибки нет —
// источник события (webhook) не виноват, что лимит исчерпан.
func (d *Dispatcher) DispatchChangeEvent(ctx context.Context, accountID string, event domain.IntegrationChangeEvent) ([]*domain.PipelineRun, error) {
	if err := d.checkAccount(ctx, accountID); err != nil {
		if errors.Is(err, quota.ErrQuotasExceeded) ||
			errors.Is(err, quota.ErrAccountSuspended) ||
			errors.Is(err, quota.ErrAccountNotFound) {
			telemetry.QuotaRejections.WithLabelValues("soft").Inc()
			d.logger.Info("skipping change event",
				"account_id", accountID,
				"integration", event.Integration,
				"reason", err,
			)
			return nil, nil
		}
		return nil, err
	}

	pipelines, err := d.storage.ListPipelines(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}

	var batch []domain.RunWithSteps
	var messages []mq.IndexMessage
	now := d.now()

	for i := range pipelines {
		p := &pipelines[i]
		ds := p.Config.FindEnabledDataSource(event.Integration)
		if ds == nil {
			continue
		}

		run := &domain.PipelineRun{
			ID:          d.newID(),
			Pipeline:    p.ID,
			Trigger:     domain.RunTriggerChangeEvent,
			SyncMode:    domain.SyncModeSingleDocument,
			ChangeEvent: &event,
			CreatedAt:   now,
		}
		batch = append(batch, domain.RunWithSteps{
			Run:   run,
			Steps: []domain.PipelineRunStep{*domain.NewPendingStep(p.ID, run.ID, ds.ID, now)},
		})
		messages = append(messages, mq.NewIndexMessage(accountID, p.ID, run.ID, ds.ID))
	}

	if len(batch) == 0 {
		d.logger.Debug("change event matched no pipelines",
			"account_id", accountID,
			"integration", event.Integration,
		)
		return nil, nil
	}

	if err := d.storage.CreateRuns(ctx, batch); err != nil {
		return nil, fmt.Errorf("create runs: %w", err)
	}
	d.recordRuns(domain.RunTriggerChangeEvent, len(batch), len(batch))

	runs := make([]*domain.PipelineRun, len(batch))
	for i := range batch {
		runs[i] = batch[i].Run
	}

	if err := d.Publish(ctx, messages); err != nil {
		return runs, err
	}

	telemetry.WithAccountID(d.logger, accountID).Info("dispatched change event",
		"integration", event.Integration,
		"document_id", event.Change.DocumentID,
		"runs", len(runs),
	)
	return runs, nil
}

// Publish отправляет сообщения в очередь. Отдельный метод, чтобы
// вызывающие с собственной транзакцией публиковали после коммита.
func (d *Dispatcher) Publish(ctx context.Context, messages []mq.IndexMessage) error {
	if len(messages) == 0 {
		return nil
	}
	if err := d.publisher.PublishIndexBatch(ctx, messages); err != nil {
		d.logger.Error("failed to publish index messages", "error", err)
		return err
	}
	telemetry.IndexMessagesPublished.Add(float64(len(messages)))
	return nil
}

// checkAccount находит аккаунт и проверяет допуск по квотам.
func (d *Dispatcher) checkAccount(ctx context.Context, accountID string) error {
	account, err := d.storage.FindAccount(ctx, accountID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("find account: %w", err)
	}
	return quota.CheckAdmission(account)
}

// buildFullRun собирает run полной индексации: шаг и сообщение на
// каждый включённый источник, в порядке их хранения в config.
func (d *Dispatcher) buildFullRun(pipeline *domain.Pipeline, trigger domain.RunTrigger) (*domain.RunWithSteps, []mq.IndexMessage) {
	now := d.now()
	run := &domain.PipelineRun{
		ID:        d.newID(),
		Pipeline:  pipeline.ID,
		Trigger:   trigger,
		SyncMode:  domain.SyncModeFullIndex,
		CreatedAt: now,
	}

	var steps []domain.PipelineRunStep
	var messages []mq.IndexMessage
	for i := range pipeline.Config.DataSources {
		ds := &pipeline.Config.DataSources[i]
		if !ds.IsEnabled {
			continue
		}
		steps = append(steps, *domain.NewPendingStep(pipeline.ID, run.ID, ds.ID, now))
		messages = append(messages, mq.NewIndexMessage(pipeline.Account, pipeline.ID, run.ID, ds.ID))
	}

	return &domain.RunWithSteps{Run: run, Steps: steps}, messages
}

// recordRuns обновляет счётчики диспетчеризации.
func (d *Dispatcher) recordRuns(trigger domain.RunTrigger, runs, steps int) {
	telemetry.RunsDispatched.WithLabelValues(string(trigger)).Add(float64(runs))
	telemetry.StepsCreated.Add(float64(steps))
}
