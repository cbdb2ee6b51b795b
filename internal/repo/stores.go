package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shaiso/Langsync/internal/domain"
)

// Stores — все репозитории над одним DB.
//
// NewStores собирает их над пулом; InTx выдаёт копию, привязанную
// к транзакции, так что внутри callback'а те же репозитории пишут
// атомарно.
type Stores struct {
	db DB

	Accounts    *AccountRepo
	Pipelines   *PipelineRepo
	Connections *ConnectionRepo
	Runs        *RunRepo
	Schedules   *ScheduleRepo
}

// NewStores создаёт репозитории над db.
func NewStores(db DB) *Stores {
	return &Stores{
		db:          db,
		Accounts:    NewAccountRepo(db),
		Pipelines:   NewPipelineRepo(db),
		Connections: NewConnectionRepo(db),
		Runs:        NewRunRepo(db),
		Schedules:   NewScheduleRepo(db),
	}
}

// InTx выполняет fn в одной транзакции. Репозитории переданного
// Stores привязаны к транзакции; ошибка из fn откатывает всё.
// Вложенный InTx открывает savepoint.
func (s *Stores) InTx(ctx context.Context, fn func(tx *Stores) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(NewStores(tx))
	})
}

// FindAccount возвращает аккаунт по ID.
func (s *Stores) FindAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.Accounts.GetByID(ctx, id)
}

// ListPipelines возвращает pipelines аккаунта.
func (s *Stores) ListPipelines(ctx context.Context, account string) ([]domain.Pipeline, error) {
	return s.Pipelines.ListByAccount(ctx, account)
}

// ListConnections возвращает завершённые подключения провайдера
// к workspace.
func (s *Stores) ListConnections(ctx context.Context, integration domain.Integration, workspaceID string) ([]domain.IntegrationConnection, error) {
	return s.Connections.ListByWorkspace(ctx, integration, workspaceID)
}

// GetPipeline возвращает pipeline аккаунта.
func (s *Stores) GetPipeline(ctx context.Context, account, id string) (*domain.Pipeline, error) {
	return s.Pipelines.GetByAccountAndID(ctx, account, id)
}

// UpdatePipelineWithRun обновляет pipeline и, если rws не nil, создаёт
// run с шагами в той же транзакции. Откат общий: либо pipeline
// обновлён и run существует, либо ни то ни другое.
func (s *Stores) UpdatePipelineWithRun(ctx context.Context, p *domain.Pipeline, rws *domain.RunWithSteps) error {
	return s.InTx(ctx, func(tx *Stores) error {
		if err := tx.Pipelines.Update(ctx, p); err != nil {
			return err
		}
		if rws == nil {
			return nil
		}
		if err := tx.Runs.Create(ctx, rws.Run); err != nil {
			return err
		}
		for i := range rws.Steps {
			if err := tx.Runs.CreateStep(ctx, &rws.Steps[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetRun возвращает run в рамках pipeline.
func (s *Stores) GetRun(ctx context.Context, pipeline, id string) (*domain.PipelineRun, error) {
	return s.Runs.GetByID(ctx, pipeline, id)
}

// ListRuns возвращает последние runs pipeline.
func (s *Stores) ListRuns(ctx context.Context, pipeline string, limit int) ([]domain.PipelineRun, error) {
	return s.Runs.ListByPipeline(ctx, pipeline, limit)
}

// ListRunSteps возвращает шаги run'а.
func (s *Stores) ListRunSteps(ctx context.Context, pipeline, runID string) ([]domain.PipelineRunStep, error) {
	return s.Runs.ListSteps(ctx, pipeline, runID)
}

// CreateSchedule создаёт расписание.
func (s *Stores) CreateSchedule(ctx context.Context, sched *domain.SyncSchedule) error {
	return s.Schedules.Create(ctx, sched)
}

// ListSchedules возвращает расписания pipeline.
func (s *Stores) ListSchedules(ctx context.Context, pipeline string) ([]domain.SyncSchedule, error) {
	return s.Schedules.ListByPipeline(ctx, pipeline)
}

// DeleteSchedule удаляет расписание.
func (s *Stores) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	return s.Schedules.Delete(ctx, id)
}

// CreateRuns создаёт runs и их шаги в одной транзакции.
// Одна транзакция на весь батч: вызов диспетчеризации либо создаёт
// все свои строки, либо ни одной.
func (s *Stores) CreateRuns(ctx context.Context, batch []domain.RunWithSteps) error {
	if len(batch) == 0 {
		return nil
	}
	return s.InTx(ctx, func(tx *Stores) error {
		for _, rws := range batch {
			if err := tx.Runs.Create(ctx, rws.Run); err != nil {
				return err
			}
			for i := range rws.Steps {
				if err := tx.Runs.CreateStep(ctx, &rws.Steps[i]); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
