package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shaiso/Langsync/internal/domain"
)

// RunRepo — репозиторий для работы с pipeline_runs и их шагами.
//
// Шаги живут в отдельной таблице с составным ключом
// (pipeline, pipeline_run, data_source) и создаются только вместе
// с run'ом.
type RunRepo struct {
	db Querier
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(db Querier) *RunRepo {
	return &RunRepo{db: db}
}

// Create создаёт новый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.PipelineRun) error {
	var eventJSON []byte
	if run.ChangeEvent != nil {
		var err error
		eventJSON, err = json.Marshal(run.ChangeEvent)
		if err != nil {
			return fmt.Errorf("marshal change event: %w", err)
		}
	}

	query := `
		INSERT INTO pipeline_runs (id, pipeline, run_trigger, sync_mode, integration_change_event, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.Pipeline,
		run.Trigger,
		run.SyncMode,
		eventJSON,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// CreateStep создаёт шаг run'а.
func (r *RunRepo) CreateStep(ctx context.Context, step *domain.PipelineRunStep) error {
	query := `
		INSERT INTO pipeline_run_steps (pipeline, pipeline_run, data_source, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		step.Pipeline,
		step.PipelineRun,
		step.DataSource,
		step.Status,
		step.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run step: %w", err)
	}
	return nil
}

// GetByID возвращает run по ID в рамках pipeline.
func (r *RunRepo) GetByID(ctx context.Context, pipeline, id string) (*domain.PipelineRun, error) {
	query := `
		SELECT id, pipeline, run_trigger, sync_mode, integration_change_event, created_at, updated_at
		FROM pipeline_runs
		WHERE pipeline = $1 AND id = $2
	`
	return r.scanRun(r.db.QueryRow(ctx, query, pipeline, id))
}

// ListByPipeline возвращает последние runs pipeline, новые первыми.
func (r *RunRepo) ListByPipeline(ctx context.Context, pipeline string, limit int) ([]domain.PipelineRun, error) {
	query := `
		SELECT id, pipeline, run_trigger, sync_mode, integration_change_event, created_at, updated_at
		FROM pipeline_runs
		WHERE pipeline = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, pipeline, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListSteps возвращает шаги run'а в порядке создания.
func (r *RunRepo) ListSteps(ctx context.Context, pipeline, runID string) ([]domain.PipelineRunStep, error) {
	query := `
		SELECT pipeline, pipeline_run, data_source, status, error, created_at, started_at, completed_at
		FROM pipeline_run_steps
		WHERE pipeline = $1 AND pipeline_run = $2
		ORDER BY created_at ASC, data_source ASC
	`
	rows, err := r.db.Query(ctx, query, pipeline, runID)
	if err != nil {
		return nil, fmt.Errorf("list run steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.PipelineRunStep
	for rows.Next() {
		var s domain.PipelineRunStep
		var errJSON []byte

		err := rows.Scan(
			&s.Pipeline,
			&s.PipelineRun,
			&s.DataSource,
			&s.Status,
			&errJSON,
			&s.CreatedAt,
			&s.StartedAt,
			&s.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run step: %w", err)
		}

		if errJSON != nil {
			s.Error = &domain.StepError{}
			if err := json.Unmarshal(errJSON, s.Error); err != nil {
				return nil, fmt.Errorf("unmarshal step error: %w", err)
			}
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

// scanRun сканирует одну строку в PipelineRun.
func (r *RunRepo) scanRun(row pgx.Row) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	var eventJSON []byte

	err := row.Scan(
		&run.ID,
		&run.Pipeline,
		&run.Trigger,
		&run.SyncMode,
		&eventJSON,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if eventJSON != nil {
		run.ChangeEvent = &domain.IntegrationChangeEvent{}
		if err := json.Unmarshal(eventJSON, run.ChangeEvent); err != nil {
			return nil, fmt.Errorf("unmarshal change event: %w", err)
		}
	}
	return &run, nil
}
