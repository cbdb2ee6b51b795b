package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shaiso/Langsync/internal/domain"
)

// PipelineRepo — репозиторий для работы с pipelines.
//
// Поле config хранится как JSONB: форма конфигурации эволюционирует
// чаще, чем схема БД.
type PipelineRepo struct {
	db Querier
}

// NewPipelineRepo создаёт новый PipelineRepo.
func NewPipelineRepo(db Querier) *PipelineRepo {
	return &PipelineRepo{db: db}
}

const pipelineColumns = `id, account, name, config, is_enabled, is_default, created_at, updated_at`

// GetByID возвращает pipeline по ID без проверки владельца.
// Для запросов от имени пользователя используйте GetByAccountAndID.
func (r *PipelineRepo) GetByID(ctx context.Context, id string) (*domain.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE id = $1`
	return r.scanPipeline(r.db.QueryRow(ctx, query, id))
}

// GetByAccountAndID возвращает pipeline по ID в рамках аккаунта.
// Чужой pipeline неотличим от несуществующего: ErrNotFound.
func (r *PipelineRepo) GetByAccountAndID(ctx context.Context, account, id string) (*domain.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE account = $1 AND id = $2`
	return r.scanPipeline(r.db.QueryRow(ctx, query, account, id))
}

// ListByAccount возвращает все pipelines аккаунта в порядке создания.
func (r *PipelineRepo) ListByAccount(ctx context.Context, account string) ([]domain.Pipeline, error) {
	query := `
		SELECT ` + pipelineColumns + `
		FROM pipelines
		WHERE account = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []domain.Pipeline
	for rows.Next() {
		p, err := r.scanPipeline(rows)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, *p)
	}
	return pipelines, rows.Err()
}

// Update обновляет мутабельные поля pipeline и проставляет updated_at.
func (r *PipelineRepo) Update(ctx context.Context, p *domain.Pipeline) error {
	configJSON, err := json.Marshal(p.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	now := time.Now()
	query := `
		UPDATE pipelines
		SET name = $2, config = $3, is_enabled = $4, is_default = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		configJSON,
		p.IsEnabled,
		p.IsDefault,
		now,
	)
	if err != nil {
		return fmt.Errorf("update pipeline: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = &now
	return nil
}

// scanPipeline сканирует одну строку в Pipeline.
func (r *PipelineRepo) scanPipeline(row pgx.Row) (*domain.Pipeline, error) {
	var p domain.Pipeline
	var configJSON []byte

	err := row.Scan(
		&p.ID,
		&p.Account,
		&p.Name,
		&configJSON,
		&p.IsEnabled,
		&p.IsDefault,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan pipeline: %w", err)
	}

	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &p.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	return &p, nil
}
