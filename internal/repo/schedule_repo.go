package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shaiso/Langsync/internal/domain"
)

// ScheduleRepo — репозиторий для работы с sync_schedules.
type ScheduleRepo struct {
	db Querier
}

// NewScheduleRepo создаёт новый ScheduleRepo.
func NewScheduleRepo(db Querier) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

const scheduleColumns = `id, pipeline, name, cron_expr, interval_sec, timezone, enabled,
	       next_due_at, last_run_at, last_run_id, created_at, updated_at`

// Create создаёт новое расписание.
func (r *ScheduleRepo) Create(ctx context.Context, s *domain.SyncSchedule) error {
	query := `
		INSERT INTO sync_schedules (id, pipeline, name, cron_expr, interval_sec, timezone,
		                            enabled, next_due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID,
		s.Pipeline,
		nullString(s.Name),
		nullString(s.CronExpr),
		s.IntervalSec,
		s.Timezone,
		s.Enabled,
		s.NextDueAt,
		s.CreatedAt,
		s.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// GetByID возвращает расписание по ID.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM sync_schedules WHERE id = $1`
	return r.scanSchedule(r.db.QueryRow(ctx, query, id))
}

// ListByPipeline возвращает расписания pipeline в порядке создания.
func (r *ScheduleRepo) ListByPipeline(ctx context.Context, pipeline string) ([]domain.SyncSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM sync_schedules
		WHERE pipeline = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, pipeline)
}

// ListDue возвращает включённые расписания, у которых подошло
// next_due_at. Старые долги первыми, чтобы при лимите не голодали.
func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.SyncSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM sync_schedules
		WHERE enabled = TRUE AND next_due_at IS NOT NULL AND next_due_at <= $1
		ORDER BY next_due_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, now, limit)
}

// Update обновляет расписание.
func (r *ScheduleRepo) Update(ctx context.Context, s *domain.SyncSchedule) error {
	query := `
		UPDATE sync_schedules
		SET name = $2, cron_expr = $3, interval_sec = $4, timezone = $5, enabled = $6,
		    next_due_at = $7, last_run_at = $8, last_run_id = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		s.ID,
		nullString(s.Name),
		nullString(s.CronExpr),
		s.IntervalSec,
		s.Timezone,
		s.Enabled,
		s.NextDueAt,
		s.LastRunAt,
		nullString(s.LastRunID),
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет расписание.
func (r *ScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM sync_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScheduleRepo) list(ctx context.Context, query string, args ...any) ([]domain.SyncSchedule, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.SyncSchedule
	for rows.Next() {
		s, err := r.scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

// scanSchedule сканирует одну строку в SyncSchedule.
func (r *ScheduleRepo) scanSchedule(row pgx.Row) (*domain.SyncSchedule, error) {
	var s domain.SyncSchedule
	var name *string
	var cronExpr *string
	var lastRunID *string

	err := row.Scan(
		&s.ID,
		&s.Pipeline,
		&name,
		&cronExpr,
		&s.IntervalSec,
		&s.Timezone,
		&s.Enabled,
		&s.NextDueAt,
		&s.LastRunAt,
		&lastRunID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}

	if name != nil {
		s.Name = *name
	}
	if cronExpr != nil {
		s.CronExpr = *cronExpr
	}
	if lastRunID != nil {
		s.LastRunID = *lastRunID
	}
	return &s, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
