package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shaiso/Langsync/internal/domain"
)

// AccountRepo — репозиторий для работы с accounts.
type AccountRepo struct {
	db Querier
}

// NewAccountRepo создаёт новый AccountRepo.
func NewAccountRepo(db Querier) *AccountRepo {
	return &AccountRepo{db: db}
}

// GetByID возвращает аккаунт по ID.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, email, name, is_subscriber, is_suspended, is_unlimited,
		       total_indexed_document_count, total_indexed_document_tokens,
		       created_at, last_login_at
		FROM accounts
		WHERE id = $1
	`
	var a domain.Account
	var name *string

	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Email,
		&name,
		&a.IsSubscriber,
		&a.IsSuspended,
		&a.IsUnlimited,
		&a.TotalIndexedDocumentCount,
		&a.TotalIndexedDocumentTokens,
		&a.CreatedAt,
		&a.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if name != nil {
		a.Name = *name
	}
	return &a, nil
}
