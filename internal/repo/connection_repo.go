package repo

import (
	"context"
	"fmt"

	"github.com/shaiso/Langsync/internal/domain"
)

// ConnectionRepo — репозиторий для работы с integration_connections.
type ConnectionRepo struct {
	db Querier
}

// NewConnectionRepo создаёт новый ConnectionRepo.
func NewConnectionRepo(db Querier) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

// ListByWorkspace возвращает завершённые подключения провайдера
// к внешнему workspace. Несколько аккаунтов могут делить один
// workspace — вернутся все.
func (r *ConnectionRepo) ListByWorkspace(ctx context.Context, integration domain.Integration, workspaceID string) ([]domain.IntegrationConnection, error) {
	query := `
		SELECT account, integration_name, workspace_id, config, connected_at
		FROM integration_connections
		WHERE integration_name = $1
		  AND workspace_id = $2
		  AND connected_at IS NOT NULL
		ORDER BY connected_at ASC
	`
	rows, err := r.db.Query(ctx, query, integration, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []domain.IntegrationConnection
	for rows.Next() {
		var c domain.IntegrationConnection
		err := rows.Scan(
			&c.Account,
			&c.IntegrationName,
			&c.WorkspaceID,
			&c.Config,
			&c.ConnectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}
