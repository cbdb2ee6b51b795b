package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Langsync/internal/domain"
)

// ConnectionStore — поиск подключений по workspace. Реализуется
// repo.Stores.
type ConnectionStore interface {
	ListConnections(ctx context.Context, integration domain.Integration, workspaceID string) ([]domain.IntegrationConnection, error)
}

// EventDispatcher — диспетчеризация события для одного аккаунта.
// Реализуется dispatch.Dispatcher.
type EventDispatcher interface {
	DispatchChangeEvent(ctx context.Context, accountID string, event domain.IntegrationChangeEvent) ([]*domain.PipelineRun, error)
}

// Router разворачивает событие workspace по подключённым аккаунтам.
type Router struct {
	store      ConnectionStore
	dispatcher EventDispatcher
	logger     *slog.Logger
}

// NewRouter создаёт новый Router.
func NewRouter(store ConnectionStore, dispatcher EventDispatcher, logger *slog.Logger) *Router {
	return &Router{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Route диспатчит событие каждому аккаунту, подключённому к workspace.
//
// Каждый аккаунт обрабатывается независимо, в собственной транзакции:
// ошибка одного логируется и не мешает остальным. Возвращает число
// созданных runs по всем аккаунтам.
func (r *Router) Route(ctx context.Context, workspaceID string, event domain.IntegrationChangeEvent) (int, error) {
	conns, err := r.store.ListConnections(ctx, event.Integration, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("list connections: %w", err)
	}

	if len(conns) == 0 {
		r.logger.Debug("no connections for workspace",
			"integration", event.Integration,
			"workspace_id", workspaceID,
		)
		return 0, nil
	}

	total := 0
	for _, conn := range conns {
		runs, err := r.dispatcher.DispatchChangeEvent(ctx, conn.Account, event)
		if err != nil {
			r.logger.Error("change event dispatch failed for account",
				"account_id", conn.Account,
				"integration", event.Integration,
				"workspace_id", workspaceID,
				"error", err,
			)
			continue
		}
		total += len(runs)
	}
	return total, nil
}
