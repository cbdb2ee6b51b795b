package domain

import (
	"encoding/json"
	"time"
)

// IntegrationConnection — связь аккаунта с внешним workspace.
//
// WorkspaceID — идентификатор организации/workspace, который приходит
// во входящих webhooks. Несколько аккаунтов могут быть подключены
// к одному и тому же внешнему workspace — webhook разворачивается
// по всем таким связям независимо.
type IntegrationConnection struct {
	// Account — владелец подключения.
	Account string `json:"account"`

	// IntegrationName — провайдер.
	IntegrationName Integration `json:"integration_name"`

	// WorkspaceID — внешний workspace/organization id из webhooks.
	WorkspaceID string `json:"workspace_id"`

	// Config — провайдер-специфичная конфигурация (токены OAuth и т.п.).
	// Хранится как сырой JSON: обмен токенов живёт во внешней
	// подсистеме авторизации, ядро диспетчеризации внутрь не смотрит.
	Config json.RawMessage `json:"config,omitempty"`

	// ConnectedAt — когда подключение завершило OAuth (nil — черновик).
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}
