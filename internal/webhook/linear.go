package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/shaiso/Langsync/internal/domain"
)

// LinearSignatureHeader — заголовок с HMAC-подписью у Linear.
const LinearSignatureHeader = "Linear-Signature"

// linearPayload — форма webhook payload Linear (нужные поля).
type linearPayload struct {
	Action         string `json:"action"`
	Type           string `json:"type"`
	OrganizationID string `json:"organizationId"`
	Data           struct {
		ID string `json:"id"`
	} `json:"data"`
}

// linearActions — словарь действий Linear → каноническое действие.
var linearActions = map[string]domain.ChangeAction{
	"create": domain.ChangeActionCreate,
	"update": domain.ChangeActionUpdate,
	"remove": domain.ChangeActionDelete,
}

// ParseLinearEvent разбирает payload Linear в каноническое событие.
//
// Возвращает (nil, workspaceID, nil) для событий, которые не
// индексируются: неизвестное действие или тип сущности. Это штатный
// no-op, Linear получит 200. Ошибка — только нечитаемый payload.
func ParseLinearEvent(body []byte) (*domain.IntegrationChangeEvent, string, error) {
	var p linearPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, "", fmt.Errorf("unmarshal linear payload: %w", err)
	}
	if p.OrganizationID == "" {
		return nil, "", fmt.Errorf("linear payload has no organizationId")
	}

	action, ok := linearActions[p.Action]
	if !ok {
		return nil, p.OrganizationID, nil
	}
	if p.Type != "Issue" {
		return nil, p.OrganizationID, nil
	}

	event := &domain.IntegrationChangeEvent{
		Integration: domain.IntegrationLinear,
		Change: domain.DocumentChange{
			Action:       action,
			DocumentID:   p.Data.ID,
			DocumentType: domain.LinearDocumentTypeIssue,
		},
	}
	return event, p.OrganizationID, nil
}
