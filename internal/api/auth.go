package api

import (
	"errors"
	"net/http"
	"os"
)

// ErrUnauthenticated — запрос не несёт валидной идентичности аккаунта.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator извлекает идентичность аккаунта из запроса.
//
// Обмен сессий и токенов живёт во внешнем identity-сервисе перед
// этим API; сюда запрос приходит уже с резолвнутым account id.
type Authenticator interface {
	Authenticate(r *http.Request) (accountID string, err error)
}

// AccountHeader — заголовок с account id от identity-прокси.
const AccountHeader = "X-Account-Id"

// HeaderAuth читает account id из заголовка AccountHeader.
type HeaderAuth struct{}

// Authenticate возвращает account id или ErrUnauthenticated.
func (HeaderAuth) Authenticate(r *http.Request) (string, error) {
	id := r.Header.Get(AccountHeader)
	if id == "" {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// WebhookSecret возвращает секрет подписи webhooks из окружения.
func WebhookSecret() []byte {
	return []byte(os.Getenv("LINEAR_WEBHOOK_SECRET"))
}

// authenticate резолвит аккаунт запроса; при ошибке пишет 401 и
// возвращает пустую строку.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) string {
	accountID, err := h.auth.Authenticate(r)
	if err != nil {
		Unauthorized(w, "authentication required")
		return ""
	}
	return accountID
}
