package quota

import "errors"

// Ошибки проверки допуска.
var (
	// ErrAccountNotFound — аккаунт отсутствует. Фатально для вызова.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountSuspended — аккаунт заблокирован. Фатально для вызова.
	ErrAccountSuspended = errors.New("account suspended")

	// ErrQuotasExceeded — исчерпан лимит документов или токенов.
	// Для явных триггеров — жёсткая ошибка, для change events —
	// мягкий пропуск (решает вызывающая сторона).
	ErrQuotasExceeded = errors.New("quotas exceeded")
)
