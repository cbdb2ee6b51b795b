package domain

import "time"

// Account — учётная запись владельца pipelines.
//
// Счётчики total_indexed_* обновляются внешним индексирующим worker'ом
// после каждой успешной индексации. Здесь они читаются как снимок
// для проверки квот — снимок может устареть между проверкой и
// фактической индексацией, это принятое допущение.
type Account struct {
	// ID — уникальный идентификатор аккаунта.
	ID string `json:"id"`

	// Email — адрес, по которому аккаунт создавался при signup.
	Email string `json:"email"`

	// Name — имя владельца (может быть пустым до онбординга).
	Name string `json:"name,omitempty"`

	// IsSubscriber — оплаченная подписка (повышенные квоты).
	IsSubscriber bool `json:"is_subscriber"`

	// IsSuspended — аккаунт заблокирован; никакая работа не создаётся.
	IsSuspended bool `json:"is_suspended"`

	// IsUnlimited — квоты не применяются (внутренние/партнёрские аккаунты).
	IsUnlimited bool `json:"is_unlimited"`

	// TotalIndexedDocumentCount — сколько документов уже проиндексировано.
	TotalIndexedDocumentCount int `json:"total_indexed_document_count"`

	// TotalIndexedDocumentTokens — сколько токенов уже проиндексировано.
	TotalIndexedDocumentTokens int `json:"total_indexed_document_tokens"`

	// CreatedAt — время создания аккаунта.
	CreatedAt time.Time `json:"created_at"`

	// LastLoginAt — время последнего входа.
	LastLoginAt time.Time `json:"last_login_at"`
}
