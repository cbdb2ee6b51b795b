package repo

import "errors"

// Ошибки хранилища, на которые вызывающие реагируют по errors.Is.
// Всё остальное оборачивается с контекстом и уходит наверх как 500.
var (
	// ErrNotFound — записи нет либо она принадлежит другому аккаунту:
	// чужие pipeline намеренно неотличимы от несуществующих.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists — нарушение уникальности (дубликат расписания).
	ErrAlreadyExists = errors.New("record already exists")
)
