package quota

import (
	"fmt"
	"math"

	"github.com/shaiso/Langsync/internal/domain"
)

// Лимиты бесплатного тарифа.
const (
	freeDocumentLimit = 100
	freeTokenLimit    = 100_000
)

// Лимиты подписчика.
const (
	subscriberDocumentLimit = 1_000
	subscriberTokenLimit    = 2_000_000 // 2M токенов * $0.0001/1000 токенов = $0.2
)

// DocumentLimit возвращает лимит проиндексированных документов.
func DocumentLimit(isSubscriber bool) int {
	if isSubscriber {
		return subscriberDocumentLimit
	}
	return freeDocumentLimit
}

// TokenLimit возвращает лимит проиндексированных токенов.
func TokenLimit(isSubscriber bool) int {
	if isSubscriber {
		return subscriberTokenLimit
	}
	return freeTokenLimit
}

// CheckAdmission решает, можно ли создавать новую индексирующую работу
// для аккаунта.
//
// account == nil трактуется как отсутствующая запись. Порядок проверок:
// unlimited-аккаунты проходят без оглядки на счётчики; затем фатальные
// состояния (не найден, заблокирован); затем оба лимита независимо,
// сравнение `>=` — достигнутый лимит уже отказ.
func CheckAdmission(account *domain.Account) error {
	if account != nil && account.IsUnlimited {
		return nil
	}

	if account == nil {
		return ErrAccountNotFound
	}
	if account.IsSuspended {
		return ErrAccountSuspended
	}

	if account.TotalIndexedDocumentCount >= DocumentLimit(account.IsSubscriber) {
		return fmt.Errorf("%w: total indexed documents %d >= %d",
			ErrQuotasExceeded, account.TotalIndexedDocumentCount, DocumentLimit(account.IsSubscriber))
	}

	if account.TotalIndexedDocumentTokens >= TokenLimit(account.IsSubscriber) {
		return fmt.Errorf("%w: total indexed document tokens %d >= %d",
			ErrQuotasExceeded, account.TotalIndexedDocumentTokens, TokenLimit(account.IsSubscriber))
	}

	return nil
}

// ServiceProgress — прогресс по одной квоте.
type ServiceProgress struct {
	Current int     `json:"current"`
	Max     int     `json:"max"`
	Percent float64 `json:"percent"`
}

// Progress — прогресс по всем квотам аккаунта.
type Progress struct {
	TotalIndexedDocuments      ServiceProgress `json:"totalIndexedDocuments"`
	TotalIndexedDocumentTokens ServiceProgress `json:"totalIndexedDocumentTokens"`
}

// ProgressFor вычисляет прогресс квот для отображения пользователю.
// Для unlimited-аккаунтов текущие значения показываются нулями.
func ProgressFor(account *domain.Account) Progress {
	docs := account.TotalIndexedDocumentCount
	tokens := account.TotalIndexedDocumentTokens
	if account.IsUnlimited {
		docs = 0
		tokens = 0
	}

	docLimit := DocumentLimit(account.IsSubscriber)
	tokenLimit := TokenLimit(account.IsSubscriber)

	return Progress{
		TotalIndexedDocuments: ServiceProgress{
			Current: docs,
			Max:     docLimit,
			Percent: roundPercent(float64(docs) / float64(docLimit) * 100),
		},
		TotalIndexedDocumentTokens: ServiceProgress{
			Current: tokens,
			Max:     tokenLimit,
			Percent: roundPercent(float64(tokens) / float64(tokenLimit) * 100),
		},
	}
}

// roundPercent округляет до двух знаков и ограничивает сверху сотней.
func roundPercent(p float64) float64 {
	if p > 100 {
		return 100
	}
	return math.Round(p*100) / 100
}
