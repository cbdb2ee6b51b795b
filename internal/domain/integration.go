package domain

// Integration — внешний источник данных, подключаемый к pipeline.
//
// Закрытое множество вариантов: каждый провайдер несёт собственную
// форму конфигурации (см. IntegrationConnection и DataSource).
type Integration string

const (
	// IntegrationNotion — Notion workspace.
	IntegrationNotion Integration = "notion"

	// IntegrationLinear — Linear organization.
	IntegrationLinear Integration = "linear"
)

// IsValid возвращает true для известного провайдера.
func (i Integration) IsValid() bool {
	switch i {
	case IntegrationNotion, IntegrationLinear:
		return true
	default:
		return false
	}
}

// ChangeAction — каноническое действие над документом во внешней системе.
//
// Провайдерские словари (например, "remove" у Linear) приводятся
// к этому множеству на границе webhook.
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "create"
	ChangeActionUpdate ChangeAction = "update"
	ChangeActionDelete ChangeAction = "delete"
)

// Известные типы документов провайдеров.
const (
	// LinearDocumentTypeIssue — issue в Linear.
	LinearDocumentTypeIssue = "issue"
)

// DocumentChange — описание одного изменения документа.
type DocumentChange struct {
	// Action — что произошло с документом.
	Action ChangeAction `json:"action"`

	// DocumentID — идентификатор документа во внешней системе.
	DocumentID string `json:"documentId"`

	// DocumentType — тип документа в канонической форме (например, "issue").
	DocumentType string `json:"documentType"`
}

// IntegrationChangeEvent — событие изменения из внешней интеграции.
//
// Транзиентный объект: собирается из webhook payload и сохраняется
// только как атрибут PipelineRun, который из него родился.
type IntegrationChangeEvent struct {
	// Integration — провайдер, приславший событие.
	Integration Integration `json:"integration"`

	// Change — само изменение.
	Change DocumentChange `json:"change"`
}
