package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/Langsync/internal/domain"
	"github.com/shaiso/Langsync/internal/mq"
)

// Storage — доступ API к БД. Реализуется repo.Stores.
type Storage interface {
	FindAccount(ctx context.Context, id string) (*domain.Account, error)

	GetPipeline(ctx context.Context, account, id string) (*domain.Pipeline, error)
	ListPipelines(ctx context.Context, account string) ([]domain.Pipeline, error)

	// UpdatePipelineWithRun обновляет pipeline и атомарно создаёт
	// run с шагами, если rws не nil (включение pipeline).
	UpdatePipelineWithRun(ctx context.Context, p *domain.Pipeline, rws *domain.RunWithSteps) error

	GetRun(ctx context.Context, pipeline, id string) (*domain.PipelineRun, error)
	ListRuns(ctx context.Context, pipeline string, limit int) ([]domain.PipelineRun, error)
	ListRunSteps(ctx context.Context, pipeline, runID string) ([]domain.PipelineRunStep, error)

	CreateSchedule(ctx context.Context, sched *domain.SyncSchedule) error
	ListSchedules(ctx context.Context, pipeline string) ([]domain.SyncSchedule, error)
	DeleteSchedule(ctx context.Context, id uuid.UUID) error
}

// RunDispatcher — запуск pipeline. Реализуется dispatch.Dispatcher.
type RunDispatcher interface {
	DispatchFullPipeline(ctx context.Context, pipeline *domain.Pipeline, trigger domain.RunTrigger) (*domain.PipelineRun, error)
	PrepareFullRun(ctx context.Context, pipeline *domain.Pipeline, trigger domain.RunTrigger) (*domain.RunWithSteps, []mq.IndexMessage, error)
	Publish(ctx context.Context, messages []mq.IndexMessage) error
}

// WebhookRouter — разворачивание события workspace по аккаунтам.
// Реализуется webhook.Router.
type WebhookRouter interface {
	Route(ctx context.Context, workspaceID string, event domain.IntegrationChangeEvent) (int, error)
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	storage       Storage
	dispatcher    RunDispatcher
	webhookRouter WebhookRouter
	auth          Authenticator
	webhookSecret []byte
	logger        *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Storage       Storage
	Dispatcher    RunDispatcher
	WebhookRouter WebhookRouter
	Auth          Authenticator
	WebhookSecret []byte
	Logger        *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		storage:       cfg.Storage,
		dispatcher:    cfg.Dispatcher,
		webhookRouter: cfg.WebhookRouter,
		auth:          cfg.Auth,
		webhookSecret: cfg.WebhookSecret,
		logger:        cfg.Logger,
	}
}
