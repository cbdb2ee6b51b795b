package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики диспетчеризации. Регистрируются в default registry,
// отдаются через /metrics (promhttp) в каждом бинарнике.
var (
	// RunsDispatched — созданные runs по причине запуска.
	RunsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "langsync_runs_dispatched_total",
		Help: "Pipeline runs dispatched, by trigger.",
	}, []string{"trigger"})

	// StepsCreated — созданные шаги runs.
	StepsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langsync_run_steps_created_total",
		Help: "Pipeline run steps created.",
	})

	// QuotaRejections — отказы по квотам: hard (ошибка вызывающему)
	// или soft (тихий пропуск change event).
	QuotaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "langsync_quota_rejections_total",
		Help: "Dispatches rejected by admission control, by mode.",
	}, []string{"mode"})

	// IndexMessagesPublished — сообщения, подтверждённые брокером.
	IndexMessagesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langsync_index_messages_published_total",
		Help: "Index messages confirmed by the broker.",
	})

	// WebhookEvents — входящие webhooks по провайдеру и исходу.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "langsync_webhook_events_total",
		Help: "Incoming webhook events, by provider and result.",
	}, []string{"provider", "result"})
)
