package api

import (
	"io"
	"net/http"

	"github.com/shaiso/Langsync/internal/telemetry"
	"github.com/shaiso/Langsync/internal/webhook"
)

// maxWebhookBody — лимит размера webhook payload.
const maxWebhookBody = 1 << 20

// LinearWebhook принимает события изменения из Linear.
// POST /api/v1/webhooks/linear
//
// Подпись проверяется по сырому телу до любого разбора JSON.
// События, которые не индексируются (чужой тип, неизвестное
// действие, неподключённый workspace), получают 200: ретраи
// провайдера тут не помогут.
func (h *Handler) LinearWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		BadRequest(w, "cannot read body")
		return
	}

	signature := r.Header.Get(webhook.LinearSignatureHeader)
	if err := webhook.VerifySignature(h.webhookSecret, body, signature); err != nil {
		telemetry.WebhookEvents.WithLabelValues("linear", "rejected").Inc()
		h.logger.Warn("webhook signature rejected", "provider", "linear")
		BadRequest(w, "invalid signature")
		return
	}

	event, workspaceID, err := webhook.ParseLinearEvent(body)
	if err != nil {
		telemetry.WebhookEvents.WithLabelValues("linear", "malformed").Inc()
		BadRequest(w, "malformed payload")
		return
	}

	if event == nil {
		// Действие или тип сущности не индексируется
		telemetry.WebhookEvents.WithLabelValues("linear", "ignored").Inc()
		Success(w, map[string]any{"dispatched_runs": 0})
		return
	}

	runs, err := h.webhookRouter.Route(r.Context(), workspaceID, *event)
	if err != nil {
		// Подпись валидна, сбой наш: провайдеру всё равно 200,
		// иначе он начнёт ретраить здоровое событие
		telemetry.WebhookEvents.WithLabelValues("linear", "error").Inc()
		h.logger.Error("change event routing failed",
			"provider", "linear",
			"workspace_id", workspaceID,
			"error", err,
		)
		Success(w, map[string]any{"dispatched_runs": 0})
		return
	}

	telemetry.WebhookEvents.WithLabelValues("linear", "ok").Inc()
	Success(w, map[string]any{"dispatched_runs": runs})
}
