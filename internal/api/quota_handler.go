package api

import (
	"net/http"

	"github.com/shaiso/Langsync/internal/quota"
)

// GetQuotas возвращает использование квот аккаунта.
// GET /api/v1/quotas
func (h *Handler) GetQuotas(w http.ResponseWriter, r *http.Request) {
	accountID := h.authenticate(w, r)
	if accountID == "" {
		return
	}

	account, err := h.storage.FindAccount(r.Context(), accountID)
	if HandleRepoError(w, h.logger, err, "account not found") {
		return
	}

	Success(w, quota.ProgressFor(account))
}
