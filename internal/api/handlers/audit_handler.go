package handlers

import (
	"net/http"

	"github.com/isdelr/despesas-be/internal/services"
)

// AuditHandler handles HTTP requests for the caller's activity log.
type AuditHandler struct {
	service services.AuditServiceProvider
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(service services.AuditServiceProvider) *AuditHandler {
	return &AuditHandler{service: service}
}

// GetRecent returns the caller's most recent entries, newest first.
func (h *AuditHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.GetRecentEntries(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
