package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/isdelr/despesas-be/internal/monitoring"
	"github.com/rs/zerolog/log"
)

// SnapshotSource provides the latest stats snapshot, if any.
type SnapshotSource interface {
	Latest() *monitoring.Snapshot
}

// HealthHandler reports database reachability and the last stats snapshot.
type HealthHandler struct {
	db    *sql.DB
	stats SnapshotSource
}

// NewHealthHandler creates a new HealthHandler. stats may be nil.
func NewHealthHandler(db *sql.DB, stats SnapshotSource) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

// Get handles GET /healthz.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]interface{}{"status": "ok"}
	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("Health check: database unreachable")
		body["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.stats != nil {
		if snap := h.stats.Latest(); snap != nil {
			body["stats"] = snap
		}
	}
	writeJSON(w, status, body)
}
