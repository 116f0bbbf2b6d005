package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, when Storage is set, whether the
// database answers. Without Storage the service runs on the in-memory store.
type HealthHandler struct {
	Storage Pinger
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "storage": "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Storage.PingContext(ctx); err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "storage": "unreachable"})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "storage": "postgres"})
}
