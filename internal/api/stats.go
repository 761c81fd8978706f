package api

import (
	"database/sql"
	"net/http"

	"invtrack/internal/store"
)

// StatsHandler serves the dashboard overview.
type StatsHandler struct {
	DB *sql.DB
}

// Get handles GET /api/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
