// Package dashboard serves the collection summary shown on the landing
// screen.
package dashboard

import (
	"net/http"

	"planpro/internal/response"
	"planpro/internal/server"
)

// Handler serves /api/v1/dashboard.
type Handler struct {
	*server.App
}

// Summary handles GET /api/v1/dashboard: per-collection record counts plus
// the most recent audit entries.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	entries := h.Trail.Entries()
	if len(entries) > 10 {
		entries = entries[:10]
	}
	response.JSON(w, map[string]interface{}{
		"counts": h.Store.Counts(),
		"recent": entries,
	})
}
