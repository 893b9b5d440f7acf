package api

import (
	"net/http"
)

// RefreshHandler is the trigger the external ingestion pipeline calls after
// mutating fixture data. Every call causes exactly one broadcast.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	Success         bool `json:"success"`
	ClientsNotified int  `json:"clientsNotified"`
}

// HandleRefresh handles POST /refresh requests. No input payload is required;
// the call itself is the "something changed" signal.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	notified, err := h.deps.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "refresh failed: document store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Success: true, ClientsNotified: notified})
}
