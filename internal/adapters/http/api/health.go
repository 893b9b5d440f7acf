// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status           string      `json:"status"`
	Health           interface{} `json:"health"`
	ConnectedClients int         `json:"connectedClients"`
	Timestamp        time.Time   `json:"timestamp"`
}

// HandleHealth handles GET /health requests. The endpoint always answers 200;
// a degraded backend is reported in the body, not the status code.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.deps.LatestHealth()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:           string(snap.Status),
		Health:           snap,
		ConnectedClients: h.deps.ConnectedClients(),
		Timestamp:        time.Now().UTC(),
	})
}
