package api

import (
	"errors"
	"net/http"

	"github.com/nvoss/goalfeed/internal/adapters/repository"
)

// FixturesHandler serves the REST fixture snapshot used by clients as the
// prefetch racing the stream's initial frame.
type FixturesHandler struct {
	deps Dependencies
}

// NewFixturesHandler creates a new fixtures handler.
func NewFixturesHandler(deps Dependencies) *FixturesHandler {
	return &FixturesHandler{deps: deps}
}

// HandleFixtures handles GET /fixtures requests.
func (h *FixturesHandler) HandleFixtures(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.deps.FetchAll(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrStoreUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "store_unavailable", "document store unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
