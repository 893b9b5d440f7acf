// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/nvoss/goalfeed/internal/adapters/objstore"
	"github.com/nvoss/goalfeed/internal/domain/model"
	"github.com/nvoss/goalfeed/internal/hub"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// FetchAll reads the current fixture snapshot from the document store.
	FetchAll(ctx context.Context) (model.FixtureSnapshot, error)

	// Subscribe registers a new stream subscriber.
	Subscribe(ctx context.Context) (*hub.Subscriber, error)

	// Unsubscribe removes a subscriber from the broadcast set.
	Unsubscribe(id string)

	// ConnectedClients reports the current subscriber set size.
	ConnectedClients() int

	// Refresh re-reads the store and broadcasts a refresh frame. Returns
	// the number of subscribers the frame was delivered to.
	Refresh(ctx context.Context) (int, error)

	// LatestHealth returns the most recent health snapshot.
	LatestHealth() model.HealthSnapshot

	// GetStats returns service statistics for monitoring.
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the fixture stream API.
type Server struct {
	healthHandler   *HealthHandler
	fixturesHandler *FixturesHandler
	streamHandler   *StreamHandler
	refreshHandler  *RefreshHandler
	videoHandler    *VideoHandler
	statsHandler    *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, objects objstore.ObjectStore, opts ...Option) *Server {
	streamHandler := NewStreamHandler(deps)
	for _, opt := range opts {
		opt(streamHandler)
	}
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		fixturesHandler: NewFixturesHandler(deps),
		streamHandler:   streamHandler,
		refreshHandler:  NewRefreshHandler(deps),
		videoHandler:    NewVideoHandler(objects),
		statsHandler:    NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	r.Get("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	r.Get("/fixtures", MetricsMiddleware(s.fixturesHandler.HandleFixtures, "fixtures"))
	r.Get("/stream", s.streamHandler.HandleStream) // long-lived; excluded from duration metrics
	r.Post("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/video/{bucket}/*", MetricsMiddleware(s.videoHandler.HandleInline, "video"))
	r.Get("/download/{bucket}/*", MetricsMiddleware(s.videoHandler.HandleDownload, "download"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
