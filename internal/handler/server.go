// Package handler implements the HTTP handlers for the Mileage Log API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, entries.go, export.go, me.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/mileage-log/internal/domain"
)

// EntryServicer defines the business operations the entry handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type EntryServicer interface {
	CurrentMonth() domain.Month
	List(ctx context.Context, userID string, month domain.Month) (domain.MonthSummary, error)
	Create(ctx context.Context, userID string, raw domain.RawEntryInput) (domain.TravelEntry, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	Export(ctx context.Context, ident domain.Identity, month domain.Month) (domain.ExportArtifact, error)
}

// PublicPaths are served without authentication.
var PublicPaths = []string{"/healthz", "/openapi.yaml"}

// Server holds the dependencies shared by every handler.
type Server struct {
	entries EntryServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(entries EntryServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{entries: entries, log: log}
}

// Routes returns a chi router with every API endpoint registered.
// Authentication is not applied here: main wraps the router with the auth
// middleware, and handlers read the caller with identity.FromContext.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/me", s.GetMe)
	r.Get("/presets", s.ListPresets)

	r.Route("/entries", func(r chi.Router) {
		r.Get("/", s.ListEntries)
		r.Post("/", s.CreateEntry)
		r.Delete("/{id}", s.DeleteEntry)
	})
	r.Get("/export", s.GetExport)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
	})
	return r
}
