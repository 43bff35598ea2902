// Package handler implements the HTTP surface of the trip planner frontend:
// the HTML page, the JSON API for script clients, the itinerary export and
// the operational endpoints. All handlers are methods on Server. They are
// split into files by concern (page.go, api.go, export.go, health.go) but
// share the same Server struct so they can access its dependencies.
//
// Every handler except the operational ones expects the page session ID set
// by middleware.NewSessionHandler in the request context.
package handler

import (
	"context"
	"io"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-planner/web/internal/domain"
	"github.com/pkordes/trip-planner/web/internal/view"
)

// TripServicer defines the page operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without a session store or a planning service.
type TripServicer interface {
	State(ctx context.Context, sessionID string) (domain.ViewState, error)
	UpdateField(ctx context.Context, sessionID string, field domain.Field, value string) (domain.ViewState, error)
	Submit(ctx context.Context, sessionID string) (domain.ViewState, error)
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, sessionID string) ([]domain.ExportRow, *domain.Review, error)
}

// PageRenderer renders the trip request page. *view.Renderer satisfies it.
type PageRenderer interface {
	Render(w io.Writer, p view.Page) error
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	trips   TripServicer
	exports ExportServicer
	pages   PageRenderer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, exports ExportServicer, pages PageRenderer) *Server {
	return &Server{trips: trips, exports: exports, pages: pages}
}

// Routes returns a chi router with every endpoint registered.
// Mount it behind middleware.NewSessionHandler.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/", s.GetPage)
	r.Post("/", s.PostPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.GetState)
		r.Put("/fields/{field}", s.PutField)
		r.Post("/submit", s.PostSubmit)
	})

	r.Get("/export", s.GetExport)
	return r
}
