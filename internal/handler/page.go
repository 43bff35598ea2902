package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pkordes/trip-planner/web/internal/domain"
	"github.com/pkordes/trip-planner/web/internal/view"
)

// GetPage handles GET /. It renders the session's current view state.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	state, err := s.trips.State(r.Context(), sessionID(r))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderPage(w, r, http.StatusOK, view.Page{State: state})
}

// PostPage handles POST / from the trip request form.
// The posted fields are applied in form order, then the request is submitted
// and the browser is redirected to GET / to watch it complete.
// A request missing a required field re-renders the form with 422.
func (s *Server) PostPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	id := sessionID(r)
	for _, f := range domain.Fields {
		values, ok := r.PostForm[f.FormName()]
		if !ok {
			continue
		}
		if _, err := s.trips.UpdateField(ctx, id, f, values[0]); err != nil {
			s.pageError(w, r, err)
			return
		}
	}

	state, err := s.trips.Submit(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.renderPage(w, r, http.StatusUnprocessableEntity, view.Page{State: state, Invalid: unwrapMessage(err)})
			return
		}
		s.pageError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderPage renders p into a buffer first so a template error never leaves
// a half-written page behind.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, p view.Page) {
	var buf bytes.Buffer
	if err := s.pages.Render(&buf, p); err != nil {
		s.pageError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "page request failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
