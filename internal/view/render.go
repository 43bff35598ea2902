// Package view renders the trip request page from a domain.ViewState.
// Rendering is a pure function of its input: the same Page always produces
// the same bytes.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pkordes/trip-planner/web/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// RefreshSeconds is how often a page showing a pending request reloads itself.
const RefreshSeconds = 2

// Page is everything one render of the trip request page needs.
type Page struct {
	State domain.ViewState
	// Invalid is a validation message from a rejected submission, shown
	// above the form. Empty on a normal render.
	Invalid string
}

// Renderer executes the page templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"shortDate": ShortDate,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("view.NewRenderer: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// pageData is the template input derived from a Page.
type pageData struct {
	Request   domain.TripRequest
	Loading   bool
	Refresh   int
	Invalid   string
	Failure   string
	Itinerary *domain.Itinerary
}

// Render writes the full HTML document for p to w. Nothing is written when
// template execution fails.
func (r *Renderer) Render(w io.Writer, p Page) error {
	data := pageData{
		Request: p.State.Request,
		Loading: p.State.Loading(),
		Invalid: p.Invalid,
	}
	if data.Loading {
		data.Refresh = RefreshSeconds
	}
	if reason, ok := p.State.Failure(); ok {
		data.Failure = reason
	}
	if it, ok := p.State.Itinerary(); ok {
		data.Itinerary = &it
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		return fmt.Errorf("view.Renderer.Render: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("view.Renderer.Render: write: %w", err)
	}
	return nil
}

// ShortDate formats a calendar date as "Jan 2". The date is read as a plain
// calendar day, so no time zone can shift it. Values that are not dates are
// returned unchanged.
func ShortDate(s string) string {
	for _, layout := range []string{domain.DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2")
		}
	}
	return s
}
