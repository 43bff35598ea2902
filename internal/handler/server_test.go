package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/web/internal/domain"
	"github.com/pkordes/trip-planner/web/internal/handler"
	"github.com/pkordes/trip-planner/web/internal/middleware"
	"github.com/pkordes/trip-planner/web/internal/view"
)

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	state       func(ctx context.Context, sessionID string) (domain.ViewState, error)
	updateField func(ctx context.Context, sessionID string, field domain.Field, value string) (domain.ViewState, error)
	submit      func(ctx context.Context, sessionID string) (domain.ViewState, error)
}

func (m *mockTripServicer) State(ctx context.Context, sessionID string) (domain.ViewState, error) {
	return m.state(ctx, sessionID)
}
func (m *mockTripServicer) UpdateField(ctx context.Context, sessionID string, field domain.Field, value string) (domain.ViewState, error) {
	return m.updateField(ctx, sessionID, field, value)
}
func (m *mockTripServicer) Submit(ctx context.Context, sessionID string) (domain.ViewState, error) {
	return m.submit(ctx, sessionID)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context, sessionID string) ([]domain.ExportRow, *domain.Review, error)
}

func (m *mockExportServicer) Export(ctx context.Context, sessionID string) ([]domain.ExportRow, *domain.Review, error) {
	return m.export(ctx, sessionID)
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

const testSessionID = "6f1c1c52-8a1e-4a7b-9d55-0c1f8f8f0a11"

// newHTTPHandler wires a Server with the given mocks and the real renderer
// behind the session middleware, the way main.go does in production.
func newHTTPHandler(t *testing.T, trips handler.TripServicer, exports handler.ExportServicer) http.Handler {
	t.Helper()
	pages, err := view.NewRenderer()
	require.NoError(t, err)
	srv := handler.NewServer(trips, exports, pages)
	return middleware.NewSessionHandler(false)(srv.Routes())
}

// newRequest builds a request that already carries the test session cookie.
func newRequest(method, target string, body *bytes.Buffer) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSessionID})
	return req
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

// fieldUpdate is one recorded UpdateField call.
type fieldUpdate struct {
	field domain.Field
	value string
}

// recordingTrips returns a mock that applies updates to an in-test state and
// records every call.
func recordingTrips(start domain.ViewState) (*mockTripServicer, func() []fieldUpdate, func() int) {
	var (
		mu      sync.Mutex
		state   = start
		updates []fieldUpdate
		submits int
	)
	m := &mockTripServicer{
		state: func(context.Context, string) (domain.ViewState, error) {
			mu.Lock()
			defer mu.Unlock()
			return state, nil
		},
		updateField: func(_ context.Context, _ string, f domain.Field, v string) (domain.ViewState, error) {
			mu.Lock()
			defer mu.Unlock()
			updates = append(updates, fieldUpdate{f, v})
			state = state.WithField(f, v)
			return state, nil
		},
		submit: func(context.Context, string) (domain.ViewState, error) {
			mu.Lock()
			defer mu.Unlock()
			submits++
			if err := state.Request.Validate(); err != nil {
				return state, err
			}
			state = state.BeginSubmit()
			return state, nil
		},
	}
	return m,
		func() []fieldUpdate { mu.Lock(); defer mu.Unlock(); return append([]fieldUpdate(nil), updates...) },
		func() int { mu.Lock(); defer mu.Unlock(); return submits }
}

func itineraryFixture() domain.Itinerary {
	return domain.Itinerary{
		Destination: "Paris",
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-03",
		Days: []domain.DayPlan{
			{Day: 1, Activities: []string{"Louvre", "Seine cruise"}},
			{Day: 2, Activities: []string{"Versailles"}},
		},
		Review: &domain.Review{Review: "Great plan", Suggestions: []string{"Add Montmartre"}},
	}
}
