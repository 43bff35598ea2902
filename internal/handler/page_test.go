package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/web/internal/domain"
	"github.com/pkordes/trip-planner/web/internal/middleware"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSessionID})
	return req
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

// ---- GET / -----------------------------------------------------------------

func TestGetPage_RendersItinerary(t *testing.T) {
	state := domain.NewViewState().BeginSubmit().ReceiveResult(itineraryFixture())
	var gotSession string
	trips := &mockTripServicer{
		state: func(_ context.Context, id string) (domain.ViewState, error) {
			gotSession = id
			return state, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, testSessionID, gotSession)

	doc := parseHTML(t, rec)
	assert.Equal(t, "Your Paris Adventure", doc.Find(".itinerary-title").Text())
	assert.Equal(t, 2, doc.Find(".day-card").Length())
}

func TestGetPage_NewVisitorGetsSessionCookie(t *testing.T) {
	var gotSession string
	trips := &mockTripServicer{
		state: func(_ context.Context, id string) (domain.ViewState, error) {
			gotSession = id
			return domain.NewViewState(), nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, gotSession)
}

func TestGetPage_Pending_AutoRefreshes(t *testing.T) {
	trips := &mockTripServicer{
		state: func(context.Context, string) (domain.ViewState, error) {
			return domain.NewViewState().BeginSubmit(), nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find(`meta[http-equiv="refresh"]`).Length())
	_, disabled := doc.Find("button.submit-btn").Attr("disabled")
	assert.True(t, disabled)
}

func TestGetPage_StoreError_Returns500(t *testing.T) {
	trips := &mockTripServicer{
		state: func(context.Context, string) (domain.ViewState, error) {
			return domain.ViewState{}, errors.New("redis down")
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis down")
}

// ---- POST / ----------------------------------------------------------------

func TestPostPage_AppliesFieldsSubmitsAndRedirects(t *testing.T) {
	trips, updates, submits := recordingTrips(domain.NewViewState())

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, formRequest(url.Values{
		"destination": {"Paris"},
		"startDate":   {"2024-06-01"},
		"endDate":     {"2024-06-03"},
		"preferences": {"museums"},
	}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, []fieldUpdate{
		{domain.FieldDestination, "Paris"},
		{domain.FieldStartDate, "2024-06-01"},
		{domain.FieldEndDate, "2024-06-03"},
		{domain.FieldPreferences, "museums"},
	}, updates())
	assert.Equal(t, 1, submits())
}

func TestPostPage_OmittedFieldsKeepValue(t *testing.T) {
	start := domain.NewViewState().WithField(domain.FieldPreferences, "food")
	trips, updates, _ := recordingTrips(start)

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, formRequest(url.Values{
		"destination": {"Rome"},
		"startDate":   {"2024-07-10"},
		"endDate":     {"2024-07-12"},
	}))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, u := range updates() {
		assert.NotEqual(t, domain.FieldPreferences, u.field)
	}
}

func TestPostPage_MissingRequiredField_Returns422WithForm(t *testing.T) {
	trips, _, submits := recordingTrips(domain.NewViewState())

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, formRequest(url.Values{
		"destination": {"Paris"},
		"startDate":   {"2024-06-01"},
	}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 1, submits())
	doc := parseHTML(t, rec)
	assert.Equal(t, "end_date is required", doc.Find(".form-error").Text())
	v, _ := doc.Find("#destination").Attr("value")
	assert.Equal(t, "Paris", v)
	assert.Equal(t, "Plan My Trip", doc.Find("button.submit-btn").Text())
}

func TestPostPage_SubmitError_Returns500(t *testing.T) {
	trips := &mockTripServicer{
		updateField: func(context.Context, string, domain.Field, string) (domain.ViewState, error) {
			return domain.NewViewState(), nil
		},
		submit: func(context.Context, string) (domain.ViewState, error) {
			return domain.ViewState{}, errors.New("store unavailable")
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(t, trips, nil).ServeHTTP(rec, formRequest(url.Values{"destination": {"Paris"}}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostPage_TooLarge_Returns413(t *testing.T) {
	trips, _, submits := recordingTrips(domain.NewViewState())
	h := middleware.NewMaxBodySizeHandler(64)(newHTTPHandler(t, trips, nil))

	rec := httptest.NewRecorder()
	req := formRequest(url.Values{"destination": {strings.Repeat("x", 200)}})
	req.ContentLength = -1
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, submits())
}
