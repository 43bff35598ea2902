// Package planner is the HTTP client for the external trip planning service.
// The service is a black box reached with POST {baseURL}/plan_trip; this
// package owns the wire format and the trust boundary on its response.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/web/internal/domain"
)

// PlanTripPath is appended to the base URL for every plan request.
const PlanTripPath = "/plan_trip"

// DefaultMaxResponseBytes caps the response body read when Options leaves it unset.
const DefaultMaxResponseBytes = 1 << 20

// Options tunes the client.
type Options struct {
	// Timeout bounds a whole plan call. Zero means no timeout: a service that
	// never answers keeps the call open forever.
	Timeout time.Duration

	// MaxResponseBytes rejects larger bodies as malformed. Zero selects
	// DefaultMaxResponseBytes.
	MaxResponseBytes int64

	// StrictSchema rejects responses without an itinerary sequence, or with a
	// day lacking its activities, instead of rendering them as empty.
	StrictSchema bool
}

// Client calls the planning service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxBody    int64
	strict     bool
}

// NewClient returns a Client for the service at baseURL. The base URL is
// used as given; only a trailing slash is trimmed.
func NewClient(baseURL string, opts Options) *Client {
	maxBody := opts.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxResponseBytes
	}
	return &Client{
		endpoint:   strings.TrimSuffix(baseURL, "/") + PlanTripPath,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxBody:    maxBody,
		strict:     opts.StrictSchema,
	}
}

// Endpoint returns the full plan_trip URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// planRequest is the JSON body of POST /plan_trip.
// Field names are snake_case at this boundary.
type planRequest struct {
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Preferences string             `json:"preferences"`
}

// planResponse mirrors the itinerary JSON. Sequences are pointers so a
// missing key can be told apart from an empty array.
type planResponse struct {
	Destination string         `json:"destination"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Preferences *string        `json:"preferences"`
	Itinerary   *[]dayPlanWire `json:"itinerary"`
	Review      *reviewWire    `json:"review"`
}

type dayPlanWire struct {
	Day        int       `json:"day"`
	Activities *[]string `json:"activities"`
}

type reviewWire struct {
	Review      string   `json:"review"`
	Suggestions []string `json:"suggestions"`
}

// PlanTrip sends req to the planning service and decodes the itinerary.
//
// The HTTP status is not used to decide success: whatever JSON object the
// service returns is decoded. Errors wrap domain.ErrPlannerUnavailable for
// transport failures and domain.ErrMalformedResponse for bodies that are not
// a JSON object or, in strict mode, not itinerary-shaped.
func (c *Client) PlanTrip(ctx context.Context, req domain.TripRequest) (domain.Itinerary, error) {
	dates, err := req.Dates()
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("planner.Client.PlanTrip: %w", err)
	}

	body, err := json.Marshal(planRequest{
		Destination: req.Destination,
		StartDate:   openapi_types.Date{Time: dates[0]},
		EndDate:     openapi_types.Date{Time: dates[1]},
		Preferences: req.Preferences,
	})
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("planner.Client.PlanTrip: encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("planner.Client.PlanTrip: %w: %v", domain.ErrPlannerUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("planner.Client.PlanTrip: %w: %v", domain.ErrPlannerUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("planner.Client.PlanTrip: read body: %w: %v", domain.ErrPlannerUnavailable, err)
	}
	if int64(len(raw)) > c.maxBody {
		return domain.Itinerary{}, fmt.Errorf("planner.Client.PlanTrip: %w: body exceeds %d bytes", domain.ErrMalformedResponse, c.maxBody)
	}

	it, err := c.decode(raw)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("planner.Client.PlanTrip: status %d: %w", resp.StatusCode, err)
	}
	return it, nil
}

// decode turns a response body into an Itinerary, applying the schema check.
func (c *Client) decode(raw []byte) (domain.Itinerary, error) {
	var wire planResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.Itinerary{}, fmt.Errorf("%w: field %s: expected %s", domain.ErrMalformedResponse, typeErr.Field, typeErr.Type)
		}
		return domain.Itinerary{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return domain.Itinerary{}, fmt.Errorf("%w: body is null", domain.ErrMalformedResponse)
	}

	it := domain.Itinerary{
		Destination: wire.Destination,
		StartDate:   wire.StartDate,
		EndDate:     wire.EndDate,
		Days:        []domain.DayPlan{},
	}
	if wire.Preferences != nil {
		it.Preferences = *wire.Preferences
	}

	if wire.Itinerary == nil {
		if c.strict {
			return domain.Itinerary{}, fmt.Errorf("%w: missing itinerary", domain.ErrMalformedResponse)
		}
	} else {
		for i, d := range *wire.Itinerary {
			day := domain.DayPlan{Day: d.Day, Activities: []string{}}
			if d.Activities == nil {
				if c.strict {
					return domain.Itinerary{}, fmt.Errorf("%w: itinerary[%d] has no activities", domain.ErrMalformedResponse, i)
				}
			} else {
				day.Activities = *d.Activities
			}
			it.Days = append(it.Days, day)
		}
	}

	if wire.Review != nil {
		it.Review = &domain.Review{
			Review:      wire.Review.Review,
			Suggestions: wire.Review.Suggestions,
		}
	}
	return it, nil
}
