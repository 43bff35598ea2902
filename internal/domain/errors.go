package domain

import "errors"

// ErrNotFound is returned when the requested resource does not exist,
// e.g. exporting a session that holds no itinerary.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a trip request fails the required-field
// checks (missing destination, missing or malformed dates).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPlannerUnavailable is returned by the planner client when the planning
// service cannot be reached or does not answer within the configured timeout.
var ErrPlannerUnavailable = errors.New("planner unavailable")

// ErrMalformedResponse is returned by the planner client when the response
// body is not a JSON object or does not have the itinerary shape.
var ErrMalformedResponse = errors.New("malformed planner response")
