// Package domain contains the core data types of the trip planner frontend:
// the trip request collected by the form, the itinerary returned by the
// planning service, and the per-session view state that drives rendering.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, planner, view, handler).
package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format emitted by an HTML date control
// and expected by the planning service.
const DateLayout = "2006-01-02"

// Field identifies one input of the trip request form.
type Field string

const (
	FieldDestination Field = "destination"
	FieldStartDate   Field = "start_date"
	FieldEndDate     Field = "end_date"
	FieldPreferences Field = "preferences"
)

// Fields lists the form inputs in the order they appear on the page.
var Fields = []Field{FieldDestination, FieldStartDate, FieldEndDate, FieldPreferences}

// ParseField resolves a field name. Both the snake_case wire name and the
// camelCase form control id are accepted ("start_date" and "startDate").
func ParseField(name string) (Field, error) {
	switch name {
	case "destination":
		return FieldDestination, nil
	case "start_date", "startDate":
		return FieldStartDate, nil
	case "end_date", "endDate":
		return FieldEndDate, nil
	case "preferences":
		return FieldPreferences, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrNotFound, name)
}

// FormName returns the id/name of the HTML control bound to f.
func (f Field) FormName() string {
	switch f {
	case FieldStartDate:
		return "startDate"
	case FieldEndDate:
		return "endDate"
	}
	return string(f)
}

// TripRequest holds the form values exactly as entered.
// Dates are kept as strings because that is what the date controls submit;
// they are parsed only when the request is validated or sent.
type TripRequest struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Preferences string `json:"preferences"`
}

// With returns a copy of r with field f set to value.
func (r TripRequest) With(f Field, value string) TripRequest {
	switch f {
	case FieldDestination:
		r.Destination = value
	case FieldStartDate:
		r.StartDate = value
	case FieldEndDate:
		r.EndDate = value
	case FieldPreferences:
		r.Preferences = value
	}
	return r
}

// Value returns the current value of field f.
func (r TripRequest) Value(f Field) string {
	switch f {
	case FieldDestination:
		return r.Destination
	case FieldStartDate:
		return r.StartDate
	case FieldEndDate:
		return r.EndDate
	case FieldPreferences:
		return r.Preferences
	}
	return ""
}

// Validate enforces the required-field rules of the form:
//   - destination, start date and end date must be non-empty,
//   - both dates must be calendar dates (YYYY-MM-DD).
//
// Preferences are unconstrained. The dates are deliberately not compared
// with each other.
func (r TripRequest) Validate() error {
	if r.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if _, err := r.Dates(); err != nil {
		return err
	}
	return nil
}

// Dates parses the start and end dates. It returns ErrValidation when either
// is missing or not a calendar date.
func (r TripRequest) Dates() ([2]time.Time, error) {
	var out [2]time.Time
	for i, f := range []Field{FieldStartDate, FieldEndDate} {
		v := r.Value(f)
		if v == "" {
			return out, fmt.Errorf("%w: %s is required", ErrValidation, f)
		}
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return out, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", ErrValidation, f)
		}
		out[i] = t
	}
	return out, nil
}
