package domain

// Itinerary is the planning service's answer to a TripRequest.
// It is consumed read-only. Dates are kept as the service sent them so an
// unexpected format still renders verbatim instead of failing.
type Itinerary struct {
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Preferences string    `json:"preferences,omitempty"` // empty when the service omits it
	Days        []DayPlan `json:"itinerary"`
	Review      *Review   `json:"review,omitempty"` // nil when no review was produced
}

// DayPlan is one day's ordered list of activities.
// Day is a display label; the service does not guarantee it is unique.
type DayPlan struct {
	Day        int      `json:"day"`
	Activities []string `json:"activities"`
}

// Review is the optional AI commentary on an itinerary.
type Review struct {
	Review      string   `json:"review"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// HasSuggestions reports whether the suggestions list should be shown.
// An absent and an empty list are treated the same.
func (r *Review) HasSuggestions() bool {
	return r != nil && len(r.Suggestions) > 0
}
