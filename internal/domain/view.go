package domain

// OutcomeStatus tags the variant held by an Outcome.
type OutcomeStatus string

const (
	// StatusIdle means nothing has been submitted in this session yet.
	StatusIdle OutcomeStatus = "idle"
	// StatusPending means a plan request is in flight.
	StatusPending OutcomeStatus = "pending"
	// StatusSuccess means Itinerary holds the last response.
	StatusSuccess OutcomeStatus = "success"
	// StatusFailure means the last request failed; Reason says why.
	StatusFailure OutcomeStatus = "failure"
)

// Outcome is the result of the most recent submission:
// Idle | Pending | Success(Itinerary) | Failure(Reason).
// Only the field matching Status is populated.
type Outcome struct {
	Status    OutcomeStatus `json:"status"`
	Itinerary *Itinerary    `json:"itinerary,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// ViewState is everything the trip request page renders from.
// It is a value type: every transition returns a new ViewState and leaves
// the receiver untouched.
type ViewState struct {
	Request TripRequest `json:"request"`
	Outcome Outcome     `json:"outcome"`
}

// NewViewState returns the state of a fresh page session: empty form,
// nothing loading, no itinerary.
func NewViewState() ViewState {
	return ViewState{Outcome: Outcome{Status: StatusIdle}}
}

// Loading reports whether a submission is in flight.
func (s ViewState) Loading() bool {
	return s.Outcome.Status == StatusPending
}

// Itinerary returns the itinerary to display, if any.
func (s ViewState) Itinerary() (Itinerary, bool) {
	if s.Outcome.Status != StatusSuccess || s.Outcome.Itinerary == nil {
		return Itinerary{}, false
	}
	return *s.Outcome.Itinerary, true
}

// Failure returns the reason of the last failed submission, if any.
func (s ViewState) Failure() (string, bool) {
	if s.Outcome.Status != StatusFailure {
		return "", false
	}
	return s.Outcome.Reason, true
}

// WithField sets one form input. The outcome is untouched, so typing while
// a request is in flight neither cancels it nor hides the spinner.
func (s ViewState) WithField(f Field, value string) ViewState {
	s.Request = s.Request.With(f, value)
	return s
}

// BeginSubmit moves to Pending and drops any itinerary or failure on
// display, so a stale result never shows next to a fresh request.
func (s ViewState) BeginSubmit() ViewState {
	s.Outcome = Outcome{Status: StatusPending}
	return s
}

// ReceiveResult stores a planning response and ends loading.
// It applies regardless of the current status: the last response to arrive wins.
func (s ViewState) ReceiveResult(it Itinerary) ViewState {
	s.Outcome = Outcome{Status: StatusSuccess, Itinerary: &it}
	return s
}

// ReceiveFailure records a failed submission and ends loading.
func (s ViewState) ReceiveFailure(reason string) ViewState {
	s.Outcome = Outcome{Status: StatusFailure, Reason: reason}
	return s
}
