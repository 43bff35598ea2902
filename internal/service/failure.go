package service

import (
	"errors"

	"github.com/pkordes/trip-planner/web/internal/domain"
)

// FailurePolicy decides how a failed planner call changes a session.
// It receives the state current at delivery time and the call's error.
type FailurePolicy func(state domain.ViewState, err error) domain.ViewState

// KeepPending leaves the session as it is. A session waiting on the failed
// call therefore keeps loading indefinitely, as the first release of the
// page did. Select it with HANG_ON_FAILURE=true.
func KeepPending(state domain.ViewState, _ error) domain.ViewState {
	return state
}

// ReportFailure ends loading and shows a message describing the failure.
func ReportFailure(state domain.ViewState, err error) domain.ViewState {
	return state.ReceiveFailure(FailureMessage(err))
}

// FailureMessage maps a planner error to the text shown to the user.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrPlannerUnavailable):
		return "The trip planner could not be reached. Please try again in a moment."
	case errors.Is(err, domain.ErrMalformedResponse):
		return "The trip planner sent back a response we could not read. Please try again."
	case errors.Is(err, domain.ErrValidation):
		return "The trip request was incomplete. Please check the form and try again."
	}
	return "Something went wrong while planning your trip. Please try again."
}
