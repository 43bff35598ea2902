// Package service contains the behaviour of the trip request page.
// Services validate input, drive the view state transitions, and orchestrate
// the planner call. No HTTP or storage code lives here: services depend on
// the repo.SessionRepo interface and on a PlannerClient.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/trip-planner/web/internal/domain"
	"github.com/pkordes/trip-planner/web/internal/repo"
)

// PlannerClient is the planning service as seen by TripService.
// *planner.Client satisfies it; tests pass a stub.
type PlannerClient interface {
	PlanTrip(ctx context.Context, req domain.TripRequest) (domain.Itinerary, error)
}

// TripService implements the trip request page: field updates, submission,
// and delivery of the asynchronous planner result into the session state.
type TripService struct {
	sessions  repo.SessionRepo
	planner   PlannerClient
	onFailure FailurePolicy
	log       *slog.Logger

	inflight sync.WaitGroup
}

// NewTripService constructs a TripService. A nil onFailure selects
// ReportFailure; a nil log selects slog.Default().
func NewTripService(sessions repo.SessionRepo, planner PlannerClient, onFailure FailurePolicy, log *slog.Logger) *TripService {
	if onFailure == nil {
		onFailure = ReportFailure
	}
	if log == nil {
		log = slog.Default()
	}
	return &TripService{sessions: sessions, planner: planner, onFailure: onFailure, log: log}
}

// State returns the current view state of a session.
func (s *TripService) State(ctx context.Context, sessionID string) (domain.ViewState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.ViewState{}, fmt.Errorf("service.TripService.State: %w", err)
	}
	return state, nil
}

// UpdateField sets one form input of the session. No validation happens
// here; required fields are checked on Submit.
func (s *TripService) UpdateField(ctx context.Context, sessionID string, field domain.Field, value string) (domain.ViewState, error) {
	state, err := s.sessions.Update(ctx, sessionID, func(st domain.ViewState) domain.ViewState {
		return st.WithField(field, value)
	})
	if err != nil {
		return domain.ViewState{}, fmt.Errorf("service.TripService.UpdateField: %w", err)
	}
	return state, nil
}

// Submit validates the session's trip request, moves the session to Pending
// and starts exactly one planner call in the background. It returns the
// Pending state without waiting for the call.
//
// Returns domain.ErrValidation (state unchanged, no call made) when a
// required field is missing. A Submit while another call is in flight starts
// a second call; whichever resolves last determines the final state.
func (s *TripService) Submit(ctx context.Context, sessionID string) (domain.ViewState, error) {
	var (
		req      domain.TripRequest
		rejected error
	)
	state, err := s.sessions.Update(ctx, sessionID, func(st domain.ViewState) domain.ViewState {
		req, rejected = st.Request, st.Request.Validate()
		if rejected != nil {
			return st
		}
		return st.BeginSubmit()
	})
	if err != nil {
		return domain.ViewState{}, fmt.Errorf("service.TripService.Submit: %w", err)
	}
	if rejected != nil {
		return state, fmt.Errorf("service.TripService.Submit: %w", rejected)
	}

	s.inflight.Add(1)
	go s.plan(context.WithoutCancel(ctx), sessionID, req)

	return state, nil
}

// Wait blocks until every planner call started by Submit has been delivered,
// or ctx is done.
func (s *TripService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("service.TripService.Wait: %w", ctx.Err())
	}
}

// plan performs the planner call and stores its outcome.
func (s *TripService) plan(ctx context.Context, sessionID string, req domain.TripRequest) {
	defer s.inflight.Done()

	start := time.Now()
	it, callErr := s.planner.PlanTrip(ctx, req)
	log := s.log.With(
		"session_id", sessionID,
		"destination", req.Destination,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	_, err := s.sessions.Update(ctx, sessionID, func(st domain.ViewState) domain.ViewState {
		if callErr != nil {
			return s.onFailure(st, callErr)
		}
		return st.ReceiveResult(it)
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to store plan outcome", "error", err)
		return
	}

	if callErr != nil {
		log.ErrorContext(ctx, "plan request failed", "error", callErr)
		return
	}
	log.InfoContext(ctx, "plan received", "days", len(it.Days), "review", it.Review != nil)
}
