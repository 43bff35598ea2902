package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/trip-planner/web/internal/domain"
)

// StateResponse is the JSON form of a session's view state.
type StateResponse struct {
	Request domain.TripRequest `json:"request"`
	Outcome domain.Outcome     `json:"outcome"`
	Loading bool               `json:"loading"`
}

// FieldRequest is the body of PUT /api/fields/{field}.
type FieldRequest struct {
	Value *string `json:"value"`
}

// GetState handles GET /api/state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := s.trips.State(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateToResponse(state))
}

// PutField handles PUT /api/fields/{field}.
// The field may be named in snake_case or by its form control id.
func (s *Server) PutField(w http.ResponseWriter, r *http.Request) {
	field, err := domain.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, unwrapMessage(err))
		return
	}

	var body FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBodyError(w, err, `request body must be {"value": string}`)
		return
	}
	if body.Value == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "value is required")
		return
	}

	state, err := s.trips.UpdateField(r.Context(), sessionID(r), field, *body.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateToResponse(state))
}

// PostSubmit handles POST /api/submit.
// It answers 202 with the pending state; poll GET /api/state for the outcome.
func (s *Server) PostSubmit(w http.ResponseWriter, r *http.Request) {
	state, err := s.trips.Submit(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, stateToResponse(state))
}

func stateToResponse(s domain.ViewState) StateResponse {
	return StateResponse{Request: s.Request, Outcome: s.Outcome, Loading: s.Loading()}
}
