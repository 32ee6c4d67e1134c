package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	electionerrors "agora/contexts/election-administration/election-service/domain/errors"
	electionhttp "agora/contexts/election-administration/election-service/transport/http"
)

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.CreateEventHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.elections.Handler.ListEventsHandler(r.Context(), query.Get("tenant_id"), query.Get("voting_status"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.GetEventHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.UpdateEventHandler(r.Context(), r.PathValue("event_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.OpenVotingHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePauseVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.PauseVotingHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.CloseVotingHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListElections(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ListElectionsHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePublishBallotStyle(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.PublishBallotStyleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.elections.Handler.PublishBallotStyleHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBallotStyles(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ListBallotStylesHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBallotStyle(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.GetBallotStyleHandler(
		r.Context(),
		r.URL.Query().Get("tenant_id"),
		r.PathValue("election_id"),
		r.PathValue("area_id"),
	)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrEventNotFound):
		writeElectionError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotFound):
		writeElectionError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrBallotStyleNotFound):
		writeElectionError(w, http.StatusNotFound, "ballot_style_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrEventNotEditable):
		writeElectionError(w, http.StatusConflict, "event_not_editable", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidStatusTransition):
		writeElectionError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidBallotPayload):
		writeElectionError(w, http.StatusUnprocessableEntity, "invalid_ballot_payload", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidEventInput),
		errors.Is(err, electionerrors.ErrInvalidElectionInput),
		errors.Is(err, electionerrors.ErrVotingStatusNotSupported):
		writeElectionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
