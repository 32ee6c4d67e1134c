package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	ballotserrors "agora/contexts/voter-experience/ballot-engine/domain/errors"
	ballothttp "agora/contexts/voter-experience/ballot-engine/transport/http"
)

func (s *Server) handleLoadBallot(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.LoadBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.LoadBallotHandler(r.Context(), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetChoice(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.SetChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.SetChoiceHandler(r.Context(), r.PathValue("election_id"), r.PathValue("contest_id"), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetExplicitInvalid(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.SetExplicitInvalidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.SetExplicitInvalidHandler(r.Context(), r.PathValue("election_id"), r.PathValue("contest_id"), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetWriteIn(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.SetWriteInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.SetWriteInHandler(r.Context(), r.PathValue("election_id"), r.PathValue("contest_id"), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetBlank(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.SetBlankHandler(r.Context(), r.PathValue("election_id"), r.PathValue("contest_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.GetSelectionHandler(r.Context(), r.PathValue("election_id"), r.PathValue("contest_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSelections(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.ListSelectionsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req ballothttp.ReviewRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}
	resp, err := s.ballots.Handler.ReviewHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBackToSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.ballots.Handler.BackToSelectionHandler(r.Context(), r.PathValue("election_id")); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.AuditHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.CastHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.InterpretHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWriteInCapacity(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.WriteInCapacityHandler(r.Context(), r.PathValue("election_id"), r.PathValue("contest_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBlankCheck(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.BlankCheckHandler(r.Context(), r.PathValue("election_id"), r.PathValue("contest_id"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ballotserrors.ErrBallotStyleNotFound):
		writeBallotError(w, http.StatusNotFound, "ballot_style_not_found", err.Error())
	case errors.Is(err, ballotserrors.ErrSessionNotFound):
		writeBallotError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, ballotserrors.ErrContestNotFound):
		writeBallotError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, ballotserrors.ErrInvalidSelectionInput):
		writeBallotError(w, http.StatusBadRequest, "invalid_selection", err.Error())
	case errors.Is(err, ballotserrors.ErrSelectionRefused):
		writeBallotError(w, http.StatusConflict, "selection_refused", err.Error())
	case errors.Is(err, ballotserrors.ErrExplicitInvalidDenied):
		writeBallotError(w, http.StatusUnprocessableEntity, "explicit_invalid_denied", err.Error())
	case errors.Is(err, ballotserrors.ErrWriteInNotAllowed):
		writeBallotError(w, http.StatusUnprocessableEntity, "write_in_not_allowed", err.Error())
	case errors.Is(err, ballotserrors.ErrReviewBlocked):
		writeBallotError(w, http.StatusUnprocessableEntity, "review_blocked", err.Error())
	case errors.Is(err, ballotserrors.ErrInvalidTransition):
		writeBallotError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, ballotserrors.ErrElectionNotOpen):
		writeBallotError(w, http.StatusConflict, "election_not_open", err.Error())
	case errors.Is(err, ballotserrors.ErrBallotAlreadyCast):
		writeBallotError(w, http.StatusConflict, "ballot_already_cast", err.Error())
	case errors.Is(err, ballotserrors.ErrConflict):
		writeBallotError(w, http.StatusConflict, "cast_conflict", err.Error())
	case errors.Is(err, ballotserrors.ErrCastFailed):
		writeBallotError(w, http.StatusBadGateway, "cast_failed", err.Error())
	case errors.Is(err, ballotserrors.ErrEncodingFailed),
		errors.Is(err, ballotserrors.ErrInconsistentHash):
		writeBallotError(w, http.StatusInternalServerError, "ballot_integrity_failure", err.Error())
	default:
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
