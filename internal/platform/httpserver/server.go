package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	electionservice "agora/contexts/election-administration/election-service"
	ballotengine "agora/contexts/voter-experience/ballot-engine"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "agora/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	elections electionservice.Module
	ballots   ballotengine.Module
}

func New(
	elections electionservice.Module,
	ballots ballotengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		elections: elections,
		ballots:   ballots,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/admin/v1/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/admin/v1/events", s.handleListEvents)
	s.mux.HandleFunc("GET /api/admin/v1/events/{event_id}", s.handleGetEvent)
	s.mux.HandleFunc("PATCH /api/admin/v1/events/{event_id}", s.handleUpdateEvent)
	s.mux.HandleFunc("POST /api/admin/v1/events/{event_id}/voting/open", s.handleOpenVoting)
	s.mux.HandleFunc("POST /api/admin/v1/events/{event_id}/voting/pause", s.handlePauseVoting)
	s.mux.HandleFunc("POST /api/admin/v1/events/{event_id}/voting/close", s.handleCloseVoting)
	s.mux.HandleFunc("GET /api/admin/v1/events/{event_id}/elections", s.handleListElections)
	s.mux.HandleFunc("POST /api/admin/v1/elections/{election_id}/ballot-styles", s.handlePublishBallotStyle)
	s.mux.HandleFunc("GET /api/admin/v1/elections/{election_id}/ballot-styles", s.handleListBallotStyles)
	s.mux.HandleFunc("GET /api/admin/v1/elections/{election_id}/ballot-styles/{area_id}", s.handleGetBallotStyle)

	s.mux.HandleFunc("POST /api/voter/v1/ballot", s.handleLoadBallot)
	s.mux.HandleFunc("PUT /api/voter/v1/elections/{election_id}/contests/{contest_id}/choice", s.handleSetChoice)
	s.mux.HandleFunc("PUT /api/voter/v1/elections/{election_id}/contests/{contest_id}/invalid", s.handleSetExplicitInvalid)
	s.mux.HandleFunc("PUT /api/voter/v1/elections/{election_id}/contests/{contest_id}/write-in", s.handleSetWriteIn)
	s.mux.HandleFunc("POST /api/voter/v1/elections/{election_id}/contests/{contest_id}/blank", s.handleSetBlank)
	s.mux.HandleFunc("GET /api/voter/v1/elections/{election_id}/contests/{contest_id}/selection", s.handleGetSelection)
	s.mux.HandleFunc("GET /api/voter/v1/elections/{election_id}/contests/{contest_id}/write-in-capacity", s.handleWriteInCapacity)
	s.mux.HandleFunc("GET /api/voter/v1/elections/{election_id}/contests/{contest_id}/blank", s.handleBlankCheck)
	s.mux.HandleFunc("GET /api/voter/v1/elections/{election_id}/selections", s.handleListSelections)
	s.mux.HandleFunc("POST /api/voter/v1/elections/{election_id}/review", s.handleReview)
	s.mux.HandleFunc("POST /api/voter/v1/elections/{election_id}/back", s.handleBackToSelection)
	s.mux.HandleFunc("GET /api/voter/v1/elections/{election_id}/audit", s.handleAudit)
	s.mux.HandleFunc("POST /api/voter/v1/elections/{election_id}/cast", s.handleCast)
	s.mux.HandleFunc("GET /api/voter/v1/elections/{election_id}/interpretation", s.handleInterpret)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
