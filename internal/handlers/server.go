// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/overtinction/server/internal/database"
	"github.com/overtinction/server/internal/round"
)

// Server holds the player-facing HTTP surface. Rendering is left to the
// client; handlers speak JSON and redirects.
type Server struct {
	rounds  *round.Service
	store   *database.Store
	log     *logrus.Logger
	baseURL string
}

// NewServer wires the HTTP surface. baseURL is the externally reachable
// prefix used for QR join links.
func NewServer(rounds *round.Service, store *database.Store, log *logrus.Logger, baseURL string) *Server {
	return &Server{
		rounds:  rounds,
		store:   store,
		log:     log,
		baseURL: baseURL,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := httprouter.New()

	r.HandlerFunc(http.MethodGet, "/", s.handleListGames)
	r.HandlerFunc(http.MethodGet, "/games", s.handleListGames)
	r.HandlerFunc(http.MethodPost, "/games", s.handleCreateGame)
	r.Handle(http.MethodDelete, "/games/:gameID", s.handleDeleteGame)

	r.Handle(http.MethodPost, "/games/:gameID/join", s.handleJoin)
	r.Handle(http.MethodGet, "/games/:gameID/qr", s.handleJoinQR)

	r.Handle(http.MethodGet, "/play/:gameID", s.handleContinue)
	r.Handle(http.MethodGet, "/play/:gameID/answer", s.handleAnswerPage)
	r.Handle(http.MethodPost, "/play/:gameID/answer", s.handleSubmitAnswer)
	r.Handle(http.MethodGet, "/play/:gameID/vote", s.handleVotePage)
	r.Handle(http.MethodPost, "/play/:gameID/vote", s.handleSubmitVote)
	r.Handle(http.MethodGet, "/play/:gameID/results", s.handleResultsPage)
	r.Handle(http.MethodPost, "/play/:gameID/results", s.handleAcknowledge)
	r.Handle(http.MethodPost, "/play/:gameID/quit", s.handleQuit)

	return r
}
