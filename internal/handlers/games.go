// internal/handlers/games.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/overtinction/server/internal/auth"
	"github.com/overtinction/server/internal/models"
)

const defaultMaxPlayers = 10

// handleListGames returns every game for the lobby listing, secrets
// stripped.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.ListGames(r.Context())
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	if games == nil {
		games = []*models.Game{}
	}
	s.writeJSON(w, http.StatusOK, games)
}

// handleCreateGame creates a game from form fields name, secret and
// max_players. The admission secret is stored as an Argon2id hash only.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	secret := r.FormValue("secret")
	if name == "" || secret == "" {
		http.Error(w, "name and secret are required", http.StatusBadRequest)
		return
	}

	maxPlayers := defaultMaxPlayers
	if v := r.FormValue("max_players"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid max_players", http.StatusBadRequest)
			return
		}
		maxPlayers = n
	}

	hash, err := auth.HashGameSecret(secret)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	g := &models.Game{
		ID:         uuid.New(),
		Name:       name,
		SecretHash: hash,
		MaxPlayers: maxPlayers,
		Phase:      models.PhaseCollectingAnswers,
	}
	if err := s.store.InsertGame(r.Context(), g); err != nil {
		s.httpError(w, r, err)
		return
	}

	s.log.WithField("game_id", g.ID).Info("game created")
	s.writeJSON(w, http.StatusCreated, g)
}

// handleDeleteGame removes a game; the admission secret doubles as the
// deletion credential. Player sessions go with it via cascade.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	hash, err := s.store.GetGameSecret(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	ok, err := auth.CompareGameSecret(r.FormValue("secret"), hash)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	if !ok {
		http.Error(w, "wrong game secret", http.StatusForbidden)
		return
	}

	if err := s.store.DeleteGame(r.Context(), gameID); err != nil {
		s.httpError(w, r, err)
		return
	}

	s.log.WithField("game_id", gameID).Info("game deleted")
	w.WriteHeader(http.StatusNoContent)
}
