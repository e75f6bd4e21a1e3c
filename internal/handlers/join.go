// internal/handlers/join.go
package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/overtinction/server/internal/auth"
	"github.com/overtinction/server/internal/models"
)

// playerColors is the palette a joining player's display color is drawn
// from.
var playerColors = []string{
	"crimson", "royalblue", "seagreen", "darkorange", "mediumpurple",
	"goldenrod", "teal", "salmon", "slategray", "olivedrab",
}

// handleJoin admits a player into a game: it checks the shared secret,
// enforces capacity and creates a fresh session record. A player joining
// mid-round is connected but sits the current round out.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
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

	g, err := s.store.GetGame(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	total, err := s.store.CountPlayers(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	if total >= g.MaxPlayers {
		http.Error(w, "game is full", http.StatusConflict)
		return
	}

	seq, err := s.store.NextJoinSeq(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	sess := &models.PlayerSession{
		ID:       uuid.New(),
		GameID:   gameID,
		Name:     name,
		Color:    playerColors[rand.Intn(len(playerColors))],
		JoinTime: time.Now().UTC(),
		JoinSeq:  seq,
		InRound:  g.Phase == models.PhaseCollectingAnswers,
	}
	if err := s.store.InsertSession(r.Context(), sess); err != nil {
		s.httpError(w, r, err)
		return
	}

	token, err := auth.CreatePlayerToken(sess.ID.String())
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	setPlayerCookie(w, token)

	next, err := s.rounds.AdvanceByID(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"game_id":   gameID,
		"player_id": sess.ID,
	}).Info("player joined")
	http.Redirect(w, r, next, http.StatusSeeOther)
}

const qrSize = 256

// handleJoinQR serves a PNG QR code pointing at the game's join URL, for
// sharing a game across the table.
func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	if _, err := s.store.GetGame(r.Context(), gameID); err != nil {
		s.httpError(w, r, err)
		return
	}

	url := s.baseURL + "/games/" + gameID.String() + "/join"
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
