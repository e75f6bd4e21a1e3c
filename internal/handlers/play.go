// internal/handlers/play.go
package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/overtinction/server/internal/models"
	"github.com/overtinction/server/internal/round"
)

// handleContinue re-evaluates the game and redirects the player to the page
// for its current phase. Clients hit this on every page load to pick up
// transitions other players triggered; this polling is the only way state
// changes propagate.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	next, err := s.rounds.AdvanceByID(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// answerPage is the payload for the answer-collection page.
type answerPage struct {
	Game        *models.Game          `json:"game"`
	You         *models.PlayerSession `json:"you"`
	IsModerator bool                  `json:"is_moderator"`
}

// handleAnswerPage returns the player's view of the answer-collection
// phase.
func (s *Server) handleAnswerPage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	playerID, err := playerSessionID(r)
	if err != nil {
		http.Error(w, "not joined", http.StatusForbidden)
		return
	}

	g, err := s.store.GetGame(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	sess, err := s.store.GetSession(r.Context(), playerID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, answerPage{
		Game:        g,
		You:         sess,
		IsModerator: sess.IsModeratorOf(g),
	})
}

// handleSubmitAnswer records the player's answer and follows the game to
// wherever that action moved it.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	playerID, err := playerSessionID(r)
	if err != nil {
		http.Error(w, "not joined", http.StatusForbidden)
		return
	}
	answer := r.FormValue("answer")
	if answer == "" {
		http.Error(w, "answer is required", http.StatusBadRequest)
		return
	}

	next, err := s.rounds.SubmitAnswer(r.Context(), gameID, playerID, answer)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// votePage is the payload for the voting page: the anonymized ballot.
type votePage struct {
	Game   *models.Game        `json:"game"`
	Ballot []round.BallotEntry `json:"ballot"`
}

// handleVotePage returns the shuffled-letter ballot.
func (s *Server) handleVotePage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	g, err := s.store.GetGame(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	ballot, err := s.rounds.VotingBallot(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	if ballot == nil {
		ballot = []round.BallotEntry{}
	}

	s.writeJSON(w, http.StatusOK, votePage{Game: g, Ballot: ballot})
}

// handleSubmitVote records the player's vote for an answer letter.
func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	playerID, err := playerSessionID(r)
	if err != nil {
		http.Error(w, "not joined", http.StatusForbidden)
		return
	}
	letter := r.FormValue("letter")
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		http.Error(w, "vote must be a single letter", http.StatusBadRequest)
		return
	}

	next, err := s.rounds.SubmitVote(r.Context(), gameID, playerID, letter)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// handleResultsPage returns the de-anonymized round results.
func (s *Server) handleResultsPage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	res, err := s.rounds.Results(r.Context(), gameID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleAcknowledge marks the player as done with the results page; once
// everyone has acknowledged, the next round begins.
func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	playerID, err := playerSessionID(r)
	if err != nil {
		http.Error(w, "not joined", http.StatusForbidden)
		return
	}

	next, err := s.rounds.AcknowledgeResults(r.Context(), gameID, playerID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// handleQuit destroys the player's session and re-evaluates the game so the
// remaining players are not stuck waiting on the leaver.
func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID, err := gameIDParam(ps)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	playerID, err := playerSessionID(r)
	if err != nil {
		http.Error(w, "not joined", http.StatusForbidden)
		return
	}

	if err := s.rounds.Quit(r.Context(), gameID, playerID); err != nil {
		s.httpError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
