// internal/models/game.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the stage a game round is currently in. Games cycle through the
// three phases indefinitely; collectingAnswers is both the initial phase and
// the phase re-entered after showVotingResults.
type Phase string

const (
	PhaseCollectingAnswers Phase = "collectingAnswers"
	PhaseVoting            Phase = "voting"
	PhaseShowingResults    Phase = "showVotingResults"
)

// Valid reports whether p is one of the three known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseCollectingAnswers, PhaseVoting, PhaseShowingResults:
		return true
	}
	return false
}

// Route maps a phase to its player-facing route segment.
func (p Phase) Route() string {
	switch p {
	case PhaseCollectingAnswers:
		return "answer"
	case PhaseVoting:
		return "vote"
	case PhaseShowingResults:
		return "results"
	}
	return ""
}

// Moderator identifies the round's designated non-answering player. PlayerID
// is nil when no eligible player exists. ElectedAt carries the elected
// player's join time and is the reference point for the next election; it is
// retained even after the player leaves. JoinSeq breaks join-time ties.
type Moderator struct {
	PlayerID  *uuid.UUID `json:"player_id"`
	ElectedAt time.Time  `json:"elected_at"`
	JoinSeq   int64      `json:"join_seq"`
}

// Game represents a row in the games table.
type Game struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"`
	MaxPlayers int       `json:"max_players"`
	Phase      Phase     `json:"phase"`
	Moderator  Moderator `json:"moderator"`
}

// URL is the game's base play URL.
func (g *Game) URL() string {
	return "/play/" + g.ID.String()
}

// ContinueURL is the URL a player should be redirected to for the game's
// current phase.
func (g *Game) ContinueURL() string {
	return g.URL() + "/" + g.Phase.Route()
}
