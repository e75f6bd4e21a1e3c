// internal/models/session.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundPoints is the per-round score breakdown for one player.
type RoundPoints struct {
	CorrectAnswer   int `json:"correct_answer"`
	OthersWrongVote int `json:"others_wrong_vote"`
}

// PlayerSession is the ephemeral record of one connected player. It is
// created when the player joins a game and destroyed when they quit, so a
// rejoining player always starts from a clean record.
//
// JoinTime together with JoinSeq forms the total order used for moderator
// election; JoinSeq is a per-game counter that disambiguates players who
// joined within the same timestamp tick.
type PlayerSession struct {
	ID       uuid.UUID `json:"id"`
	GameID   uuid.UUID `json:"game_id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	JoinTime time.Time `json:"join_time"`
	JoinSeq  int64     `json:"join_seq"`

	// InRound marks participation in the current round. A player who joins
	// mid-round stays connected but sits the round out.
	InRound bool `json:"in_round"`

	Answer       *string `json:"answer,omitempty"`
	AnswerLetter *string `json:"answer_letter,omitempty"`
	Vote         *string `json:"vote,omitempty"`

	Points      int         `json:"points"`
	RoundPoints RoundPoints `json:"round_points"`
}

// IsModeratorOf reports whether this session holds the game's moderator seat.
func (p *PlayerSession) IsModeratorOf(g *Game) bool {
	return g.Moderator.PlayerID != nil && *g.Moderator.PlayerID == p.ID
}
