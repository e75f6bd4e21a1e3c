// internal/round/stores.go
package round

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/overtinction/server/internal/models"
)

// GameStore is the game-record surface the orchestrator depends on. The
// orchestrator is the sole writer of phase and moderator state.
type GameStore interface {
	// GetGame fetches a game by id with the admission secret stripped.
	// Returns ErrGameNotFound if no such game exists.
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)

	// CompareAndSwapPhase atomically moves the game from one phase to
	// another and reports whether this caller performed the write. A false
	// return means another caller transitioned the game first.
	CompareAndSwapPhase(ctx context.Context, id uuid.UUID, from, to models.Phase) (bool, error)

	// SetModerator persists a new moderator seat for the game.
	SetModerator(ctx context.Context, id uuid.UUID, mod models.Moderator) error
}

// SessionStore is the player-record surface the orchestrator depends on.
// Counts are evaluated against the store's current state on every call; the
// orchestrator re-checks them on each incoming player action rather than
// blocking on a barrier.
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error)

	// CountPlayers counts every session attached to the game, in-round or not.
	CountPlayers(ctx context.Context, gameID uuid.UUID) (int, error)
	CountInRound(ctx context.Context, gameID uuid.UUID) (int, error)
	// CountAnswered counts in-round sessions with a non-null answer.
	CountAnswered(ctx context.Context, gameID uuid.UUID) (int, error)
	// CountVoted counts in-round sessions with a non-null vote.
	CountVoted(ctx context.Context, gameID uuid.UUID) (int, error)
	// CountAcknowledged counts sessions that have left the round, i.e. have
	// confirmed the results page.
	CountAcknowledged(ctx context.Context, gameID uuid.UUID) (int, error)

	// IsActiveModerator reports whether playerID references a session that
	// still exists, belongs to the game and is in the current round. A nil
	// playerID is never active.
	IsActiveModerator(ctx context.Context, gameID uuid.UUID, playerID *uuid.UUID) (bool, error)

	// FindAnswered returns the in-round sessions holding a non-null answer,
	// ordered by join time.
	FindAnswered(ctx context.Context, gameID uuid.UUID) ([]*models.PlayerSession, error)
	// FindBallot returns letter/answer pairs for every lettered answer,
	// ordered ascending by letter.
	FindBallot(ctx context.Context, gameID uuid.UUID) ([]BallotEntry, error)
	// ListRoundRecords returns every session attached to the game.
	ListRoundRecords(ctx context.Context, gameID uuid.UUID) ([]*models.PlayerSession, error)

	// SetAnswer, SetVote and SetInRound each write a single round-local field
	// on one session; the store guarantees per-row atomicity for them.
	SetAnswer(ctx context.Context, sessionID uuid.UUID, answer string) error
	SetVote(ctx context.Context, sessionID uuid.UUID, letter string) error
	SetInRound(ctx context.Context, sessionID uuid.UUID, inRound bool) error
	SetAnswerLetter(ctx context.Context, sessionID uuid.UUID, letter string) error
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	// SaveScores persists points and round points for the given sessions.
	SaveScores(ctx context.Context, sessions []*models.PlayerSession) error
	// ResetForNewRound clears answer, letter, vote and round points and puts
	// every session of the game back in the round.
	ResetForNewRound(ctx context.Context, gameID uuid.UUID) error

	// FirstInRoundAfter returns the in-round session with the smallest
	// (join_time, join_seq) greater than the reference point, strictly
	// greater unless inclusive is set. Returns nil when no such session
	// exists.
	FirstInRoundAfter(ctx context.Context, gameID uuid.UUID, refTime time.Time, refSeq int64, inclusive bool) (*models.PlayerSession, error)
	// FirstInRoundAtOrBefore returns the in-round session with the smallest
	// (join_time, join_seq) of the game, provided it does not exceed the
	// reference point. Returns nil when no such session exists.
	FirstInRoundAtOrBefore(ctx context.Context, gameID uuid.UUID, refTime time.Time, refSeq int64) (*models.PlayerSession, error)
}

// RoundEvent is the record pushed to the history queue on every transition
// the orchestrator performs.
type RoundEvent struct {
	GameID      uuid.UUID    `json:"game_id"`
	Type        string       `json:"type"`
	Phase       models.Phase `json:"phase"`
	ModeratorID *uuid.UUID   `json:"moderator_id,omitempty"`
	Timestamp   int64        `json:"timestamp"`
}

// Event types published by the orchestrator.
const (
	EventLettersAssigned  = "letters_assigned"
	EventScoresComputed   = "scores_computed"
	EventRoundReset       = "round_reset"
	EventModeratorElected = "moderator_elected"
	EventModeratorAbsent  = "moderator_absent"
)

// EventPublisher delivers round events to the history queue. Implementations
// must tolerate concurrent calls; a nil publisher disables history.
type EventPublisher interface {
	Publish(ctx context.Context, ev RoundEvent) error
}
