// internal/round/actions.go
package round

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SubmitAnswer records a player's answer for the current round and
// re-evaluates the game. The moderator's submission is ignored; their answer
// is implicit and counting it would stall the barrier. Returns the URL the
// player should land on next.
func (s *Service) SubmitAnswer(ctx context.Context, gameID, playerID uuid.UUID, text string) (string, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	sess, err := s.sessions.GetSession(ctx, playerID)
	if err != nil {
		return "", err
	}
	if !sess.IsModeratorOf(g) {
		if err := s.sessions.SetAnswer(ctx, playerID, text); err != nil {
			return "", fmt.Errorf("store answer for session %s: %w", playerID, err)
		}
	}
	return s.AdvanceByID(ctx, gameID)
}

// SubmitVote records a player's vote for an answer letter and re-evaluates
// the game.
func (s *Service) SubmitVote(ctx context.Context, gameID, playerID uuid.UUID, letter string) (string, error) {
	if _, err := s.sessions.GetSession(ctx, playerID); err != nil {
		return "", err
	}
	if err := s.sessions.SetVote(ctx, playerID, letter); err != nil {
		return "", fmt.Errorf("store vote for session %s: %w", playerID, err)
	}
	return s.AdvanceByID(ctx, gameID)
}

// AcknowledgeResults marks a player as done with the results page. The next
// round starts once every player of the game has acknowledged.
func (s *Service) AcknowledgeResults(ctx context.Context, gameID, playerID uuid.UUID) (string, error) {
	if _, err := s.sessions.GetSession(ctx, playerID); err != nil {
		return "", err
	}
	if err := s.sessions.SetInRound(ctx, playerID, false); err != nil {
		return "", fmt.Errorf("acknowledge results for session %s: %w", playerID, err)
	}
	return s.AdvanceByID(ctx, gameID)
}

// Quit removes a player's session entirely and re-evaluates the game, so the
// remaining players are not stuck waiting on the leaver. A later rejoin
// creates a fresh session with no round-local state.
func (s *Service) Quit(ctx context.Context, gameID, playerID uuid.UUID) error {
	if err := s.sessions.DeleteSession(ctx, playerID); err != nil {
		return err
	}
	if _, err := s.AdvanceByID(ctx, gameID); err != nil {
		return err
	}
	return nil
}
