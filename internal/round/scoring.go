// internal/round/scoring.go
package round

import (
	"github.com/google/uuid"

	"github.com/overtinction/server/internal/models"
)

// Score bonuses. A voter who finds the moderator's answer earns the correct
// answer bonus; the author of a wrong answer earns the fooled bonus for every
// vote their answer attracted.
const (
	correctAnswerBonus = 2
	fooledVoteBonus    = 3
)

// ScoreRound applies the round's point deltas in place and returns the same
// slice. Self-votes never score. Votes for letters that match no answer
// contribute nothing. The moderator earns no points; under normal play they
// neither answer nor attract votes, their identity is the target.
func ScoreRound(g *models.Game, sessions []*models.PlayerSession) []*models.PlayerSession {
	byLetter := make(map[string]*models.PlayerSession)
	for _, sess := range sessions {
		if sess.AnswerLetter == nil {
			continue
		}
		byLetter[*sess.AnswerLetter] = sess
	}

	for _, voter := range sessions {
		if voter.Vote == nil {
			continue
		}
		author, ok := byLetter[*voter.Vote]
		if !ok || author.ID == voter.ID {
			continue
		}
		if author.IsModeratorOf(g) {
			voter.RoundPoints.CorrectAnswer += correctAnswerBonus
			voter.Points += correctAnswerBonus
		} else {
			author.RoundPoints.OthersWrongVote += fooledVoteBonus
			author.Points += fooledVoteBonus
		}
	}
	return sessions
}

// scoredPlayerIDs lists the sessions whose round points changed, for event
// reporting.
func scoredPlayerIDs(sessions []*models.PlayerSession) []uuid.UUID {
	var ids []uuid.UUID
	for _, sess := range sessions {
		if sess.RoundPoints.CorrectAnswer != 0 || sess.RoundPoints.OthersWrongVote != 0 {
			ids = append(ids, sess.ID)
		}
	}
	return ids
}
