// internal/round/election.go
package round

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/overtinction/server/internal/models"
)

// Direction selects how an election treats the reference seat.
type Direction int

const (
	// DirectionNext hands the seat to the player who joined next after the
	// reference point, wrapping around to the earliest joiner.
	DirectionNext Direction = iota
	// DirectionSameOrNext keeps the reference player if they still qualify,
	// otherwise behaves like DirectionNext. Used when a round restarts
	// without a completed cycle, e.g. after the moderator disappeared.
	DirectionSameOrNext
)

// ElectModerator picks the game's next moderator by walking the ring of
// in-round players ordered by (join time, join seq). It prefers the nearest
// successor of the reference seat and wraps to the earliest joiner when the
// reference is already the latest. When no in-round player exists the seat is
// left empty but the reference point is retained, so a later election resumes
// from the same position in the ring.
//
// The second return value reports whether the seat actually changed hands,
// letting the caller skip a redundant moderator write.
func (s *Service) ElectModerator(ctx context.Context, gameID uuid.UUID, ref models.Moderator, dir Direction) (models.Moderator, bool, error) {
	inclusive := dir == DirectionSameOrNext

	cand, err := s.sessions.FirstInRoundAfter(ctx, gameID, ref.ElectedAt, ref.JoinSeq, inclusive)
	if err != nil {
		return models.Moderator{}, false, fmt.Errorf("election successor query: %w", err)
	}
	if cand == nil {
		cand, err = s.sessions.FirstInRoundAtOrBefore(ctx, gameID, ref.ElectedAt, ref.JoinSeq)
		if err != nil {
			return models.Moderator{}, false, fmt.Errorf("election wrap query: %w", err)
		}
	}

	if cand == nil {
		empty := models.Moderator{PlayerID: nil, ElectedAt: ref.ElectedAt, JoinSeq: ref.JoinSeq}
		return empty, ref.PlayerID != nil, nil
	}

	id := cand.ID
	next := models.Moderator{PlayerID: &id, ElectedAt: cand.JoinTime, JoinSeq: cand.JoinSeq}
	changed := ref.PlayerID == nil || *ref.PlayerID != id
	return next, changed, nil
}
