// internal/round/election_test.go
package round

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/overtinction/server/internal/models"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// newRing builds a game with n in-round players joined one second apart and
// returns the store, game and sessions in join order.
func newRing(n int) (*memStore, *models.Game, []*models.PlayerSession) {
	store := newMemStore()
	g := &models.Game{ID: uuid.New(), Phase: models.PhaseCollectingAnswers, MaxPlayers: 10}

	sessions := make([]*models.PlayerSession, n)
	for i := range sessions {
		sessions[i] = &models.PlayerSession{
			ID:       uuid.New(),
			GameID:   g.ID,
			Name:     string(rune('P')) + string(rune('1'+i)),
			JoinTime: baseTime.Add(time.Duration(i) * time.Second),
			JoinSeq:  int64(i + 1),
			InRound:  true,
		}
		store.addSession(sessions[i])
	}
	store.addGame(g)
	return store, g, sessions
}

func moderatorOf(s *models.PlayerSession) models.Moderator {
	id := s.ID
	return models.Moderator{PlayerID: &id, ElectedAt: s.JoinTime, JoinSeq: s.JoinSeq}
}

func TestElectModeratorNext(t *testing.T) {
	store, g, sessions := newRing(3)
	svc := NewService(store, store, nil, nil)

	mod, changed, err := svc.ElectModerator(context.Background(), g.ID, moderatorOf(sessions[0]), DirectionNext)
	if err != nil {
		t.Fatalf("ElectModerator: %v", err)
	}
	if !changed {
		t.Fatal("expected seat to change hands")
	}
	if mod.PlayerID == nil || *mod.PlayerID != sessions[1].ID {
		t.Fatalf("expected the next joiner to win the seat")
	}
}

func TestElectModeratorWrapsAround(t *testing.T) {
	store, g, sessions := newRing(3)
	svc := NewService(store, store, nil, nil)

	mod, _, err := svc.ElectModerator(context.Background(), g.ID, moderatorOf(sessions[2]), DirectionNext)
	if err != nil {
		t.Fatalf("ElectModerator: %v", err)
	}
	if mod.PlayerID == nil || *mod.PlayerID != sessions[0].ID {
		t.Fatalf("expected wrap-around to the earliest joiner")
	}
}

func TestElectModeratorSameOrNextKeepsSeat(t *testing.T) {
	store, g, sessions := newRing(3)
	svc := NewService(store, store, nil, nil)

	mod, changed, err := svc.ElectModerator(context.Background(), g.ID, moderatorOf(sessions[1]), DirectionSameOrNext)
	if err != nil {
		t.Fatalf("ElectModerator: %v", err)
	}
	if changed {
		t.Fatal("seat should not change hands")
	}
	if mod.PlayerID == nil || *mod.PlayerID != sessions[1].ID {
		t.Fatalf("expected the sitting moderator to keep the seat")
	}
}

func TestElectModeratorSkipsSittingOut(t *testing.T) {
	store, g, sessions := newRing(3)
	store.SetInRound(context.Background(), sessions[1].ID, false)
	svc := NewService(store, store, nil, nil)

	mod, _, err := svc.ElectModerator(context.Background(), g.ID, moderatorOf(sessions[0]), DirectionNext)
	if err != nil {
		t.Fatalf("ElectModerator: %v", err)
	}
	if mod.PlayerID == nil || *mod.PlayerID != sessions[2].ID {
		t.Fatalf("players sitting out are never electable")
	}
}

func TestElectModeratorNoCandidates(t *testing.T) {
	store, g, sessions := newRing(2)
	for _, s := range sessions {
		store.SetInRound(context.Background(), s.ID, false)
	}
	svc := NewService(store, store, nil, nil)

	ref := moderatorOf(sessions[0])
	mod, changed, err := svc.ElectModerator(context.Background(), g.ID, ref, DirectionNext)
	if err != nil {
		t.Fatalf("ElectModerator: %v", err)
	}
	if mod.PlayerID != nil {
		t.Fatal("no in-round players means an empty seat")
	}
	if !mod.ElectedAt.Equal(ref.ElectedAt) {
		t.Fatal("the reference point must be retained for the next election")
	}
	if !changed {
		t.Fatal("dropping a sitting moderator counts as a change")
	}
}

func TestElectModeratorJoinSeqBreaksTies(t *testing.T) {
	store := newMemStore()
	g := &models.Game{ID: uuid.New(), Phase: models.PhaseCollectingAnswers}
	store.addGame(g)

	// Two players joined within the same timestamp tick.
	a := &models.PlayerSession{ID: uuid.New(), GameID: g.ID, JoinTime: baseTime, JoinSeq: 1, InRound: true}
	b := &models.PlayerSession{ID: uuid.New(), GameID: g.ID, JoinTime: baseTime, JoinSeq: 2, InRound: true}
	store.addSession(a)
	store.addSession(b)

	svc := NewService(store, store, nil, nil)
	mod, _, err := svc.ElectModerator(context.Background(), g.ID, moderatorOf(a), DirectionNext)
	if err != nil {
		t.Fatalf("ElectModerator: %v", err)
	}
	if mod.PlayerID == nil || *mod.PlayerID != b.ID {
		t.Fatal("join sequence must disambiguate identical join times")
	}
}
