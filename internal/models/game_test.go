// internal/models/game_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestPhaseRoute(t *testing.T) {
	cases := []struct {
		phase Phase
		route string
	}{
		{PhaseCollectingAnswers, "answer"},
		{PhaseVoting, "vote"},
		{PhaseShowingResults, "results"},
	}
	for _, c := range cases {
		if got := c.phase.Route(); got != c.route {
			t.Errorf("Route(%q) = %q, want %q", c.phase, got, c.route)
		}
	}
}

func TestPhaseValid(t *testing.T) {
	for _, p := range []Phase{PhaseCollectingAnswers, PhaseVoting, PhaseShowingResults} {
		if !p.Valid() {
			t.Errorf("phase %q should be valid", p)
		}
	}
	if Phase("limbo").Valid() {
		t.Error("an unknown phase must not be valid")
	}
}

func TestGameContinueURL(t *testing.T) {
	g := &Game{ID: uuid.New(), Phase: PhaseVoting}
	want := "/play/" + g.ID.String() + "/vote"
	if got := g.ContinueURL(); got != want {
		t.Errorf("ContinueURL() = %q, want %q", got, want)
	}
}

func TestIsModeratorOf(t *testing.T) {
	s := &PlayerSession{ID: uuid.New()}
	other := uuid.New()

	if s.IsModeratorOf(&Game{}) {
		t.Error("an empty seat has no moderator")
	}
	if s.IsModeratorOf(&Game{Moderator: Moderator{PlayerID: &other}}) {
		t.Error("a different seat holder is not this session")
	}
	id := s.ID
	if !s.IsModeratorOf(&Game{Moderator: Moderator{PlayerID: &id}}) {
		t.Error("the seat holder is the moderator")
	}
}
