// internal/round/memstore_test.go
package round

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/overtinction/server/internal/models"
)

// memStore is an in-memory implementation of GameStore and SessionStore used
// by the tests. Reads hand out copies so callers never share memory with the
// store, mimicking rows fetched from a database.
type memStore struct {
	mu       sync.Mutex
	games    map[uuid.UUID]*models.Game
	sessions map[uuid.UUID]*models.PlayerSession
}

func newMemStore() *memStore {
	return &memStore{
		games:    make(map[uuid.UUID]*models.Game),
		sessions: make(map[uuid.UUID]*models.PlayerSession),
	}
}

func cloneGame(g *models.Game) *models.Game {
	c := *g
	if g.Moderator.PlayerID != nil {
		id := *g.Moderator.PlayerID
		c.Moderator.PlayerID = &id
	}
	return &c
}

func cloneSession(s *models.PlayerSession) *models.PlayerSession {
	c := *s
	if s.Answer != nil {
		v := *s.Answer
		c.Answer = &v
	}
	if s.AnswerLetter != nil {
		v := *s.AnswerLetter
		c.AnswerLetter = &v
	}
	if s.Vote != nil {
		v := *s.Vote
		c.Vote = &v
	}
	return &c
}

func (m *memStore) addGame(g *models.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = cloneGame(g)
}

func (m *memStore) addSession(s *models.PlayerSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = cloneSession(s)
}

func (m *memStore) removeSession(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// gameSessions returns copies of the game's sessions in join order.
func (m *memStore) gameSessions(gameID uuid.UUID) []*models.PlayerSession {
	var out []*models.PlayerSession
	for _, s := range m.sessions {
		if s.GameID == gameID {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinTime.Equal(out[j].JoinTime) {
			return out[i].JoinTime.Before(out[j].JoinTime)
		}
		return out[i].JoinSeq < out[j].JoinSeq
	})
	return out
}

// GameStore

func (m *memStore) GetGame(_ context.Context, id uuid.UUID) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return cloneGame(g), nil
}

func (m *memStore) CompareAndSwapPhase(_ context.Context, id uuid.UUID, from, to models.Phase) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return false, ErrGameNotFound
	}
	if g.Phase != from {
		return false, nil
	}
	g.Phase = to
	return true, nil
}

func (m *memStore) SetModerator(_ context.Context, id uuid.UUID, mod models.Moderator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrGameNotFound
	}
	g.Moderator = mod
	if mod.PlayerID != nil {
		pid := *mod.PlayerID
		g.Moderator.PlayerID = &pid
	}
	return nil
}

// SessionStore

func (m *memStore) GetSession(_ context.Context, id uuid.UUID) (*models.PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (m *memStore) countIf(gameID uuid.UUID, pred func(*models.PlayerSession) bool) int {
	n := 0
	for _, s := range m.sessions {
		if s.GameID == gameID && pred(s) {
			n++
		}
	}
	return n
}

func (m *memStore) CountPlayers(_ context.Context, gameID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countIf(gameID, func(*models.PlayerSession) bool { return true }), nil
}

func (m *memStore) CountInRound(_ context.Context, gameID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countIf(gameID, func(s *models.PlayerSession) bool { return s.InRound }), nil
}

func (m *memStore) CountAnswered(_ context.Context, gameID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countIf(gameID, func(s *models.PlayerSession) bool { return s.InRound && s.Answer != nil }), nil
}

func (m *memStore) CountVoted(_ context.Context, gameID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countIf(gameID, func(s *models.PlayerSession) bool { return s.InRound && s.Vote != nil }), nil
}

func (m *memStore) CountAcknowledged(_ context.Context, gameID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countIf(gameID, func(s *models.PlayerSession) bool { return !s.InRound }), nil
}

func (m *memStore) IsActiveModerator(_ context.Context, gameID uuid.UUID, playerID *uuid.UUID) (bool, error) {
	if playerID == nil {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[*playerID]
	return ok && s.GameID == gameID && s.InRound, nil
}

func (m *memStore) FindAnswered(_ context.Context, gameID uuid.UUID) ([]*models.PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PlayerSession
	for _, s := range m.gameSessions(gameID) {
		if s.InRound && s.Answer != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) FindBallot(_ context.Context, gameID uuid.UUID) ([]BallotEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ballot []BallotEntry
	for _, s := range m.gameSessions(gameID) {
		if s.AnswerLetter != nil && s.Answer != nil {
			ballot = append(ballot, BallotEntry{Letter: *s.AnswerLetter, Answer: *s.Answer})
		}
	}
	sort.Slice(ballot, func(i, j int) bool { return ballot[i].Letter < ballot[j].Letter })
	return ballot, nil
}

func (m *memStore) ListRoundRecords(_ context.Context, gameID uuid.UUID) ([]*models.PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameSessions(gameID), nil
}

func (m *memStore) SetAnswer(_ context.Context, id uuid.UUID, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Answer = &answer
	return nil
}

func (m *memStore) SetVote(_ context.Context, id uuid.UUID, letter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Vote = &letter
	return nil
}

func (m *memStore) SetInRound(_ context.Context, id uuid.UUID, inRound bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.InRound = inRound
	return nil
}

func (m *memStore) SetAnswerLetter(_ context.Context, id uuid.UUID, letter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.AnswerLetter = &letter
	return nil
}

func (m *memStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memStore) SaveScores(_ context.Context, sessions []*models.PlayerSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range sessions {
		s, ok := m.sessions[in.ID]
		if !ok {
			return ErrSessionNotFound
		}
		s.Points = in.Points
		s.RoundPoints = in.RoundPoints
	}
	return nil
}

func (m *memStore) ResetForNewRound(_ context.Context, gameID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.GameID != gameID {
			continue
		}
		s.Answer = nil
		s.AnswerLetter = nil
		s.Vote = nil
		s.RoundPoints = models.RoundPoints{}
		s.InRound = true
	}
	return nil
}

func after(a *models.PlayerSession, refTime time.Time, refSeq int64, inclusive bool) bool {
	if a.JoinTime.After(refTime) {
		return true
	}
	if !a.JoinTime.Equal(refTime) {
		return false
	}
	if inclusive {
		return a.JoinSeq >= refSeq
	}
	return a.JoinSeq > refSeq
}

func (m *memStore) FirstInRoundAfter(_ context.Context, gameID uuid.UUID, refTime time.Time, refSeq int64, inclusive bool) (*models.PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.gameSessions(gameID) {
		if s.InRound && after(s, refTime, refSeq, inclusive) {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) FirstInRoundAtOrBefore(_ context.Context, gameID uuid.UUID, refTime time.Time, refSeq int64) (*models.PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.gameSessions(gameID) {
		if s.InRound && !after(s, refTime, refSeq, false) {
			return s, nil
		}
	}
	return nil, nil
}
