// internal/round/orchestrator.go
package round

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/overtinction/server/internal/models"
)

// Service drives the round state machine. Every player action funnels into
// Advance, which re-evaluates the current phase's completion condition and
// performs the transition when it is met. Clients discover transitions by
// polling; nothing here blocks waiting for other players.
//
// Two guards make the check-then-act section safe under concurrent calls:
// a per-game mutex serializes evaluation inside this process, and the
// compare-and-swap on the phase column guarantees at most one caller runs a
// given transition's side effects even across processes.
type Service struct {
	games    GameStore
	sessions SessionStore
	events   EventPublisher
	log      *logrus.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewService wires the orchestrator with its stores. The publisher may be nil
// to disable round history.
func NewService(games GameStore, sessions SessionStore, events EventPublisher, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		games:    games,
		sessions: sessions,
		events:   events,
		log:      log,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// gameLock returns the mutex serializing advance calls for one game.
func (s *Service) gameLock(gameID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[gameID] = l
	}
	return l
}

// AdvanceByID fetches the game and evaluates its current phase. It returns
// the URL the caller should redirect to: the next phase's URL if this call
// performed a transition, otherwise the current phase's URL.
func (s *Service) AdvanceByID(ctx context.Context, gameID uuid.UUID) (string, error) {
	l := s.gameLock(gameID)
	l.Lock()
	defer l.Unlock()

	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return s.advanceLocked(ctx, g)
}

// AdvanceGame evaluates an already loaded game. The snapshot must come from
// the store; callers that only hold an id use AdvanceByID.
func (s *Service) AdvanceGame(ctx context.Context, g *models.Game) (string, error) {
	l := s.gameLock(g.ID)
	l.Lock()
	defer l.Unlock()

	return s.advanceLocked(ctx, g)
}

func (s *Service) advanceLocked(ctx context.Context, g *models.Game) (string, error) {
	switch g.Phase {
	case models.PhaseCollectingAnswers:
		return s.advanceCollectingAnswers(ctx, g)
	case models.PhaseVoting:
		return s.advanceVoting(ctx, g)
	case models.PhaseShowingResults:
		return s.advanceShowingResults(ctx, g)
	default:
		return "", fmt.Errorf("game %s: %w: %q", g.ID, ErrInvalidPhase, g.Phase)
	}
}

// advanceCollectingAnswers transitions to voting once every in-round player
// except the moderator has answered. If the moderator's session vanished the
// round cannot finish, so it is restarted instead of counted.
func (s *Service) advanceCollectingAnswers(ctx context.Context, g *models.Game) (string, error) {
	modActive, err := s.sessions.IsActiveModerator(ctx, g.ID, g.Moderator.PlayerID)
	if err != nil {
		return "", fmt.Errorf("moderator check for game %s: %w", g.ID, err)
	}
	if !modActive {
		s.log.WithField("game_id", g.ID).Info("moderator absent, restarting round")
		s.publish(ctx, RoundEvent{GameID: g.ID, Type: EventModeratorAbsent, Phase: g.Phase})
		if err := s.restartRound(ctx, g, DirectionSameOrNext); err != nil {
			return "", err
		}
		return g.URL() + "/" + models.PhaseCollectingAnswers.Route(), nil
	}

	inRound, err := s.sessions.CountInRound(ctx, g.ID)
	if err != nil {
		return "", err
	}
	answered, err := s.sessions.CountAnswered(ctx, g.ID)
	if err != nil {
		return "", err
	}
	if inRound == 0 || answered != inRound-1 {
		return g.ContinueURL(), nil
	}

	won, err := s.games.CompareAndSwapPhase(ctx, g.ID, models.PhaseCollectingAnswers, models.PhaseVoting)
	if err != nil {
		return "", err
	}
	if !won {
		return s.currentURL(ctx, g.ID)
	}

	answeredSessions, err := s.sessions.FindAnswered(ctx, g.ID)
	if err != nil {
		return "", err
	}
	assigned, err := AssignLetters(answeredSessions)
	if err != nil {
		return "", err
	}
	for _, sess := range answeredSessions {
		if sess.AnswerLetter != nil {
			// Already lettered by an earlier invocation, leave it alone.
			continue
		}
		if err := s.sessions.SetAnswerLetter(ctx, sess.ID, assigned[sess.ID]); err != nil {
			return "", fmt.Errorf("assign letter for session %s: %w", sess.ID, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"game_id": g.ID,
		"answers": len(answeredSessions),
	}).Info("answers collected, voting open")
	s.publish(ctx, RoundEvent{GameID: g.ID, Type: EventLettersAssigned, Phase: models.PhaseVoting, ModeratorID: g.Moderator.PlayerID})

	g.Phase = models.PhaseVoting
	return g.ContinueURL(), nil
}

// advanceVoting transitions to the results page once every in-round player
// except the moderator has voted, scoring the round on the way.
func (s *Service) advanceVoting(ctx context.Context, g *models.Game) (string, error) {
	inRound, err := s.sessions.CountInRound(ctx, g.ID)
	if err != nil {
		return "", err
	}
	voted, err := s.sessions.CountVoted(ctx, g.ID)
	if err != nil {
		return "", err
	}
	if inRound == 0 || voted < inRound-1 {
		return g.ContinueURL(), nil
	}

	won, err := s.games.CompareAndSwapPhase(ctx, g.ID, models.PhaseVoting, models.PhaseShowingResults)
	if err != nil {
		return "", err
	}
	if !won {
		return s.currentURL(ctx, g.ID)
	}

	records, err := s.sessions.ListRoundRecords(ctx, g.ID)
	if err != nil {
		return "", err
	}
	ScoreRound(g, records)
	if err := s.sessions.SaveScores(ctx, records); err != nil {
		return "", fmt.Errorf("persist scores for game %s: %w", g.ID, err)
	}

	s.log.WithFields(logrus.Fields{
		"game_id": g.ID,
		"scored":  len(scoredPlayerIDs(records)),
	}).Info("votes collected, round scored")
	s.publish(ctx, RoundEvent{GameID: g.ID, Type: EventScoresComputed, Phase: models.PhaseShowingResults, ModeratorID: g.Moderator.PlayerID})

	g.Phase = models.PhaseShowingResults
	return g.ContinueURL(), nil
}

// advanceShowingResults starts the next round once every player of the game,
// in-round or not, has acknowledged the results.
func (s *Service) advanceShowingResults(ctx context.Context, g *models.Game) (string, error) {
	total, err := s.sessions.CountPlayers(ctx, g.ID)
	if err != nil {
		return "", err
	}
	acked, err := s.sessions.CountAcknowledged(ctx, g.ID)
	if err != nil {
		return "", err
	}
	if total == 0 || acked != total {
		return g.ContinueURL(), nil
	}

	won, err := s.games.CompareAndSwapPhase(ctx, g.ID, models.PhaseShowingResults, models.PhaseCollectingAnswers)
	if err != nil {
		return "", err
	}
	if !won {
		return s.currentURL(ctx, g.ID)
	}

	if err := s.restartRound(ctx, g, DirectionNext); err != nil {
		return "", err
	}

	g.Phase = models.PhaseCollectingAnswers
	return g.ContinueURL(), nil
}

// restartRound resets every session of the game for a fresh round and elects
// the moderator. The phase write itself is the caller's responsibility.
func (s *Service) restartRound(ctx context.Context, g *models.Game, dir Direction) error {
	if err := s.sessions.ResetForNewRound(ctx, g.ID); err != nil {
		return fmt.Errorf("round reset for game %s: %w", g.ID, err)
	}

	mod, changed, err := s.ElectModerator(ctx, g.ID, g.Moderator, dir)
	if err != nil {
		return err
	}
	if changed {
		if err := s.games.SetModerator(ctx, g.ID, mod); err != nil {
			return fmt.Errorf("persist moderator for game %s: %w", g.ID, err)
		}
	}
	g.Moderator = mod

	s.log.WithFields(logrus.Fields{
		"game_id":      g.ID,
		"moderator_id": mod.PlayerID,
		"changed":      changed,
	}).Info("round reset, moderator elected")
	s.publish(ctx, RoundEvent{GameID: g.ID, Type: EventRoundReset, Phase: models.PhaseCollectingAnswers, ModeratorID: mod.PlayerID})
	if changed {
		s.publish(ctx, RoundEvent{GameID: g.ID, Type: EventModeratorElected, Phase: models.PhaseCollectingAnswers, ModeratorID: mod.PlayerID})
	}
	return nil
}

// currentURL re-reads the game after a lost compare-and-swap so the caller is
// redirected to wherever the winning transition left the game.
func (s *Service) currentURL(ctx context.Context, gameID uuid.UUID) (string, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return g.ContinueURL(), nil
}

// publish pushes a round event to the history queue. History is best effort;
// a failing or absent publisher never fails an advance.
func (s *Service) publish(ctx context.Context, ev RoundEvent) {
	if s.events == nil {
		return
	}
	ev.Timestamp = time.Now().UnixMilli()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithField("game_id", ev.GameID).Warn("round event publish failed")
	}
}
