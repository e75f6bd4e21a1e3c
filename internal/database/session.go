// internal/database/session.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/overtinction/server/internal/models"
	"github.com/overtinction/server/internal/round"
)

const sessionColumns = `id, game_id, name, color, join_time, join_seq, in_round,
	answer, answer_letter, vote, points, round_correct_answer, round_others_wrong_vote`

func scanSession(row pgx.Row) (*models.PlayerSession, error) {
	var sess models.PlayerSession
	err := row.Scan(
		&sess.ID,
		&sess.GameID,
		&sess.Name,
		&sess.Color,
		&sess.JoinTime,
		&sess.JoinSeq,
		&sess.InRound,
		&sess.Answer,
		&sess.AnswerLetter,
		&sess.Vote,
		&sess.Points,
		&sess.RoundPoints.CorrectAnswer,
		&sess.RoundPoints.OthersWrongVote,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, round.ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// InsertSession creates a fresh player session record.
func (s *Store) InsertSession(ctx context.Context, sess *models.PlayerSession) error {
	q := `
	INSERT INTO player_sessions (` + sessionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.pool.Exec(ctx, q,
		sess.ID,
		sess.GameID,
		sess.Name,
		sess.Color,
		sess.JoinTime,
		sess.JoinSeq,
		sess.InRound,
		sess.Answer,
		sess.AnswerLetter,
		sess.Vote,
		sess.Points,
		sess.RoundPoints.CorrectAnswer,
		sess.RoundPoints.OthersWrongVote,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession fetches a player session by id.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*models.PlayerSession, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM player_sessions WHERE id = $1`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, round.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// DeleteSession removes a player session record.
func (s *Store) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM player_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return round.ErrSessionNotFound
	}
	return nil
}

func (s *Store) setField(ctx context.Context, q string, id uuid.UUID, val any) error {
	tag, err := s.pool.Exec(ctx, q, id, val)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return round.ErrSessionNotFound
	}
	return nil
}

// SetAnswer writes the player's answer for the current round.
func (s *Store) SetAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	return s.setField(ctx, `UPDATE player_sessions SET answer = $2 WHERE id = $1`, id, answer)
}

// SetVote writes the player's vote letter for the current round.
func (s *Store) SetVote(ctx context.Context, id uuid.UUID, letter string) error {
	return s.setField(ctx, `UPDATE player_sessions SET vote = $2 WHERE id = $1`, id, letter)
}

// SetInRound flips the player's round participation flag.
func (s *Store) SetInRound(ctx context.Context, id uuid.UUID, inRound bool) error {
	return s.setField(ctx, `UPDATE player_sessions SET in_round = $2 WHERE id = $1`, id, inRound)
}

// SetAnswerLetter assigns the player's anonymizing ballot letter.
func (s *Store) SetAnswerLetter(ctx context.Context, id uuid.UUID, letter string) error {
	return s.setField(ctx, `UPDATE player_sessions SET answer_letter = $2 WHERE id = $1`, id, letter)
}

func (s *Store) countWhere(ctx context.Context, q string, gameID uuid.UUID) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, q, gameID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountPlayers counts every session attached to the game.
func (s *Store) CountPlayers(ctx context.Context, gameID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `SELECT count(*) FROM player_sessions WHERE game_id = $1`, gameID)
}

// CountInRound counts sessions participating in the current round.
func (s *Store) CountInRound(ctx context.Context, gameID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `SELECT count(*) FROM player_sessions WHERE game_id = $1 AND in_round`, gameID)
}

// CountAnswered counts in-round sessions holding an answer.
func (s *Store) CountAnswered(ctx context.Context, gameID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `SELECT count(*) FROM player_sessions WHERE game_id = $1 AND in_round AND answer IS NOT NULL`, gameID)
}

// CountVoted counts in-round sessions holding a vote.
func (s *Store) CountVoted(ctx context.Context, gameID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `SELECT count(*) FROM player_sessions WHERE game_id = $1 AND in_round AND vote IS NOT NULL`, gameID)
}

// CountAcknowledged counts sessions that have confirmed the results page.
func (s *Store) CountAcknowledged(ctx context.Context, gameID uuid.UUID) (int, error) {
	return s.countWhere(ctx, `SELECT count(*) FROM player_sessions WHERE game_id = $1 AND NOT in_round`, gameID)
}

// IsActiveModerator reports whether the given player still holds a live,
// in-round session of the game.
func (s *Store) IsActiveModerator(ctx context.Context, gameID uuid.UUID, playerID *uuid.UUID) (bool, error) {
	if playerID == nil {
		return false, nil
	}
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM player_sessions WHERE id = $1 AND game_id = $2 AND in_round`,
		*playerID, gameID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("moderator lookup: %w", err)
	}
	return n == 1, nil
}

func (s *Store) querySessions(ctx context.Context, q string, args ...any) ([]*models.PlayerSession, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.PlayerSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// FindAnswered returns the in-round sessions holding an answer, in join
// order.
func (s *Store) FindAnswered(ctx context.Context, gameID uuid.UUID) ([]*models.PlayerSession, error) {
	return s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM player_sessions
		 WHERE game_id = $1 AND in_round AND answer IS NOT NULL
		 ORDER BY join_time, join_seq`,
		gameID,
	)
}

// ListRoundRecords returns every session attached to the game, in join order.
func (s *Store) ListRoundRecords(ctx context.Context, gameID uuid.UUID) ([]*models.PlayerSession, error) {
	return s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM player_sessions
		 WHERE game_id = $1
		 ORDER BY join_time, join_seq`,
		gameID,
	)
}

// FindBallot returns letter/answer pairs sorted ascending by letter.
func (s *Store) FindBallot(ctx context.Context, gameID uuid.UUID) ([]round.BallotEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT answer_letter, answer FROM player_sessions
		 WHERE game_id = $1 AND answer_letter IS NOT NULL AND answer IS NOT NULL
		 ORDER BY answer_letter`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("ballot query: %w", err)
	}
	defer rows.Close()

	var ballot []round.BallotEntry
	for rows.Next() {
		var entry round.BallotEntry
		if err := rows.Scan(&entry.Letter, &entry.Answer); err != nil {
			return nil, err
		}
		ballot = append(ballot, entry)
	}
	return ballot, rows.Err()
}

// SaveScores persists points and the round breakdown for the given sessions
// in one transaction.
func (s *Store) SaveScores(ctx context.Context, sessions []*models.PlayerSession) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
		UPDATE player_sessions
		SET points = $2, round_correct_answer = $3, round_others_wrong_vote = $4
		WHERE id = $1
		`
		for _, sess := range sessions {
			if _, err := tx.Exec(ctx, q, sess.ID, sess.Points, sess.RoundPoints.CorrectAnswer, sess.RoundPoints.OthersWrongVote); err != nil {
				return err
			}
		}
		return nil
	})
}

// ResetForNewRound clears the round-local fields of every session of the
// game and puts everyone back in the round.
func (s *Store) ResetForNewRound(ctx context.Context, gameID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE player_sessions
		 SET answer = NULL, answer_letter = NULL, vote = NULL,
		     round_correct_answer = 0, round_others_wrong_vote = 0,
		     in_round = TRUE
		 WHERE game_id = $1`,
		gameID,
	)
	if err != nil {
		return fmt.Errorf("round reset: %w", err)
	}
	return nil
}

// FirstInRoundAfter returns the in-round session with the smallest
// (join_time, join_seq) after the reference point.
func (s *Store) FirstInRoundAfter(ctx context.Context, gameID uuid.UUID, refTime time.Time, refSeq int64, inclusive bool) (*models.PlayerSession, error) {
	cmp := ">"
	if inclusive {
		cmp = ">="
	}
	sessions, err := s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM player_sessions
		 WHERE game_id = $1 AND in_round AND (join_time, join_seq) `+cmp+` ($2, $3)
		 ORDER BY join_time, join_seq
		 LIMIT 1`,
		gameID, refTime, refSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("successor query: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

// FirstInRoundAtOrBefore returns the earliest-joined in-round session of the
// game, provided it does not come after the reference point.
func (s *Store) FirstInRoundAtOrBefore(ctx context.Context, gameID uuid.UUID, refTime time.Time, refSeq int64) (*models.PlayerSession, error) {
	sessions, err := s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM player_sessions
		 WHERE game_id = $1 AND in_round AND (join_time, join_seq) <= ($2, $3)
		 ORDER BY join_time, join_seq
		 LIMIT 1`,
		gameID, refTime, refSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("wrap query: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}
