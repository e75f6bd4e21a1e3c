// internal/database/game.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/overtinction/server/internal/models"
	"github.com/overtinction/server/internal/round"
)

// InsertGame creates a new game row. The game starts in the answer-collection
// phase with an empty moderator seat; the first election happens when the
// first player action drives an advance.
func (s *Store) InsertGame(ctx context.Context, g *models.Game) error {
	q := `
	INSERT INTO games (id, name, secret_hash, max_players, phase, moderator_id, moderator_elected_at, moderator_join_seq)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, q,
		g.ID,
		g.Name,
		g.SecretHash,
		g.MaxPlayers,
		g.Phase,
		g.Moderator.PlayerID,
		g.Moderator.ElectedAt,
		g.Moderator.JoinSeq,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// GetGame fetches a game by id with the admission secret stripped.
func (s *Store) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var g models.Game
	var modID uuid.NullUUID
	q := `
	SELECT id, name, max_players, phase, moderator_id, moderator_elected_at, moderator_join_seq
	FROM games
	WHERE id = $1
	`
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&g.ID,
		&g.Name,
		&g.MaxPlayers,
		&g.Phase,
		&modID,
		&g.Moderator.ElectedAt,
		&g.Moderator.JoinSeq,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, round.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	if modID.Valid {
		g.Moderator.PlayerID = &modID.UUID
	}
	return &g, nil
}

// GetGameSecret returns the Argon2id hash of the game's admission secret,
// for the join flow only.
func (s *Store) GetGameSecret(ctx context.Context, id uuid.UUID) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT secret_hash FROM games WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", round.ErrGameNotFound
		}
		return "", fmt.Errorf("get game secret: %w", err)
	}
	return hash, nil
}

// ListGames returns every game, for the lobby listing.
func (s *Store) ListGames(ctx context.Context) ([]*models.Game, error) {
	q := `
	SELECT id, name, max_players, phase, moderator_id, moderator_elected_at, moderator_join_seq
	FROM games
	ORDER BY name
	`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var g models.Game
		var modID uuid.NullUUID
		if err := rows.Scan(&g.ID, &g.Name, &g.MaxPlayers, &g.Phase, &modID, &g.Moderator.ElectedAt, &g.Moderator.JoinSeq); err != nil {
			return nil, err
		}
		if modID.Valid {
			g.Moderator.PlayerID = &modID.UUID
		}
		games = append(games, &g)
	}
	return games, rows.Err()
}

// DeleteGame removes a game and, via cascade, its player sessions.
func (s *Store) DeleteGame(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return round.ErrGameNotFound
	}
	return nil
}

// CompareAndSwapPhase moves the game from one phase to another. The
// conditional update is the single-flight guard: of several callers that
// observed the same completion condition, only the one whose update matched
// a row runs the transition's side effects.
func (s *Store) CompareAndSwapPhase(ctx context.Context, id uuid.UUID, from, to models.Phase) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE games SET phase = $3 WHERE id = $1 AND phase = $2`,
		id, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("swap phase: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetModerator persists the game's moderator seat.
func (s *Store) SetModerator(ctx context.Context, id uuid.UUID, mod models.Moderator) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE games SET moderator_id = $2, moderator_elected_at = $3, moderator_join_seq = $4 WHERE id = $1`,
		id, mod.PlayerID, mod.ElectedAt, mod.JoinSeq,
	)
	if err != nil {
		return fmt.Errorf("set moderator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return round.ErrGameNotFound
	}
	return nil
}

// NextJoinSeq atomically allocates the next join sequence number for a game.
// Concurrent joiners can share a timestamp tick; the sequence keeps their
// ring order unambiguous.
func (s *Store) NextJoinSeq(ctx context.Context, gameID uuid.UUID) (int64, error) {
	var seq int64
	err := s.pool.QueryRow(ctx,
		`UPDATE games SET join_seq_counter = join_seq_counter + 1 WHERE id = $1 RETURNING join_seq_counter`,
		gameID,
	).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, round.ErrGameNotFound
		}
		return 0, fmt.Errorf("next join seq: %w", err)
	}
	return seq, nil
}
