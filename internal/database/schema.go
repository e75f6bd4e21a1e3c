// internal/database/schema.go
package database

import "context"

// schema is the DDL for the two record stores plus the round-event history
// table filled by the historian. join_seq_counter backs the per-game join
// sequence that disambiguates identical join timestamps.
const schema = `
CREATE TABLE IF NOT EXISTS games (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	secret_hash TEXT NOT NULL,
	max_players INT NOT NULL DEFAULT 10,
	phase TEXT NOT NULL DEFAULT 'collectingAnswers',
	moderator_id UUID,
	moderator_elected_at TIMESTAMPTZ NOT NULL DEFAULT to_timestamp(0),
	moderator_join_seq BIGINT NOT NULL DEFAULT 0,
	join_seq_counter BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS player_sessions (
	id UUID PRIMARY KEY,
	game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	color TEXT NOT NULL,
	join_time TIMESTAMPTZ NOT NULL,
	join_seq BIGINT NOT NULL,
	in_round BOOLEAN NOT NULL DEFAULT TRUE,
	answer TEXT,
	answer_letter TEXT,
	vote TEXT,
	points INT NOT NULL DEFAULT 0,
	round_correct_answer INT NOT NULL DEFAULT 0,
	round_others_wrong_vote INT NOT NULL DEFAULT 0,
	UNIQUE (game_id, join_time, join_seq)
);

CREATE INDEX IF NOT EXISTS idx_player_sessions_game ON player_sessions (game_id);

CREATE TABLE IF NOT EXISTS round_events (
	id BIGSERIAL PRIMARY KEY,
	game_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	phase TEXT NOT NULL,
	moderator_id UUID,
	occurred_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
