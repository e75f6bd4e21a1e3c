// internal/database/store.go
package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the orchestrator's game and session store surfaces on top
// of Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
