// cmd/historian is an asynchronous service that pops round events from the
// Redis queue and persists them to the round_events table, keeping a durable
// trail of phase transitions, elections and scorings without slowing the
// game itself down.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/overtinction/server/internal/database"
	"github.com/overtinction/server/internal/history"
	"github.com/overtinction/server/internal/round"
)

// Historian batches round events popped from Redis and flushes them to the
// database.
type Historian struct {
	rdb        *redis.Client
	pool       *pgxpool.Pool
	log        *logrus.Logger
	queue      string
	batchSize  int
	flushDelay time.Duration

	batchMu sync.Mutex
	batch   []round.RoundEvent
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func main() {
	log := logrus.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := database.Connect(ctx, getEnv("OVERTINCTION_DATABASE_URL", ""))
	if err != nil {
		log.Fatalf("historian db connect: %v", err)
	}
	defer pool.Close()

	if err := database.NewStore(pool).EnsureSchema(ctx); err != nil {
		log.Fatalf("historian ensure schema: %v", err)
	}

	h := &Historian{
		rdb: redis.NewClient(&redis.Options{
			Addr: getEnv("OVERTINCTION_REDIS_ADDR", "localhost:6379"),
			DB:   getEnvInt("OVERTINCTION_REDIS_DB", 0),
		}),
		pool:       pool,
		log:        log,
		queue:      getEnv("OVERTINCTION_HISTORY_QUEUE", history.DefaultQueueName),
		batchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		flushDelay: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	}

	log.Info("historian started")
	h.run(ctx)
	h.flush(context.Background())
	log.Info("historian shutting down")
}

// run pops events until the context is cancelled, flushing the batch
// whenever it fills up or the flush delay elapses.
func (h *Historian) run(ctx context.Context) {
	ticker := time.NewTicker(h.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.flush(ctx)
		default:
			// BLPop with a short timeout so cancellation is noticed.
			res, err := h.rdb.BLPop(ctx, 3*time.Second, h.queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				h.log.WithError(err).Error("blpop failed")
				continue
			}
			if len(res) < 2 {
				continue
			}

			var ev round.RoundEvent
			if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
				h.log.WithError(err).Warn("invalid round event payload")
				continue
			}
			h.append(ctx, ev)
		}
	}
}

func (h *Historian) append(ctx context.Context, ev round.RoundEvent) {
	h.batchMu.Lock()
	h.batch = append(h.batch, ev)
	full := len(h.batch) >= h.batchSize
	h.batchMu.Unlock()
	if full {
		h.flush(ctx)
	}
}

// flush writes the current batch to the round_events table in one
// transaction.
func (h *Historian) flush(ctx context.Context) {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	batch := make([]round.RoundEvent, len(h.batch))
	copy(batch, h.batch)
	h.batch = h.batch[:0]
	h.batchMu.Unlock()

	err := pgx.BeginTxFunc(ctx, h.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
		INSERT INTO round_events (game_id, event_type, phase, moderator_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		`
		for _, ev := range batch {
			occurred := time.UnixMilli(ev.Timestamp).UTC()
			if _, err := tx.Exec(ctx, q, ev.GameID, ev.Type, ev.Phase, ev.ModeratorID, occurred); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.log.WithError(err).Error("flush round events failed")
		return
	}
	h.log.WithField("count", len(batch)).Debug("flushed round events")
}
