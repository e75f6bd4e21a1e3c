// internal/history/publisher.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/overtinction/server/internal/round"
)

// DefaultQueueName is the Redis list the orchestrator publishes round events
// to and the historian consumes from.
const DefaultQueueName = "overtinction_round_events"

// Publisher pushes round events onto a Redis list for the historian to
// persist asynchronously. It implements the orchestrator's publisher
// interface.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// NewPublisher connects a Redis client and verifies it with a short ping.
// An empty queue name selects DefaultQueueName.
func NewPublisher(addr string, db int, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue}, nil
}

// Publish serializes the event to JSON and pushes it onto the queue. This
// does not block the round logic beyond a quick network send.
func (p *Publisher) Publish(ctx context.Context, ev round.RoundEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal round event: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("rpush to %q: %w", p.queue, err)
	}
	return nil
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
