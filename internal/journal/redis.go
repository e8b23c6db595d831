package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/adventure-console/pkg/chat"
)

const (
	// DefaultTTL keeps a transcript around for a day after its last message.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "journal:"
)

// RedisJournal appends messages as JSON to a Redis list per session.
type RedisJournal struct {
	client     *redis.Client
	ttl        time.Duration
	logger     *slog.Logger
	retryDelay time.Duration
}

// Ensure RedisJournal implements Journal interface
var _ Journal = (*RedisJournal)(nil)

// NewRedisJournal creates a journal from a redis:// URL or a bare host:port.
func NewRedisJournal(redisURL string, ttl time.Duration, logger *slog.Logger) *RedisJournal {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		// Accept plain addresses like "localhost:6379"
		opts = &redis.Options{Addr: redisURL}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisJournal{
		client:     redis.NewClient(opts),
		ttl:        ttl,
		logger:     logger,
		retryDelay: 2 * time.Second,
	}
}

// Key returns the list key holding a session's transcript.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *RedisJournal) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Record appends msg to the session transcript and refreshes its TTL.
func (r *RedisJournal) Record(ctx context.Context, sessionID string, msg chat.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := Key(sessionID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Redis journal write failed", "key", key, "error", err)
		return fmt.Errorf("redis journal write failed: %w", err)
	}

	r.logger.Debug("Journal entry recorded", "key", key, "message_id", msg.ID)
	return nil
}

// Entries returns a session transcript in the order it was recorded.
func (r *RedisJournal) Entries(ctx context.Context, sessionID string) ([]chat.Message, error) {
	raw, err := r.client.LRange(ctx, Key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis journal read failed: %w", err)
	}

	msgs := make([]chat.Message, 0, len(raw))
	for i, item := range raw {
		var msg chat.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to decode journal entry %d: %w", i, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (r *RedisJournal) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}

	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection pings Redis until it answers or attempts run out.
func (r *RedisJournal) WaitForConnection(ctx context.Context, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established")
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(r.retryDelay):
		}
	}

	return fmt.Errorf("redis did not become ready after %d attempts", maxRetries)
}
