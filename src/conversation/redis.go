package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "conversation:"
	maxAppendRetries = 3
)

// RedisRepository stores each history as one JSON value with a sliding TTL
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration

	// onWatch runs between the read and the write of an append
	onWatch func(ctx context.Context, sessionID string)
}

func NewRedisRepository(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRepository, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the redis conversation store")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRepository{
		client: client,
		ttl:    ttl,
	}, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*History, error) {
	history, err := r.get(ctx, r.client, sessionID)
	if err != nil {
		return nil, err
	}

	// Refresh TTL
	if r.ttl > 0 {
		r.client.Expire(ctx, key(sessionID), r.ttl)
	}
	return history, nil
}

// AppendTurn updates the stored value under WATCH so concurrent writers to
// the same session cannot drop each other's exchanges.
func (r *RedisRepository) AppendTurn(ctx context.Context, sessionID, question, answer string) error {
	k := key(sessionID)
	update := func(tx *redis.Tx) error {
		history, err := r.get(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		history.Append(question, answer)

		if r.onWatch != nil {
			r.onWatch(ctx, sessionID)
		}

		data, err := encodeHistory(history)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxAppendRetries; i++ {
		err := r.client.Watch(ctx, update, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to save history: %w", err)
	}
	return fmt.Errorf("failed to save history: %w", redis.TxFailedErr)
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

func (r *RedisRepository) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) get(ctx context.Context, c getter, sessionID string) (*History, error) {
	data, err := c.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewHistory(), nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return decodeHistory(data)
}

func encodeHistory(history *History) ([]byte, error) {
	data, err := sonic.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return data, nil
}

func decodeHistory(data []byte) (*History, error) {
	var history History
	if err := sonic.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if history.Questions == nil {
		history.Questions = []string{}
	}
	if history.Answers == nil {
		history.Answers = []string{}
	}
	if len(history.Questions) != len(history.Answers) {
		return nil, fmt.Errorf("corrupt history: %d questions, %d answers", len(history.Questions), len(history.Answers))
	}
	return &history, nil
}
