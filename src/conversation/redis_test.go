package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)

	repo, err := NewRedisRepository(context.Background(), "redis://"+m.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, m
}

// writeConflict stores a history from a second connection, as another
// server instance would
func writeConflict(t *testing.T, m *miniredis.Miniredis, sessionID string, h *History) {
	t.Helper()
	other := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer other.Close()

	data, err := encodeHistory(h)
	require.NoError(t, err)
	require.NoError(t, other.Set(context.Background(), key(sessionID), data, 0).Err())
}

func TestRedisRepositoryAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, time.Hour)

	h, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())

	require.NoError(t, repo.AppendTurn(ctx, "s1", "Which client has most people?", "Acme"))
	require.NoError(t, repo.AppendTurn(ctx, "s1", "And the fewest?", "Globex"))
	require.NoError(t, repo.AppendTurn(ctx, "s2", "other", "session"))

	h, err = repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Which client has most people?", "And the fewest?"}, h.Questions)
	assert.Equal(t, []string{"Acme", "Globex"}, h.Answers)

	// stored as one JSON value under the session key
	raw, err := m.Get("conversation:s1")
	require.NoError(t, err)
	assert.Contains(t, raw, "And the fewest?")
	assert.True(t, m.Exists("conversation:s2"))
}

func TestRedisRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, time.Hour)

	require.NoError(t, repo.AppendTurn(ctx, "s1", "q", "a"))
	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.False(t, m.Exists("conversation:s1"))

	h, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())

	// deleting an unknown session is not an error
	assert.NoError(t, repo.Delete(ctx, "missing"))
}

func TestRedisRepositoryTTL(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, time.Hour)

	require.NoError(t, repo.AppendTurn(ctx, "s1", "q", "a"))
	assert.Equal(t, time.Hour, m.TTL("conversation:s1"))

	// loading slides the expiry forward
	m.FastForward(40 * time.Minute)
	assert.Equal(t, 20*time.Minute, m.TTL("conversation:s1"))
	_, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, m.TTL("conversation:s1"))

	m.FastForward(time.Hour + time.Second)
	assert.False(t, m.Exists("conversation:s1"))

	h, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
}

func TestRedisRepositoryWithoutTTL(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, 0)

	require.NoError(t, repo.AppendTurn(ctx, "s1", "q", "a"))
	_, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), m.TTL("conversation:s1"))
}

func TestRedisRepositoryRetriesConflictingAppend(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, time.Hour)

	attempts := 0
	repo.onWatch = func(ctx context.Context, sessionID string) {
		attempts++
		if attempts == 1 {
			other := NewHistory()
			other.Append("from another instance", "kept")
			writeConflict(t, m, sessionID, other)
		}
	}

	require.NoError(t, repo.AppendTurn(ctx, "s1", "mine", "also kept"))
	assert.Equal(t, 2, attempts)

	h, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"from another instance", "mine"}, h.Questions)
	assert.Equal(t, []string{"kept", "also kept"}, h.Answers)
}

func TestRedisRepositoryGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, time.Hour)

	attempts := 0
	repo.onWatch = func(ctx context.Context, sessionID string) {
		attempts++
		other := NewHistory()
		other.Append("writer", "busy")
		writeConflict(t, m, sessionID, other)
	}

	err := repo.AppendTurn(ctx, "s1", "mine", "lost")
	require.Error(t, err)
	assert.ErrorIs(t, err, redis.TxFailedErr)
	assert.Equal(t, maxAppendRetries, attempts)

	repo.onWatch = nil
	h, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"writer"}, h.Questions)
}

func TestRedisRepositoryCorruptValue(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, time.Hour)

	require.NoError(t, m.Set("conversation:s1", `{"questions":["q1","q2"],"answers":["a1"]}`))

	_, err := repo.Load(ctx, "s1")
	assert.ErrorContains(t, err, "corrupt history")

	err = repo.AppendTurn(ctx, "s1", "q3", "a3")
	assert.Error(t, err)

	// the stored value is left for inspection
	raw, err := m.Get("conversation:s1")
	require.NoError(t, err)
	assert.Contains(t, raw, "q2")
}

func TestRedisRepositoryHealthCheck(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestRedis(t, time.Hour)

	assert.NoError(t, repo.HealthCheck(ctx))

	m.Close()
	assert.Error(t, repo.HealthCheck(ctx))
}
