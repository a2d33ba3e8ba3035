package dialog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemorySessions(time.Minute)
	m.now = func() time.Time { return now }

	_, ok, err := m.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	st := State{Phase: PhaseRefining, Draft: draft()}
	require.NoError(t, m.Save(ctx, 1, st))
	got, ok, err := m.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, st, got)

	now = now.Add(2 * time.Minute)
	_, ok, err = m.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "expired")

	require.NoError(t, m.Save(ctx, 2, st))
	require.NoError(t, m.Delete(ctx, 2))
	require.NoError(t, m.Delete(ctx, 3))
	_, ok, err = m.Load(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewMemorySessions_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultSessionTTL, NewMemorySessions(0).ttl)
}

// TestRedisSessions runs against a real redis, set REDIS_TEST_URL to enable
func TestRedisSessions(t *testing.T) {
	redisURL := os.Getenv("REDIS_TEST_URL")
	if redisURL == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	ctx := context.Background()
	r, err := NewRedisSessions(ctx, redisURL, time.Minute)
	require.NoError(t, err)
	defer r.Close()
	r.prefix = "kleinwatch-test:dialog:"

	require.NoError(t, r.Delete(ctx, 1))
	_, ok, err := r.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	st := State{Phase: PhaseConfirming, Draft: draft()}
	require.NoError(t, r.Save(ctx, 1, st))
	got, ok, err := r.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, st, got)

	ttl, err := r.client.TTL(ctx, r.key(1)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, r.Delete(ctx, 1))
	_, ok, err = r.Load(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisSessions_BadURL(t *testing.T) {
	_, err := NewRedisSessions(context.Background(), "not-a-url", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}
