package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDependsOnLanguageAndText(t *testing.T) {
	assert.Equal(t, Key("en-US", "a"), Key("en-US", "a"))
	assert.NotEqual(t, Key("en-US", "a"), Key("en-GB", "a"))
	assert.NotEqual(t, Key("en-US", "a"), Key("en-US", "b"))
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory(time.Minute, 10)
	m.now = func() time.Time { return now }

	m.Set(ctx, "k", []byte("v"))
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestMemoryEvictsOldest(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	m := NewMemory(time.Hour, 3)
	m.now = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)})
		now = now.Add(time.Second)
	}
	assert.Equal(t, 3, m.Len())
	_, ok := m.Get(ctx, "k0")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "k3")
	assert.True(t, ok)
}

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	r, err := NewRedis(url, time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Ping(ctx))

	key := Key("en-US", t.Name())
	r.Set(ctx, key, []byte(`[]`))
	got, ok := r.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte(`[]`), got)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis("not a url", time.Minute, nil)
	assert.Error(t, err)
}
