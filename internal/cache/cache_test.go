package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, nil), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key := Key("媽媽常常忘記關瓦斯")
	c.Set(ctx, key, "cached reply", time.Hour)

	val, ok := c.Get(ctx, key)
	if !ok || val != "cached reply" {
		t.Errorf("Get = %q, %v", val, ok)
	}
}

func TestRedisCacheTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	mr.FastForward(2 * time.Minute)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("value should have expired")
	}
}

func TestRedisCacheMissIsNormal(t *testing.T) {
	c, _ := newTestCache(t)
	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Error("expected miss")
	}
}

func TestRedisCacheBackendDownTreatedAsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	c.Set(ctx, "k", "v", time.Minute)
	mr.Close()

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("backend failure must read as a miss")
	}
	// Set after failure must not panic.
	c.Set(ctx, "k2", "v2", time.Minute)
}

func TestKeyIsStable(t *testing.T) {
	if Key("abc") != Key("abc") {
		t.Error("key must be deterministic")
	}
	if Key("abc") == Key("abd") {
		t.Error("distinct utterances should not collide")
	}
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()
	c.Set(ctx, "k", "v", time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("noop cache must always miss")
	}
}
