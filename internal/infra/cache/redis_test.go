package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:"), mr
}

func TestOnceRunsOnlyFirstTime(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	calls := 0
	fn := func() error { calls++; return nil }

	for i := 0; i < 3; i++ {
		if err := c.Once(ctx, "tick", time.Minute, fn); err != nil {
			t.Fatalf("Once: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("ожидали один вызов, получили %d", calls)
	}
}

func TestOnceReleasesKeyOnError(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	if err := c.Once(ctx, "tick", time.Minute, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("ожидали ошибку функции, получили %v", err)
	}
	if mr.Exists("test:tick") {
		t.Fatalf("ключ должен удаляться после ошибки")
	}
	calls := 0
	if err := c.Once(ctx, "tick", time.Minute, func() error { calls++; return nil }); err != nil {
		t.Fatalf("Once: %v", err)
	}
	if calls != 1 {
		t.Fatalf("после ошибки функция должна выполниться повторно")
	}
}

func TestSetGetWithTTL(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get: %q, %v", got, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, redis.Nil) {
		t.Fatalf("после истечения TTL ожидали redis.Nil, получили %v", err)
	}
}
