package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// redisAddr returns the address of a Redis server for integration tests,
// skipping the test when none is configured.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("BURROW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BURROW_TEST_REDIS_ADDR not set")
	}
	return addr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: redisAddr(t), Prefix: "burrow-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	t.Cleanup(func() { _, _ = c.Clear(context.Background()) })

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, k := range []string{"a", "b"} {
		if err := c.Set(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v, want 2", n, err)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrBackend) {
		t.Errorf("NewRedisCache() err = %v, want ErrBackend", err)
	}
}
