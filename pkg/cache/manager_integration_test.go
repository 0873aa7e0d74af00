//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		redisContainer.Terminate(ctx)
	})

	return client
}

func TestManager_Integration_Lifecycle(t *testing.T) {
	client := setupRedisContainer(t)
	manager := NewManager(client, Options{
		DefaultTTL:     time.Minute,
		StaleRetention: time.Hour,
	})
	ctx := context.Background()

	if err := manager.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	key := CacheKey{Host: "pokeapi.co", Endpoint: "/api/v2/pokemon/25/"}
	entry := &CacheEntry{
		Data:       []byte(`{"id": 25, "name": "pikachu"}`),
		ETag:       `"pika"`,
		Expires:    time.Now().Add(2 * time.Second),
		StatusCode: 200,
	}

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Redis TTL covers freshness plus the retention window
	ttl, err := client.TTL(ctx, key.String()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl < 59*time.Minute {
		t.Errorf("redis TTL = %v, want at least 59m", ttl)
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.IsExpired() {
		t.Error("entry should be fresh")
	}

	time.Sleep(3 * time.Second)

	got, err = manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() on stale entry error = %v", err)
	}
	if !got.IsExpired() {
		t.Error("entry should be stale after its expiry")
	}

	if err := manager.UpdateTTL(ctx, key, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("UpdateTTL() error = %v", err)
	}
	got, err = manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() after UpdateTTL error = %v", err)
	}
	if got.IsExpired() {
		t.Error("entry should be fresh after UpdateTTL")
	}

	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after Delete error = %v, want ErrCacheMiss", err)
	}
}
