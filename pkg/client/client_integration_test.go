//go:build integration

package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
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

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_FreshCacheSkipsNetwork(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	var requestsMade atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsMade.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("ETag", `"bulba-v1"`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "name": "bulbasaur"}`))
	}))
	defer server.Close()

	cfg := DefaultConfig("TestApp/1.0.0")
	cfg.Cache = cache.NewManager(redisClient, cache.DefaultOptions())
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	target := server.URL + "/api/v2/pokemon/1/"

	for i := 0; i < 3; i++ {
		var doc struct {
			ID int `json:"id"`
		}
		if err := client.GetJSON(ctx, target, &doc); err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
		if doc.ID != 1 {
			t.Errorf("request %d: id = %d, want 1", i+1, doc.ID)
		}
	}

	if got := requestsMade.Load(); got != 1 {
		t.Errorf("requestsMade = %d, want 1 (later reads served from cache)", got)
	}

	u, _ := url.Parse(target)
	entry, err := cfg.Cache.Get(ctx, cache.KeyFromURL(u))
	if err != nil {
		t.Fatalf("Cache lookup failed: %v", err)
	}
	if entry.ETag != `"bulba-v1"` {
		t.Errorf("Cached ETag = %q, want %q", entry.ETag, `"bulba-v1"`)
	}
}

func TestIntegration_StaleEntryRevalidated(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	var requestsMade, conditionalRequests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsMade.Add(1)

		if r.Header.Get("If-None-Match") == `"v1"` {
			conditionalRequests.Add(1)
			w.Header().Set("Cache-Control", "max-age=3600")
			w.WriteHeader(http.StatusNotModified)
			return
		}

		// Stale immediately so the next call revalidates
		w.Header().Set("Cache-Control", "max-age=0")
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"id": 4, "name": "charmander"}`))
	}))
	defer server.Close()

	cfg := DefaultConfig("TestApp/1.0.0")
	cfg.Cache = cache.NewManager(redisClient, cache.DefaultOptions())
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()
	target := server.URL + "/api/v2/pokemon/4/"

	resp1, err := client.Get(ctx, target)
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	io.Copy(io.Discard, resp1.Body)
	resp1.Body.Close()

	time.Sleep(1100 * time.Millisecond)

	resp2, err := client.Get(ctx, target)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	body, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	if string(body) != `{"id": 4, "name": "charmander"}` {
		t.Errorf("Request 2 body = %s, want cached document", body)
	}
	if got := conditionalRequests.Load(); got != 1 {
		t.Errorf("conditionalRequests = %d, want 1", got)
	}

	// Refreshed by the 304, so no further network traffic
	resp3, err := client.Get(ctx, target)
	if err != nil {
		t.Fatalf("Request 3 failed: %v", err)
	}
	resp3.Body.Close()

	if got := requestsMade.Load(); got != 2 {
		t.Errorf("requestsMade = %d, want 2", got)
	}
}
