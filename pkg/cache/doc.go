// Package cache provides an optional Redis-backed response cache for PokeAPI
// documents.
//
// PokeAPI data is effectively static, so caching detail documents turns a
// repeated run from 1+N network calls into 1+N Redis reads. The cache is off
// unless the CLI is given a Redis address.
//
// Features:
//
// - Freshness from Cache-Control max-age, then Expires, then a default TTL
// - ETag support for conditional requests (If-None-Match)
// - Last-Modified support (If-Modified-Since)
// - Stale entries kept for a retention window so they can be revalidated
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient, cache.DefaultOptions())
//
//	key := cache.KeyFromURL(req.URL)
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from PokeAPI
//	}
//
// # HTTP Response Caching
//
//	entry, err := cache.ResponseToEntry(resp, manager.DefaultTTL())
//	if err != nil {
//		return err
//	}
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Conditional Requests
//
//	if entry.IsExpired() && cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// a 304 means the stale entry is still valid
//	}
//
// # Metrics
//
//   - pokeapi_cache_hits_total{layer="redis"} - Cache hits
//   - pokeapi_cache_misses_total - Cache misses
//   - pokeapi_cache_size_bytes{layer="redis"} - Bytes written to the cache
//   - pokeapi_304_responses_total - Conditional request successes
//   - pokeapi_conditional_requests_total - Conditional requests sent
//   - pokeapi_cache_errors_total{operation} - Cache operation errors
package cache
