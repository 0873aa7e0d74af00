package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "pokeapi"

// CacheKey represents a unique identifier for a cached PokeAPI response.
type CacheKey struct {
	// Host is the API host (e.g., "pokeapi.co"). Distinguishes mirrors and test servers.
	Host string

	// Endpoint is the request path (e.g., "/api/v2/pokemon/1/")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"limit": "150"})
	QueryParams url.Values
}

// KeyFromURL builds the cache key for a request URL.
func KeyFromURL(u *url.URL) CacheKey {
	if u == nil {
		return CacheKey{}
	}
	return CacheKey{
		Host:        strings.ToLower(u.Host),
		Endpoint:    u.Path,
		QueryParams: u.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: pokeapi:host:endpoint:query1=val1:query2=val2
//
// Example:
//
//	pokeapi:pokeapi.co:api/v2/pokemon:limit=150
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if k.Host != "" {
		parts = append(parts, k.Host)
	}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
