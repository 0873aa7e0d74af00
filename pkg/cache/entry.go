package cache

import (
	"net/http"
	"time"
)

// CacheEntry is one stored PokeAPI document plus the validators needed to
// revalidate it once it goes stale.
type CacheEntry struct {
	Data       []byte      `json:"data"`
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`

	// ETag and LastModified are sent back as If-None-Match / If-Modified-Since
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`

	// Expires ends freshness; CachedAt is when the document was stored
	Expires  time.Time `json:"expires"`
	CachedAt time.Time `json:"cached_at"`
}

// FreshAt reports whether the entry can be served without a request at t.
func (e *CacheEntry) FreshAt(t time.Time) bool {
	return t.Before(e.Expires)
}

// IsExpired reports whether the entry is stale now.
func (e *CacheEntry) IsExpired() bool {
	return !e.FreshAt(time.Now())
}

// TTL is the remaining freshness, never negative.
func (e *CacheEntry) TTL() time.Duration {
	return max(time.Until(e.Expires), 0)
}

// Revalidatable reports whether a stale entry carries a validator.
func (e *CacheEntry) Revalidatable() bool {
	return e.ETag != "" || !e.LastModified.IsZero()
}
