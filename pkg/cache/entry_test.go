package cache

import (
	"testing"
	"time"
)

func TestCacheEntry_Freshness(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		expires   time.Time
		wantFresh bool
		wantTTL   time.Duration
	}{
		{"max-age 86400", now.Add(24 * time.Hour), true, 24 * time.Hour},
		{"one minute left", now.Add(time.Minute), true, time.Minute},
		{"stale since an hour", now.Add(-time.Hour), false, 0},
		{"zero expiry", time.Time{}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}

			if got := entry.FreshAt(now); got != tt.wantFresh {
				t.Errorf("FreshAt() = %v, want %v", got, tt.wantFresh)
			}
			if got := entry.IsExpired(); got == tt.wantFresh {
				t.Errorf("IsExpired() = %v, want %v", got, !tt.wantFresh)
			}

			// TTL is measured from a later now, allow a little slack
			got := entry.TTL()
			if got > tt.wantTTL || got < tt.wantTTL-time.Second {
				t.Errorf("TTL() = %v, want about %v", got, tt.wantTTL)
			}
		})
	}
}

func TestCacheEntry_Revalidatable(t *testing.T) {
	tests := []struct {
		name  string
		entry CacheEntry
		want  bool
	}{
		{"etag", CacheEntry{ETag: `W/"bulbasaur"`}, true},
		{"last-modified", CacheEntry{LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"no validators", CacheEntry{Data: []byte(`{"id":1}`)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Revalidatable(); got != tt.want {
				t.Errorf("Revalidatable() = %v, want %v", got, tt.want)
			}
		})
	}
}
