// Package cache memoizes dataset fetches by series key so repeated UI
// selections do not trigger redundant network round-trips.
package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ewanvin/seaicemod/internal/seaice"
)

// Fetcher is the underlying dataset source the cache delegates to on a miss.
type Fetcher interface {
	Fetch(ctx context.Context, key seaice.SeriesKey) (*seaice.RawSeries, error)
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// FetchCache is a bounded, LRU-evicting memo of successful fetches. Only
// successes are stored, so a transient failure is retriable on the next call
// with the same key. Concurrent GetOrFetch calls for the same unfetched key
// collapse into a single fetcher invocation; distinct keys fetch
// independently.
type FetchCache struct {
	fetcher Fetcher
	entries *lru.Cache[seaice.SeriesKey, *seaice.RawSeries]
	group   singleflight.Group

	mu    sync.Mutex
	stats Stats
}

// New creates a FetchCache holding at most capacity entries.
func New(fetcher Fetcher, capacity int) (*FetchCache, error) {
	c := &FetchCache{fetcher: fetcher}
	entries, err := lru.NewWithEvict[seaice.SeriesKey, *seaice.RawSeries](
		capacity,
		func(seaice.SeriesKey, *seaice.RawSeries) {
			c.mu.Lock()
			c.stats.Evictions++
			c.mu.Unlock()
		},
	)
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// GetOrFetch returns the cached series for key, fetching and storing it first
// if absent.
func (c *FetchCache) GetOrFetch(ctx context.Context, key seaice.SeriesKey) (*seaice.RawSeries, error) {
	if raw, ok := c.entries.Get(key); ok {
		c.count(func(s *Stats) { s.Hits++ })
		return raw, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// A concurrent fetch may have completed while this call waited on
		// the flight group.
		if raw, ok := c.entries.Get(key); ok {
			c.count(func(s *Stats) { s.Hits++ })
			return raw, nil
		}

		c.count(func(s *Stats) { s.Misses++ })
		raw, err := c.fetcher.Fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, raw)
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*seaice.RawSeries), nil
}

// Len returns the number of cached entries.
func (c *FetchCache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *FetchCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *FetchCache) count(update func(*Stats)) {
	c.mu.Lock()
	update(&c.stats)
	c.mu.Unlock()
}
