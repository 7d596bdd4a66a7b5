package search

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/domain/track"
)

// Cached wraps a provider with a per-query result cache.
// Failures are logged and reported as an empty result, and are not cached.
type Cached struct {
	provider Provider

	mu    sync.RWMutex
	cache map[string][]track.Track
}

// NewCached creates a caching wrapper around provider.
func NewCached(provider Provider) *Cached {
	return &Cached{
		provider: provider,
		cache:    make(map[string][]track.Track),
	}
}

// Search returns the cached result for query, or asks the wrapped provider.
// It never returns an error.
func (c *Cached) Search(ctx context.Context, query string) ([]track.Track, error) {
	c.mu.RLock()
	if tracks, ok := c.cache[query]; ok {
		c.mu.RUnlock()
		zlog.Debug().Msgf("search: using cached results: query=%q count=%d", query, len(tracks))
		return track.Clone(tracks), nil
	}
	c.mu.RUnlock()

	tracks, err := c.provider.Search(ctx, query)
	if err != nil {
		zlog.Warn().Msgf("search: query failed: query=%q error=%v", query, err)
		return []track.Track{}, nil
	}

	c.mu.Lock()
	c.cache[query] = track.Clone(tracks)
	c.mu.Unlock()

	return track.Clone(tracks), nil
}

// Name returns the wrapped provider's name.
func (c *Cached) Name() string {
	return c.provider.Name()
}

// Len returns the number of cached queries.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear drops every cached result.
func (c *Cached) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]track.Track)
}
