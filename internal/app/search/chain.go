package search

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/domain/track"
)

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// Chain queries every provider in order and merges their results.
type Chain struct {
	providers []ProviderWithMetadata
}

// NewChain creates a new provider chain.
func NewChain(providers []ProviderWithMetadata) *Chain {
	return &Chain{
		providers: providers,
	}
}

// Search runs query against all providers. Results keep provider order and
// the first occurrence of each track id. A failing provider is skipped; an
// error is returned only when no provider succeeded.
func (c *Chain) Search(ctx context.Context, query string) ([]track.Track, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}

	var all []track.Track
	seen := make(map[int64]bool)
	succeeded := 0

	for i, pm := range c.providers {
		zlog.Debug().Msgf("search: trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		results, err := pm.Provider.Search(ctx, query)
		if err != nil {
			zlog.Warn().Msgf("search: provider failed, trying next: provider=%s query=%q error=%v", pm.DisplayName, query, err)
			continue
		}
		succeeded++

		added := 0
		for _, t := range results {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			all = append(all, t)
			added++
		}

		zlog.Debug().Msgf("search: provider returned tracks: provider=%s count=%d added=%d total_so_far=%d",
			pm.DisplayName, len(results), added, len(all))
	}

	if succeeded == 0 {
		return nil, errors.Wrapf(ErrAllProvidersFailed, "query %q", query)
	}

	return all, nil
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return "provider_chain"
}

// Providers returns the providers of the chain.
func (c *Chain) Providers() []ProviderWithMetadata {
	return c.providers
}
