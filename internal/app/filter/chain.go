package filter

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/infra/config"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new, empty filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// NewDefaultChain creates a chain holding the filters every discovery pass
// needs: playable, duplicate_track and played_track.
func NewDefaultChain() *Chain {
	c := NewChain()
	c.Add(&PlayableFilter{})
	c.Add(&DuplicateTrackFilter{})
	c.Add(&PlayedTrackFilter{})
	return c
}

// NewChainFromConfig creates the default chain and appends every enabled
// registered filter that is not already part of it, in name order.
func NewChainFromConfig(filters map[string]config.FilterConfig) (*Chain, error) {
	c := NewDefaultChain()
	registry := GetRegistered()

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := filters[name]
		if !cfg.Enabled || c.Has(name) {
			continue
		}
		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown filter: %s", name)
		}
		f := factory()
		if err := f.ValidateConfig(cfg.Settings); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		c.Add(f)
		zlog.Info().Msgf("filter: enabled: name=%s", name)
	}
	return c, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Has reports whether a filter with the given name is in the chain.
func (c *Chain) Has(name string) bool {
	for _, f := range c.filters {
		if f.Name() == name {
			return true
		}
	}
	return false
}

// Execute runs all filters applying to origin against t.
// Returns immediately if any filter rejects the track.
func (c *Chain) Execute(ctx context.Context, t track.Track, p *Pass, origin Origin) Result {
	for _, f := range c.filters {
		if !f.AppliesTo(origin) {
			continue
		}

		result := f.Check(ctx, t, p)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Apply executes the chain over candidates in order and returns the accepted
// ones. Accepted tracks are recorded in p so later candidates see them.
func (c *Chain) Apply(ctx context.Context, candidates []track.Track, p *Pass, origin Origin) []track.Track {
	before := len(p.accepted)
	rejected := make(map[string]int)

	for _, t := range candidates {
		result := c.Execute(ctx, t, p, origin)
		if !result.Accepted {
			rejected[result.Code]++
			continue
		}
		p.accept(t)
	}

	accepted := p.accepted[before:]
	if len(rejected) > 0 {
		zlog.Debug().Msgf("filter: candidates screened: origin=%s accepted=%d rejected=%v", origin, len(accepted), rejected)
	}
	return accepted
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
