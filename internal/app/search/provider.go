// Package search provides track search providers used by discovery.
package search

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/vibebox/internal/domain/track"
)

var (
	// ErrNoProviders is returned when a chain is built without providers.
	ErrNoProviders = errors.New("no search providers configured")
	// ErrAllProvidersFailed is returned when every provider of a chain failed.
	ErrAllProvidersFailed = errors.New("all search providers failed")
	// ErrNoResolver is returned when no configured provider can look up
	// a track reference.
	ErrNoResolver = errors.New("no provider resolves track references")
)

// Provider is the interface for track search providers.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Search returns tracks matching a free-text query.
	Search(ctx context.Context, query string) ([]track.Track, error)

	// Name returns the provider name (used in config).
	Name() string
}

// Resolver looks up one track from a provider reference, such as a
// Spotify URL, URI or id.
type Resolver interface {
	GetTrack(ctx context.Context, ref string) (*track.Track, error)
}

// Searcher is the part of a remote client a provider delegates to.
type Searcher interface {
	Search(ctx context.Context, query string) ([]track.Track, error)
}
