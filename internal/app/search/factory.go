package search

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/infra/config"
	"github.com/osa030/vibebox/internal/infra/spotify"
)

// NewProviderFromConfig creates the search provider described by cfg: a chain
// over every configured provider, wrapped in a result cache unless disabled.
func NewProviderFromConfig(ctx context.Context, cfg *config.Config) (Provider, error) {
	if len(cfg.Search.Providers) == 0 {
		return nil, ErrNoProviders
	}

	var spotifyClient *spotify.Client
	var providers []ProviderWithMetadata

	for i, pcfg := range cfg.Search.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating search provider: index=%d type=%s settings=%+v", i+1, pcfg.Type, pcfg.Settings)
		switch pcfg.Type {
		case "itunes":
			provider, err = NewITunesProvider(pcfg.Settings)

		case "spotify":
			if spotifyClient == nil {
				spotifyClient, err = newSpotifyClient(ctx, cfg, pcfg.Settings)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
				}
			}
			provider, err = NewSpotifyProvider(spotifyClient, pcfg.Settings)

		case "catalog":
			provider, err = NewCatalogProvider(pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: pcfg.DisplayName,
		})

		zlog.Info().Msgf("registered search provider: index=%d type=%s display_name=%s", i+1, pcfg.Type, pcfg.DisplayName)
	}

	chain := NewChain(providers)
	if cfg.Search.DisableCache {
		return chain, nil
	}
	return NewCached(chain), nil
}

// NewResolverFromConfig returns the track resolver of cfg: the Spotify client
// when a spotify provider is configured, otherwise nil.
func NewResolverFromConfig(ctx context.Context, cfg *config.Config) (Resolver, error) {
	for _, pcfg := range cfg.Search.Providers {
		if pcfg.Type != "spotify" {
			continue
		}
		client, err := newSpotifyClient(ctx, cfg, pcfg.Settings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create spotify resolver")
		}
		return client, nil
	}
	zlog.Debug().Msg("no spotify provider configured, track references are disabled")
	return nil, nil
}

func newSpotifyClient(ctx context.Context, cfg *config.Config, settings map[string]any) (*spotify.Client, error) {
	limit := 0
	if v, ok := settings["limit"].(int); ok {
		limit = v
	}
	return spotify.New(ctx, spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
		Market:       cfg.Spotify.Market,
		Limit:        limit,
	})
}
