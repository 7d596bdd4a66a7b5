package search

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/vibebox/internal/domain/track"
)

type SpotifyProviderConfig struct {
	// RequirePreview drops tracks Spotify returns without a preview clip.
	RequirePreview bool `yaml:"require_preview" mapstructure:"require_preview"`
}

// SpotifyProvider searches the Spotify catalog.
type SpotifyProvider struct {
	spotify Searcher
	config  *SpotifyProviderConfig
}

// NewSpotifyProvider creates a new SpotifyProvider.
func NewSpotifyProvider(spotify Searcher, settings map[string]any) (*SpotifyProvider, error) {
	if spotify == nil {
		return nil, errors.New("spotify client is required")
	}

	var config SpotifyProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	return &SpotifyProvider{spotify: spotify, config: &config}, nil
}

// Search returns tracks matching query.
func (p *SpotifyProvider) Search(ctx context.Context, query string) ([]track.Track, error) {
	tracks, err := p.spotify.Search(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "spotify search failed")
	}
	if !p.config.RequirePreview {
		return tracks, nil
	}

	playable := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Playable() {
			playable = append(playable, t)
		}
	}
	return playable, nil
}

// Name returns the provider name.
func (p *SpotifyProvider) Name() string {
	return "spotify"
}
