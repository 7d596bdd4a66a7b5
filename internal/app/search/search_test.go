package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/infra/config"
)

// stubProvider returns canned results per query and counts calls.
type stubProvider struct {
	name    string
	results map[string][]track.Track
	err     error

	mu    sync.Mutex
	calls int
}

func (s *stubProvider) Search(ctx context.Context, query string) ([]track.Track, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestChain_Search(t *testing.T) {
	first := &stubProvider{name: "first", results: map[string][]track.Track{
		"q": {{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
	}}
	broken := &stubProvider{name: "broken", err: errors.New("boom")}
	second := &stubProvider{name: "second", results: map[string][]track.Track{
		"q": {{ID: 2, Name: "B again"}, {ID: 3, Name: "C"}},
	}}

	chain := NewChain([]ProviderWithMetadata{
		{Provider: first, DisplayName: "First"},
		{Provider: broken, DisplayName: "Broken"},
		{Provider: second, DisplayName: "Second"},
	})

	tracks, err := chain.Search(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, track.IDs(tracks))
	assert.Equal(t, "B", tracks[1].Name)
	assert.Equal(t, 1, broken.callCount())
	assert.Len(t, chain.Providers(), 3)
}

func TestChain_AllProvidersFailed(t *testing.T) {
	chain := NewChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "a", err: errors.New("down")}, DisplayName: "A"},
		{Provider: &stubProvider{name: "b", err: errors.New("down")}, DisplayName: "B"},
	})

	_, err := chain.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllProvidersFailed))
}

func TestChain_EmptyResultIsNotFailure(t *testing.T) {
	chain := NewChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "a"}, DisplayName: "A"},
	})

	tracks, err := chain.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestChain_NoProviders(t *testing.T) {
	_, err := NewChain(nil).Search(context.Background(), "q")
	assert.True(t, errors.Is(err, ErrNoProviders))
}

func TestCached_Search(t *testing.T) {
	inner := &stubProvider{name: "inner", results: map[string][]track.Track{
		"q": {{ID: 1}, {ID: 2}},
	}}
	cached := NewCached(inner)
	ctx := context.Background()

	first, err := cached.Search(ctx, "q")
	require.NoError(t, err)
	second, err := cached.Search(ctx, "q")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.callCount())
	assert.Equal(t, 1, cached.Len())
	assert.Equal(t, "inner", cached.Name())

	// Callers may mutate what they get back.
	first[0].ID = 99
	third, _ := cached.Search(ctx, "q")
	assert.Equal(t, int64(1), third[0].ID)

	cached.Clear()
	assert.Equal(t, 0, cached.Len())
	_, _ = cached.Search(ctx, "q")
	assert.Equal(t, 2, inner.callCount())
}

func TestCached_FailureBecomesEmptyAndIsNotCached(t *testing.T) {
	inner := &stubProvider{name: "inner", err: errors.New("timeout")}
	cached := NewCached(inner)

	tracks, err := cached.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
	assert.Equal(t, 0, cached.Len())

	_, _ = cached.Search(context.Background(), "q")
	assert.Equal(t, 2, inner.callCount())
}

const catalogYAML = `
tracks:
  - trackId: 1
    trackName: Lover
    artistName: Diljit Dosanjh
    primaryGenreName: Punjabi
    previewUrl: https://audio.example.com/1.m4a
    tags: [bhangra, party]
  - trackId: 2
    trackName: Kesariya
    artistName: Arijit Singh
    collectionName: Brahmastra
    primaryGenreName: Bollywood
    previewUrl: https://audio.example.com/2.m4a
  - trackId: 3
    trackName: Dynamite
    artistName: BTS
    primaryGenreName: K-Pop
`

func TestCatalogProvider_Search(t *testing.T) {
	p, err := ParseCatalog([]byte(catalogYAML), 0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		expected []int64
	}{
		{name: "genre term", query: "punjabi songs", expected: []int64{1}},
		{name: "tag term", query: "bhangra", expected: []int64{1}},
		{name: "album term", query: "brahmastra songs", expected: []int64{2}},
		{name: "several terms", query: "k-pop bollywood", expected: []int64{2, 3}},
		{name: "generic terms only", query: "music hits", expected: []int64{}},
		{name: "no match", query: "tamil", expected: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks, err := p.Search(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, track.IDs(tracks))
		})
	}
}

func TestCatalogProvider_Limit(t *testing.T) {
	p, err := ParseCatalog([]byte(catalogYAML), 1)
	require.NoError(t, err)

	tracks, err := p.Search(context.Background(), "punjabi bollywood")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, track.IDs(tracks))
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog([]byte("tracks: []"), 10)
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("tracks:\n  - trackName: No Id\n"), 10)
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("tracks: ["), 10)
	assert.Error(t, err)
}

func TestNewCatalogProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	p, err := NewCatalogProvider(map[string]any{"path": path, "limit": 2})
	require.NoError(t, err)
	assert.Equal(t, "catalog", p.Name())
	assert.Equal(t, path, p.config.Path)

	_, err = NewCatalogProvider(map[string]any{})
	assert.Error(t, err)

	_, err = NewCatalogProvider(map[string]any{"path": filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestITunesProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hindi songs", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"resultCount": 1, "results": [{"trackId": 7, "trackName": "Kesariya", "artistName": "Arijit Singh"}]}`)
	}))
	defer server.Close()

	p, err := NewITunesProvider(map[string]any{
		"base_url":    server.URL,
		"query_param": "q",
		"limit":       "5",
	})
	require.NoError(t, err)
	assert.Equal(t, "itunes", p.Name())
	assert.Equal(t, "music", p.config.Media)
	assert.Equal(t, "song", p.config.Entity)

	tracks, err := p.Search(context.Background(), "hindi songs")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, track.IDs(tracks))
}

func TestNewITunesProvider_InvalidSettings(t *testing.T) {
	_, err := NewITunesProvider(map[string]any{"limit": 500})
	assert.Error(t, err)

	_, err = NewITunesProvider(map[string]any{"country": "INDIA"})
	assert.Error(t, err)
}

func TestSpotifyProvider(t *testing.T) {
	inner := &stubProvider{name: "client", results: map[string][]track.Track{
		"q": {{ID: 1, PreviewURL: "https://p.scdn.co/1"}, {ID: 2}},
	}}

	all, err := NewSpotifyProvider(inner, nil)
	require.NoError(t, err)
	tracks, err := all.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, track.IDs(tracks))

	previewOnly, err := NewSpotifyProvider(inner, map[string]any{"require_preview": true})
	require.NoError(t, err)
	tracks, err = previewOnly.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, track.IDs(tracks))

	_, err = NewSpotifyProvider(nil, nil)
	assert.Error(t, err)

	failing, err := NewSpotifyProvider(&stubProvider{err: errors.New("401")}, nil)
	require.NoError(t, err)
	_, err = failing.Search(context.Background(), "q")
	assert.Error(t, err)
}

func TestNewProviderFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	cfg := &config.Config{Search: config.SearchConfig{
		Providers: []config.ProviderConfig{
			{Type: "catalog", DisplayName: "Local", Settings: map[string]any{"path": path}},
			{Type: "itunes", DisplayName: "iTunes", Settings: map[string]any{"base_url": "http://127.0.0.1:1"}},
		},
	}}

	p, err := NewProviderFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	cached, ok := p.(*Cached)
	require.True(t, ok)
	assert.Equal(t, "provider_chain", cached.Name())

	cfg.Search.DisableCache = true
	p, err = NewProviderFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	chain, ok := p.(*Chain)
	require.True(t, ok)
	assert.Len(t, chain.Providers(), 2)
}

func TestNewResolverFromConfig(t *testing.T) {
	cfg := &config.Config{Search: config.SearchConfig{
		Providers: []config.ProviderConfig{{Type: "itunes", DisplayName: "iTunes"}},
	}}
	r, err := NewResolverFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, r, "references need a spotify provider")

	cfg.Search.Providers = append(cfg.Search.Providers, config.ProviderConfig{Type: "spotify", DisplayName: "Spotify"})
	_, err = NewResolverFromConfig(context.Background(), cfg)
	assert.Error(t, err)

	cfg.Spotify = config.SpotifyConfig{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh"}
	r, err = NewResolverFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestNewProviderFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		providers []config.ProviderConfig
		errMsg    string
	}{
		{
			name:   "no providers",
			errMsg: "no search providers configured",
		},
		{
			name:      "unsupported type",
			providers: []config.ProviderConfig{{Type: "lastfm", DisplayName: "Last.fm"}},
			errMsg:    "unsupported provider type: lastfm (provider index 0)",
		},
		{
			name:      "invalid settings",
			providers: []config.ProviderConfig{{Type: "catalog", DisplayName: "Local"}},
			errMsg:    "failed to create provider (index 0, type catalog)",
		},
		{
			name:      "spotify without credentials",
			providers: []config.ProviderConfig{{Type: "spotify", DisplayName: "Spotify"}},
			errMsg:    "spotify credentials are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Search: config.SearchConfig{Providers: tt.providers}}
			_, err := NewProviderFromConfig(context.Background(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
