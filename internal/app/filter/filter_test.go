package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/infra/config"
)

func playable(id int64, name, artist string) track.Track {
	return track.Track{ID: id, Name: name, ArtistName: artist, PreviewURL: "https://audio.example.com/preview.m4a"}
}

func TestPlayableFilter_Check(t *testing.T) {
	tests := []struct {
		name         string
		track        track.Track
		wantAccepted bool
		wantCode     string
	}{
		{
			name:         "has preview",
			track:        playable(1, "Lover", "Diljit Dosanjh"),
			wantAccepted: true,
		},
		{
			name:         "no preview",
			track:        track.Track{ID: 2, Name: "Lover", ArtistName: "Diljit Dosanjh"},
			wantAccepted: false,
			wantCode:     "not_playable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &PlayableFilter{}
			result := f.Check(context.Background(), tt.track, NewPass(nil))

			assert.Equal(t, tt.wantAccepted, result.Accepted)
			assert.Equal(t, tt.wantCode, result.Code)
		})
	}

	assert.True(t, (&PlayableFilter{}).AppliesTo(OriginManual))
}

func TestPlayedTrackFilter_Check(t *testing.T) {
	f := &PlayedTrackFilter{}
	p := NewPass([]track.Track{playable(1, "Lover", "Diljit Dosanjh")})

	result := f.Check(context.Background(), playable(1, "Lover", "Diljit Dosanjh"), p)
	assert.False(t, result.Accepted)
	assert.Equal(t, "already_played", result.Code)

	result = f.Check(context.Background(), playable(2, "Softly", "Karan Aujla"), p)
	assert.True(t, result.Accepted)

	assert.False(t, f.AppliesTo(OriginManual))
}

func TestChain_Apply(t *testing.T) {
	history := []track.Track{playable(1, "Lover", "Diljit Dosanjh")}
	candidates := []track.Track{
		playable(1, "Lover", "Diljit Dosanjh"),                 // played
		playable(2, "Softly", "Karan Aujla"),                   // ok
		{ID: 3, Name: "No Preview", ArtistName: "Someone"},     // not playable
		playable(2, "Softly", "Karan Aujla"),                   // duplicate id
		playable(4, "Softly (Radio Edit)", "Karan Aujla"),      // alternate version
		playable(5, "Admirin You", "Karan Aujla"),              // ok
		playable(6, "Lover - 2021 Remaster", "Diljit Dosanjh"), // remaster of played
	}

	c := NewDefaultChain()
	p := NewPass(history)
	accepted := c.Apply(context.Background(), candidates, p, OriginDiscovery)

	assert.Equal(t, []int64{2, 5}, track.IDs(accepted))
	assert.Equal(t, []int64{2, 5}, track.IDs(p.Accepted()))

	// a second batch in the same pass sees the first one
	more := c.Apply(context.Background(), []track.Track{playable(5, "Admirin You", "Karan Aujla"), playable(7, "Players", "Badshah")}, p, OriginDiscovery)
	assert.Equal(t, []int64{7}, track.IDs(more))
	assert.Equal(t, []int64{2, 5, 7}, track.IDs(p.Accepted()))
}

func TestChain_Execute_ManualOrigin(t *testing.T) {
	c := NewDefaultChain()
	p := NewPass([]track.Track{playable(1, "Lover", "Diljit Dosanjh")})

	// users may re-queue a played track, but never an unplayable one
	assert.True(t, c.Execute(context.Background(), playable(1, "Lover", "Diljit Dosanjh"), p, OriginManual).Accepted)

	result := c.Execute(context.Background(), track.Track{ID: 9}, p, OriginManual)
	assert.False(t, result.Accepted)
	assert.Equal(t, "not_playable", result.Code)
}

func TestChain_HasAndFilters(t *testing.T) {
	c := NewDefaultChain()
	assert.True(t, c.Has("playable_filter"))
	assert.True(t, c.Has("duplicate_track_filter"))
	assert.True(t, c.Has("played_track_filter"))
	assert.False(t, c.Has("duration_limit_filter"))

	c.Add(NewDurationLimitFilter())
	assert.True(t, c.Has("duration_limit_filter"))
	assert.Len(t, c.Filters(), 4)
}

func TestNewChainFromConfig(t *testing.T) {
	c, err := NewChainFromConfig(map[string]config.FilterConfig{
		"duration_limit_filter": {Enabled: true, Settings: map[string]any{"min_minutes": 2, "max_minutes": 6}},
		"played_track_filter":   {Enabled: true},
	})
	require.NoError(t, err)
	assert.Len(t, c.Filters(), 4, "default filters are not added twice")
	assert.True(t, c.Has("duration_limit_filter"))

	c, err = NewChainFromConfig(map[string]config.FilterConfig{
		"duration_limit_filter": {Enabled: false},
	})
	require.NoError(t, err)
	assert.False(t, c.Has("duration_limit_filter"))

	_, err = NewChainFromConfig(map[string]config.FilterConfig{"no_such_filter": {Enabled: true}})
	assert.Error(t, err)

	_, err = NewChainFromConfig(map[string]config.FilterConfig{
		"duration_limit_filter": {Enabled: true, Settings: map[string]any{"min_minutes": 10, "max_minutes": 5}},
	})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	registered := GetRegistered()

	for _, name := range []string{"playable_filter", "duplicate_track_filter", "played_track_filter", "duration_limit_filter"} {
		factory, ok := registered[name]
		require.True(t, ok, name)

		f := factory()
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.Description())
		assert.NotEmpty(t, f.ReturnCodes())
	}
}

func TestOrigin_String(t *testing.T) {
	assert.Equal(t, "discovery", OriginDiscovery.String())
	assert.Equal(t, "mode", OriginMode.String())
	assert.Equal(t, "manual", OriginManual.String())
	assert.Equal(t, "unknown", Origin(42).String())
}
