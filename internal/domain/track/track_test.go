package track

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_Playable(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected bool
	}{
		{
			name:     "with preview",
			track:    Track{ID: 1, PreviewURL: "https://example.com/1.m4a"},
			expected: true,
		},
		{
			name:     "without preview",
			track:    Track{ID: 2},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.track.Playable())
		})
	}
}

func TestTrack_Duration(t *testing.T) {
	assert.Equal(t, 3*time.Minute+30*time.Second, Track{DurationMs: 210000}.Duration())
	assert.Equal(t, time.Duration(0), Track{}.Duration())
}

func TestTrack_DecodesSearchAPIFields(t *testing.T) {
	payload := `{
		"trackId": 1440818839,
		"artistName": "Diljit Dosanjh",
		"trackName": "Lover",
		"collectionName": "MoonChild Era",
		"previewUrl": "https://audio.example.com/lover.m4a",
		"trackTimeMillis": 187000,
		"primaryGenreName": "Punjabi",
		"country": "IND"
	}`

	var tr Track
	require.NoError(t, json.Unmarshal([]byte(payload), &tr))

	assert.Equal(t, int64(1440818839), tr.ID)
	assert.Equal(t, "Diljit Dosanjh", tr.ArtistName)
	assert.Equal(t, "Lover", tr.Name)
	assert.Equal(t, "MoonChild Era", tr.Album)
	assert.Equal(t, "Punjabi", tr.Genre)
	assert.Equal(t, "IND", tr.Country)
	assert.True(t, tr.Playable())
	assert.Equal(t, 187*time.Second, tr.Duration())
}

func TestSliceHelpers(t *testing.T) {
	tracks := []Track{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 2}}

	assert.Equal(t, []int64{1, 2, 3, 2}, IDs(tracks))
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true}, IDSet(tracks))
	assert.True(t, Contains(tracks, 3))
	assert.False(t, Contains(tracks, 4))
	assert.Equal(t, []Track{{ID: 1}, {ID: 3}}, Without(tracks, 2))

	cloned := Clone(tracks)
	cloned[0].ID = 99
	assert.Equal(t, int64(1), tracks[0].ID)

	assert.NotNil(t, Clone(nil))
	assert.Empty(t, Clone(nil))
}
