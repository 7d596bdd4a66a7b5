package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/vibebox/internal/domain/track"
)

func TestDuplicateTrackFilter_ExactIDMatch(t *testing.T) {
	filter := &DuplicateTrackFilter{}
	p := NewPass(nil)
	p.accept(track.Track{ID: 123, Name: "Bohemian Rhapsody", ArtistName: "Queen"})

	result := filter.Check(context.Background(), track.Track{ID: 123, Name: "Something Else", ArtistName: "Queen"}, p)

	assert.False(t, result.Accepted)
	assert.Equal(t, "duplicate_track", result.Code)
}

func TestDuplicateTrackFilter_RemasterDetection(t *testing.T) {
	tests := []struct {
		name         string
		owned        track.Track
		candidate    track.Track
		shouldReject bool
		description  string
	}{
		{
			name:         "Standard remaster pattern",
			owned:        track.Track{ID: 1, Name: "Bohemian Rhapsody", ArtistName: "Queen"},
			candidate:    track.Track{ID: 2, Name: "Bohemian Rhapsody - 2011 Remaster", ArtistName: "Queen"},
			shouldReject: true,
			description:  "Should detect '- 2011 Remaster' as duplicate",
		},
		{
			name:         "Remastered in parentheses",
			owned:        track.Track{ID: 1, Name: "Yesterday", ArtistName: "The Beatles"},
			candidate:    track.Track{ID: 2, Name: "Yesterday (Remastered 2023)", ArtistName: "The Beatles"},
			shouldReject: true,
			description:  "Should detect '(Remastered 2023)' as duplicate",
		},
		{
			name:         "Film credit suffix",
			owned:        track.Track{ID: 1, Name: "Tum Hi Ho", ArtistName: "Arijit Singh"},
			candidate:    track.Track{ID: 2, Name: `Tum Hi Ho (From "Aashiqui 2")`, ArtistName: "Arijit Singh"},
			shouldReject: true,
			description:  "Should treat the film-credited release as the same song",
		},
		{
			name:         "Cover song - different artist",
			owned:        track.Track{ID: 1, Name: "Yesterday", ArtistName: "The Beatles"},
			candidate:    track.Track{ID: 2, Name: "Yesterday", ArtistName: "Paul McCartney"},
			shouldReject: false,
			description:  "Should allow cover by different artist",
		},
		{
			name:         "Different songs - similar names",
			owned:        track.Track{ID: 1, Name: "Love", ArtistName: "John Lennon"},
			candidate:    track.Track{ID: 2, Name: "Love Song", ArtistName: "John Lennon"},
			shouldReject: false,
			description:  "Should allow different songs",
		},
		{
			name:         "Radio Edit version",
			owned:        track.Track{ID: 1, Name: "Stairway to Heaven", ArtistName: "Led Zeppelin"},
			candidate:    track.Track{ID: 2, Name: "Stairway to Heaven (Radio Edit)", ArtistName: "Led Zeppelin"},
			shouldReject: true,
			description:  "Should detect radio edit as duplicate",
		},
		{
			name:         "Featured artist credit",
			owned:        track.Track{ID: 1, Name: "Softly", ArtistName: "Karan Aujla"},
			candidate:    track.Track{ID: 2, Name: "Softly", ArtistName: "Karan Aujla, Ikky"},
			shouldReject: true,
			description:  "Should compare the main artist only",
		},
		{
			name:         "Remix version - should be allowed",
			owned:        track.Track{ID: 1, Name: "Le Freak", ArtistName: "CHIC"},
			candidate:    track.Track{ID: 2, Name: "Le Freak (Oliver Heldens Remix)", ArtistName: "CHIC"},
			shouldReject: false,
			description:  "Should allow remix version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := &DuplicateTrackFilter{}

			// owned by the session
			result := filter.Check(context.Background(), tt.candidate, NewPass([]track.Track{tt.owned}))
			assert.Equal(t, !tt.shouldReject, result.Accepted, tt.description)

			// accepted earlier in the same pass
			p := NewPass(nil)
			p.accept(tt.owned)
			result = filter.Check(context.Background(), tt.candidate, p)
			assert.Equal(t, !tt.shouldReject, result.Accepted, tt.description)
			if tt.shouldReject {
				assert.Equal(t, "duplicate_track", result.Code)
			}
		})
	}
}

func TestDuplicateTrackFilter_EmptyPass(t *testing.T) {
	filter := &DuplicateTrackFilter{}

	result := filter.Check(context.Background(), track.Track{ID: 1, Name: "Any Song", ArtistName: "Any Artist"}, NewPass(nil))

	assert.True(t, result.Accepted, "Should accept any track when nothing is owned")
}

func TestDuplicateTrackFilter_AppliesTo(t *testing.T) {
	filter := &DuplicateTrackFilter{}

	assert.True(t, filter.AppliesTo(OriginDiscovery))
	assert.True(t, filter.AppliesTo(OriginMode))
	assert.False(t, filter.AppliesTo(OriginManual))
}

func TestNormalizeTrackName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bohemian Rhapsody", "bohemian rhapsody"},
		{"Bohemian Rhapsody - 2011 Remaster", "bohemian rhapsody"},
		{"Yesterday (Remastered 2023)", "yesterday"},
		{"Hotel California [Remastered]", "hotel california"},
		{"Stairway to Heaven (Radio Edit)", "stairway to heaven"},
		{"Imagine - Live", "imagine"},
		{"Oliver's Army", "oliver's army"},
		{"Let It Be (Single Version)", "let it be"},
		{"Hey Jude - Remastered Version", "hey jude"},
		{`Kesariya (From "Brahmastra")`, "kesariya"},
		{"Come Together (2019 Mix)", "come together (2019 mix)"},
		{"   Extra   Spaces   ", "extra spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeTrackName(tt.input))
		})
	}
}

func TestIsSameArtist(t *testing.T) {
	tests := []struct {
		name     string
		track1   track.Track
		track2   track.Track
		expected bool
	}{
		{
			name:     "Same artist",
			track1:   track.Track{ArtistName: "Queen"},
			track2:   track.Track{ArtistName: "Queen"},
			expected: true,
		},
		{
			name:     "Same artist - case insensitive",
			track1:   track.Track{ArtistName: "Queen"},
			track2:   track.Track{ArtistName: "queen"},
			expected: true,
		},
		{
			name:     "Different artists",
			track1:   track.Track{ArtistName: "The Beatles"},
			track2:   track.Track{ArtistName: "Paul McCartney"},
			expected: false,
		},
		{
			name:     "Empty artist",
			track1:   track.Track{ArtistName: ""},
			track2:   track.Track{ArtistName: "Queen"},
			expected: false,
		},
		{
			name:     "Multiple artists - compare first",
			track1:   track.Track{ArtistName: "Queen & David Bowie"},
			track2:   track.Track{ArtistName: "Queen feat. Someone Else"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSameArtist(tt.track1, tt.track2))
		})
	}
}
