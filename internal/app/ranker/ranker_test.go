package ranker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/vibebox/internal/app/analyzer"
	"github.com/osa030/vibebox/internal/app/filter"
	"github.com/osa030/vibebox/internal/domain/mode"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/domain/vibe"
)

const preview = "https://audio.example.com/p.m4a"

var seed = track.Track{
	ID:         100,
	Name:       "Lover",
	ArtistName: "Diljit Dosanjh",
	Genre:      "Punjabi",
	PreviewURL: preview,
	DurationMs: 187000,
	Country:    "IND",
}

func newRanker() *Ranker {
	return New(analyzer.New(), nil)
}

func TestTargetFromTrack(t *testing.T) {
	target := newRanker().TargetFromTrack(seed)

	assert.Equal(t, vibe.LanguagePunjabi, target.Language)
	assert.Equal(t, "Punjabi", target.Genre)
	assert.Equal(t, []string{"Hip-Hop/Rap", "Pop", "Dance", "World Music", "Folk"}, target.SimilarGenres)
	assert.Equal(t, vibe.EnergyMedium, target.Energy)
	assert.Equal(t, "IND", target.Country)
	assert.Equal(t, int64(187000), target.DurationMs)
}

func TestTargetFromMode(t *testing.T) {
	m, ok := mode.Builtin().Lookup("daaru-party")
	require.True(t, ok)

	target := TargetFromMode(m)

	assert.Equal(t, vibe.LanguagePunjabi, target.Language)
	assert.Equal(t, "Punjabi", target.Genre)
	assert.Equal(t, m.Genres, target.SimilarGenres)
	assert.Equal(t, vibe.EnergyHigh, target.Energy)
	assert.Zero(t, target.DurationMs)
}

func TestRanker_Score(t *testing.T) {
	r := newRanker()
	target := r.TargetFromTrack(seed)

	tests := []struct {
		name     string
		track    track.Track
		expected float64
	}{
		{
			name:     "same language, genre, energy and length clamps to one",
			track:    track.Track{ID: 1, Name: "Xyzzy", ArtistName: "Karan Aujla", Genre: "Punjabi", PreviewURL: preview, DurationMs: 190000},
			expected: 1.0,
		},
		{
			name:     "compatible language with unrelated genre",
			track:    track.Track{ID: 2, Name: "Xyzzy", ArtistName: "Qwrt", Genre: "Bollywood", PreviewURL: preview},
			expected: 0.1 + 0.3 - 0.1 + 0.1,
		},
		{
			name:     "confirmed different language clamps to zero",
			track:    track.Track{ID: 3, Name: "Hold My Heart", ArtistName: "Qwrt", Genre: "Pop", PreviewURL: preview},
			expected: 0,
		},
		{
			name:     "unknown language is not penalized",
			track:    track.Track{ID: 4, Name: "Xyzzy", ArtistName: "Qwrt", PreviewURL: preview},
			expected: 0.1 + 0.1,
		},
		{
			name:     "similar genre earns half",
			track:    track.Track{ID: 5, Name: "Xyzzy", ArtistName: "Karan Aujla", Genre: "Folk", PreviewURL: preview},
			expected: 0.1 + 0.6 + 0.125,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Score(tt.track, target)
			assert.InDelta(t, tt.expected, got.Score, 1e-9)
			assert.GreaterOrEqual(t, got.Score, 0.0)
			assert.LessOrEqual(t, got.Score, 1.0)
		})
	}
}

func TestRanker_Score_Duration(t *testing.T) {
	r := newRanker()
	target := Target{Language: vibe.LanguageOther, DurationMs: 200000}

	inside := r.Score(track.Track{ID: 1, Name: "Xyzzy", ArtistName: "Qwrt", DurationMs: 219000}, target)
	outside := r.Score(track.Track{ID: 2, Name: "Xyzzy", ArtistName: "Qwrt", DurationMs: 221000}, target)
	unknown := r.Score(track.Track{ID: 3, Name: "Xyzzy", ArtistName: "Qwrt"}, target)

	assert.InDelta(t, 0.75, inside.Score, 1e-9)
	assert.InDelta(t, 0.7, outside.Score, 1e-9)
	assert.InDelta(t, 0.7, unknown.Score, 1e-9)
}

func TestRanker_Rank(t *testing.T) {
	r := newRanker()
	target := r.TargetFromTrack(seed)

	candidates := []track.Track{
		{ID: 3, Name: "Hold My Heart", ArtistName: "Qwrt", Genre: "Pop", PreviewURL: preview},
		{ID: 2, Name: "Xyzzy", ArtistName: "Qwrt", Genre: "Bollywood", PreviewURL: preview},
		{ID: 1, Name: "Xyzzy", ArtistName: "Karan Aujla", Genre: "Punjabi", PreviewURL: preview, DurationMs: 190000},
		{ID: 7, Name: "No Preview", ArtistName: "Karan Aujla", Genre: "Punjabi"},
		{ID: 1, Name: "Xyzzy", ArtistName: "Karan Aujla", Genre: "Punjabi", PreviewURL: preview},
		{ID: 100, Name: "Lover", ArtistName: "Diljit Dosanjh", Genre: "Punjabi", PreviewURL: preview},
	}

	ranked := r.Rank(context.Background(), candidates, target, []track.Track{seed}, filter.OriginDiscovery)

	require.Len(t, ranked, 3)
	assert.Equal(t, []int64{1, 2, 3}, track.IDs(Tracks(ranked, len(ranked))))
	for _, s := range ranked {
		assert.True(t, s.Track.Playable())
	}
}

func TestRanker_Rank_NeverReturnsUnplayableOrDuplicates(t *testing.T) {
	r := newRanker()
	target := Target{Language: vibe.LanguagePunjabi}

	var candidates []track.Track
	for i := 0; i < 40; i++ {
		tr := track.Track{ID: int64(i % 13), Name: fmt.Sprintf("Song %d", i%13), ArtistName: "Karan Aujla"}
		if i%3 != 0 {
			tr.PreviewURL = preview
		}
		candidates = append(candidates, tr)
	}
	history := []track.Track{{ID: 4}, {ID: 5}}

	ranked := r.Rank(context.Background(), candidates, target, history, filter.OriginDiscovery)

	seen := make(map[int64]bool)
	for _, s := range ranked {
		assert.True(t, s.Track.Playable(), "track %d is not playable", s.Track.ID)
		assert.False(t, seen[s.Track.ID], "track %d returned twice", s.Track.ID)
		assert.NotContains(t, []int64{4, 5}, s.Track.ID)
		seen[s.Track.ID] = true
	}
	assert.NotEmpty(t, ranked)
}

func TestRanker_Rank_StableForEqualScores(t *testing.T) {
	r := newRanker()
	candidates := []track.Track{
		{ID: 9, Name: "Xyzzy", ArtistName: "Qwrt", PreviewURL: preview},
		{ID: 3, Name: "Plugh", ArtistName: "Qwrt", PreviewURL: preview},
		{ID: 5, Name: "Frotz", ArtistName: "Qwrt", PreviewURL: preview},
	}

	ranked := r.Rank(context.Background(), candidates, Target{Language: vibe.LanguageKorean}, nil, filter.OriginDiscovery)

	assert.Equal(t, []int64{9, 3, 5}, track.IDs(Tracks(ranked, 10)))
}

func TestRanker_RankByVibe(t *testing.T) {
	a := analyzer.New()
	r := New(a, nil)
	target := a.Classify(seed)

	candidates := []track.Track{
		{ID: 3, Name: "Hold My Heart", ArtistName: "Qwrt", Genre: "Pop", PreviewURL: preview},
		{ID: 1, Name: "Xyzzy", ArtistName: "Karan Aujla", Genre: "Punjabi", PreviewURL: preview},
		{ID: 8, Name: "Xyzzy", ArtistName: "Karan Aujla", Genre: "Punjabi"},
	}

	ranked := r.RankByVibe(context.Background(), candidates, target, nil, filter.OriginDiscovery)

	require.Len(t, ranked, 2)
	assert.Equal(t, int64(1), ranked[0].Track.ID)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
	assert.Less(t, ranked[1].Score, ranked[0].Score)
}

func TestTracks(t *testing.T) {
	ranked := []Scored{{Track: track.Track{ID: 1}}, {Track: track.Track{ID: 2}}}

	assert.Equal(t, []int64{1}, track.IDs(Tracks(ranked, 1)))
	assert.Equal(t, []int64{1, 2}, track.IDs(Tracks(ranked, 5)))
	assert.Empty(t, Tracks(ranked, -1))
}

func TestLanguageQueries(t *testing.T) {
	tests := []struct {
		name     string
		language vibe.Language
		genre    string
		expected []string
	}{
		{
			name:     "punjabi with genre is capped at ten",
			language: vibe.LanguagePunjabi,
			genre:    "Punjabi",
			expected: []string{
				"punjabi songs", "punjabi music", "bhangra", "punjabi hits", "desi punjabi", "jatt songs",
				"punjabi songs punjabi", "punjabi punjabi songs", "punjabi music punjabi", "punjabi punjabi music",
			},
		},
		{
			name:     "gujarati without genre",
			language: vibe.LanguageGujarati,
			expected: []string{"gujarati songs", "gujarati music", "gujarat music"},
		},
		{
			name:     "unmapped language searches itself",
			language: vibe.LanguageFrench,
			genre:    "Pop",
			expected: []string{"french", "french pop", "pop french"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LanguageQueries(tt.language, tt.genre))
		})
	}
}

func TestGenreQueries(t *testing.T) {
	tests := []struct {
		name     string
		genre    string
		country  string
		expected []string
	}{
		{
			name:     "regional genre with country code",
			genre:    "Marathi",
			country:  "IND",
			expected: []string{"marathi songs", "marathi music", "hindi marathi", "bollywood marathi", "indian marathi"},
		},
		{
			name:     "non regional genre ignores country",
			genre:    "Pop",
			country:  "IND",
			expected: []string{"pop songs", "popular music", "pop hits", "mainstream pop"},
		},
		{
			name:     "unmapped genre gains music and songs",
			genre:    "Trap",
			expected: []string{"trap", "trap music", "trap songs"},
		},
		{
			name:     "regional genre capped at eight",
			genre:    "Punjabi",
			country:  "India",
			expected: []string{"punjabi songs", "punjabi music", "bhangra", "punjabi hits", "hindi punjabi", "bollywood punjabi", "indian punjabi"},
		},
		{
			name:     "no genre",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenreQueries(tt.genre, tt.country))
		})
	}
}

func TestRanker_Screen(t *testing.T) {
	r := newRanker()
	history := []track.Track{seed}
	candidates := []track.Track{
		seed,
		{ID: 7, Name: "Softly", ArtistName: "Karan Aujla", PreviewURL: preview},
		{ID: 8, Name: "Silent", ArtistName: "Nobody"},
	}

	assert.Equal(t, []int64{7}, track.IDs(r.Screen(context.Background(), candidates, history, filter.OriginDiscovery)))
	assert.Equal(t, []int64{100, 7}, track.IDs(r.Screen(context.Background(), candidates, history, filter.OriginManual)),
		"manual tracks skip history checks but must still be playable")
}

func TestSimilarGenres_Directional(t *testing.T) {
	r := newRanker()

	punjabi := r.TargetFromTrack(seed)
	assert.Contains(t, punjabi.SimilarGenres, "Pop")

	pop := r.TargetFromTrack(track.Track{ID: 7, Name: "Levitating", ArtistName: "Dua Lipa", Genre: "Pop", PreviewURL: preview})
	assert.NotContains(t, pop.SimilarGenres, "Punjabi", "the table is not symmetrized")
}
