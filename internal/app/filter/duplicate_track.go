package filter

import (
	"context"
	"regexp"
	"strings"

	"github.com/osa030/vibebox/internal/domain/track"
)

// DuplicateTrackFilter rejects candidates that repeat a track already
// accepted in the pass or owned by the session.
// Detects:
// - Exact track ID matches within the pass
// - Remasters and alternate versions (normalized track name + same artist)
// Excludes:
// - Cover songs (same track name but different artist)
type DuplicateTrackFilter struct{}

// Name returns the filter name.
func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

// Description returns the filter description.
func (f *DuplicateTrackFilter) Description() string {
	return "Rejects repeated candidates, including remasters and alternate versions of queued songs; covers are allowed (always enabled)"
}

// ReturnCodes returns possible return codes.
func (f *DuplicateTrackFilter) ReturnCodes() []string {
	return []string{"duplicate_track"}
}

// AppliesTo returns which origins this filter applies to.
func (f *DuplicateTrackFilter) AppliesTo(origin Origin) bool {
	return origin != OriginManual
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateTrackFilter) ValidateConfig(config map[string]any) error {
	// No configuration needed
	return nil
}

// Check checks if the track is a duplicate.
func (f *DuplicateTrackFilter) Check(ctx context.Context, candidate track.Track, p *Pass) Result {
	if p.Seen(candidate.ID) {
		return Reject("duplicate_track")
	}

	for _, list := range [][]track.Track{p.Accepted(), p.History()} {
		for _, owned := range list {
			if owned.ID != candidate.ID && isRemaster(owned, candidate) {
				return Reject("duplicate_track")
			}
		}
	}

	return Accept()
}

// isRemaster checks if two tracks are the same song (remaster/different version).
// Returns true if:
// - Normalized track names match
// - Main artist is the same
func isRemaster(track1, track2 track.Track) bool {
	if normalizeTrackName(track1.Name) != normalizeTrackName(track2.Name) {
		return false
	}

	// Same normalized name - check if same artist
	// If different artists, it's a cover song (allowed)
	return isSameArtist(track1, track2)
}

var (
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
		regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`),              // "(Any Remaster text)"
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`),              // "[Any Remaster text]"
	}
	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?version\)`),        // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),           // "(Radio Edit)"
		regexp.MustCompile(`\s*\(from\s.*?\)`),         // "(From "Some Film")"
		regexp.MustCompile(`\s*-?\s*live$`),            // "- Live"
		regexp.MustCompile(`\s*\(live\)`),              // "(Live)"
		regexp.MustCompile(`\s*-?\s*radio\s+edit`),     // "- Radio Edit"
		regexp.MustCompile(`\s*-?\s*single\s+version`), // "- Single Version"
	}
	whitespace = regexp.MustCompile(`\s+`)

	artistSeparators = []string{",", "&", " feat.", " feat ", " ft.", " x ", " and "}
)

// normalizeTrackName removes remaster information and version details.
func normalizeTrackName(name string) string {
	normalized := strings.ToLower(name)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = strings.TrimSpace(normalized)
	normalized = whitespace.ReplaceAllString(normalized, " ")

	// Remove trailing dashes
	return strings.TrimRight(normalized, " -")
}

// isSameArtist checks if two tracks share the same main artist.
func isSameArtist(track1, track2 track.Track) bool {
	a1 := mainArtist(track1.ArtistName)
	a2 := mainArtist(track2.ArtistName)
	if a1 == "" || a2 == "" {
		return false
	}
	return strings.EqualFold(a1, a2)
}

// mainArtist returns the first credited artist of a combined artist string.
func mainArtist(artists string) string {
	main := strings.ToLower(artists)
	for _, sep := range artistSeparators {
		if i := strings.Index(main, sep); i > 0 {
			main = main[:i]
		}
	}
	return strings.TrimSpace(main)
}

func init() {
	Register("duplicate_track_filter", func() Filter {
		return &DuplicateTrackFilter{}
	})
}
