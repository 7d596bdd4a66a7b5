// Package track provides the Track domain entity.
package track

import "time"

// Track represents a catalog track as returned by a search provider.
// Field names on the wire follow the iTunes Search API.
type Track struct {
	ID          int64  `json:"trackId" yaml:"trackId"`
	ArtistName  string `json:"artistName" yaml:"artistName"`
	Name        string `json:"trackName" yaml:"trackName"`
	Album       string `json:"collectionName,omitempty" yaml:"collectionName,omitempty"`
	ArtworkURL  string `json:"artworkUrl100,omitempty" yaml:"artworkUrl100,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty" yaml:"previewUrl,omitempty"`
	DurationMs  int64  `json:"trackTimeMillis,omitempty" yaml:"trackTimeMillis,omitempty"`
	Genre       string `json:"primaryGenreName,omitempty" yaml:"primaryGenreName,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty" yaml:"releaseDate,omitempty"`
}

// Playable reports whether the track carries a preview URL.
// Tracks without one are never ranked or queued.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}

// Duration returns the track length, or 0 when unknown.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// IDs returns the ids of tracks in order.
func IDs(tracks []Track) []int64 {
	ids := make([]int64, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}
	return ids
}

// IDSet returns the ids of tracks as a lookup set.
func IDSet(tracks []Track) map[int64]bool {
	set := make(map[int64]bool, len(tracks))
	for _, t := range tracks {
		set[t.ID] = true
	}
	return set
}

// Contains reports whether a track with id is in tracks.
func Contains(tracks []Track, id int64) bool {
	for _, t := range tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Without returns a copy of tracks with every track matching id removed.
func Without(tracks []Track, id int64) []Track {
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a copy of tracks that shares no backing array with it.
// A nil slice clones to an empty one.
func Clone(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}
