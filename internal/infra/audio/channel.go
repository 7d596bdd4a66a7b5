// Package audio provides the playback channels driven by the crossfade scheduler.
//
// The server never decodes audio. A channel models the timeline of one
// preview clip: what is loaded, whether it is running, where it is and how
// loud it should be. Clients mirror that timeline.
package audio

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/vibebox/internal/domain/track"
)

var (
	ErrNoTrack     = errors.New("no track loaded")
	ErrNoPreview   = errors.New("track has no preview")
	ErrLoadFailed  = errors.New("failed to load track")
	ErrPlayFailed  = errors.New("failed to start playback")
	ErrInvalidSeek = errors.New("seek position out of range")
)

// DefaultPreviewLength is the clip length assumed when a track carries no duration.
const DefaultPreviewLength = 30 * time.Second

// Channel is one playback lane. Implementations must be safe for concurrent use.
type Channel interface {
	// Load replaces the loaded track and rewinds. It returns once the track
	// is ready to play. The channel is paused after Load.
	Load(ctx context.Context, t track.Track) error
	// Play starts or resumes playback from the current position.
	Play() error
	// Pause stops the timeline, keeping the position.
	Pause() error
	// Seek moves the position.
	Seek(pos time.Duration) error
	// SetVolume sets the volume, clamped to [0,1].
	SetVolume(v float64)
	Volume() float64
	Position() time.Duration
	Duration() time.Duration
	Playing() bool
	Track() (track.Track, bool)
}

// Remaining returns the time left on ch, or 0 when nothing is loaded.
func Remaining(ch Channel) time.Duration {
	if _, ok := ch.Track(); !ok {
		return 0
	}
	return max(0, ch.Duration()-ch.Position())
}

func clampVolume(v float64) float64 {
	return max(0, min(1, v))
}

func clipLength(t track.Track, limit time.Duration) time.Duration {
	d := t.Duration()
	if d <= 0 || (limit > 0 && d > limit) {
		return limit
	}
	return d
}
