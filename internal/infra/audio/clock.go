package audio

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/domain/track"
)

// ClockConfig configures a Clock channel.
type ClockConfig struct {
	// PreviewLength caps the clip length. Zero means DefaultPreviewLength.
	PreviewLength time.Duration
	// Probe makes Load issue a HEAD request to the preview URL and fail
	// unless it answers 2xx.
	Probe bool
	// HTTPClient is used for probing. Nil means a client with a 5s timeout.
	HTTPClient *http.Client
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Clock is a channel that advances its position with wall-clock time
// while playing.
type Clock struct {
	mu sync.RWMutex

	cfg ClockConfig

	track     *track.Track
	duration  time.Duration
	volume    float64
	playing   bool
	startedAt time.Time     // wall time at which position was offset
	offset    time.Duration // position when startedAt was taken
}

// NewClock creates a clock channel.
func NewClock(cfg ClockConfig) *Clock {
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = DefaultPreviewLength
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Clock{cfg: cfg}
}

func (c *Clock) Load(ctx context.Context, t track.Track) error {
	if !t.Playable() {
		return ErrNoPreview
	}
	if c.cfg.Probe {
		if err := c.probe(ctx, t.PreviewURL); err != nil {
			return errors.Wrapf(errors.Mark(err, ErrLoadFailed), "track_id=%d", t.ID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.track = &t
	c.duration = clipLength(t, c.cfg.PreviewLength)
	c.playing = false
	c.offset = 0
	return nil
}

func (c *Clock) probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create probe request")
	}
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to probe preview")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Newf("preview probe returned status %d", resp.StatusCode)
	}
	zlog.Debug().Msgf("audio: preview probed: url=%s content_type=%s", url, resp.Header.Get("Content-Type"))
	return nil
}

func (c *Clock) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		return ErrNoTrack
	}
	if c.playing {
		return nil
	}
	if c.offset >= c.duration {
		c.offset = 0
	}
	c.startedAt = toWallTime(c.cfg.Now())
	c.playing = true
	return nil
}

func (c *Clock) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		return ErrNoTrack
	}
	c.offset = c.positionLocked()
	c.playing = false
	return nil
}

func (c *Clock) Seek(pos time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.track == nil {
		return ErrNoTrack
	}
	if pos < 0 || pos > c.duration {
		return ErrInvalidSeek
	}
	c.offset = pos
	c.startedAt = toWallTime(c.cfg.Now())
	return nil
}

func (c *Clock) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = clampVolume(v)
}

func (c *Clock) Volume() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.volume
}

// Position returns the playback position. A clip that ran to its end
// reports its duration.
func (c *Clock) Position() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.positionLocked()
}

func (c *Clock) positionLocked() time.Duration {
	if !c.playing {
		return c.offset
	}
	pos := c.offset + toWallTime(c.cfg.Now()).Sub(c.startedAt)
	return min(pos, c.duration)
}

func (c *Clock) Duration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.duration
}

// Playing reports whether the timeline is running. A clip that reached
// its end is no longer playing.
func (c *Clock) Playing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playing && c.positionLocked() < c.duration
}

func (c *Clock) Track() (track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.track == nil {
		return track.Track{}, false
	}
	return *c.track, true
}

// toWallTime returns the time with monotonic clock stripped, so differences
// follow the wall clock.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
