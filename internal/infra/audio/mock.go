package audio

import (
	"context"
	"sync"
	"time"

	"github.com/osa030/vibebox/internal/domain/track"
)

// Mock is an in-memory channel whose position only moves when told to.
// It records every volume it is given.
type Mock struct {
	mu sync.RWMutex

	name     string
	track    *track.Track
	position time.Duration
	duration time.Duration
	volume   float64
	playing  bool
	volumes  []float64
	loads    int

	// Behavior configuration (for testing error scenarios)
	failLoad bool
	failPlay bool
	loadGate <-chan struct{}
}

// NewMock creates a mock channel. name appears in nothing but tests.
func NewMock(name string) *Mock {
	return &Mock{name: name}
}

// Name returns the channel name.
func (m *Mock) Name() string {
	return m.name
}

// SetFailLoad configures the mock to fail loading tracks.
func (m *Mock) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail playback.
func (m *Mock) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetLoadGate makes Load wait until gate is closed or its context ends.
func (m *Mock) SetLoadGate(gate <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadGate = gate
}

// SetPosition moves the position without the range checks of Seek.
func (m *Mock) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

// Volumes returns every volume set since the last Load, oldest first.
func (m *Mock) Volumes() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]float64(nil), m.volumes...)
}

// Loads returns how many times Load succeeded.
func (m *Mock) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

func (m *Mock) Load(ctx context.Context, t track.Track) error {
	if !t.Playable() {
		return ErrNoPreview
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	gate := m.loadGate
	m.mu.RUnlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failLoad {
		return ErrLoadFailed
	}
	m.track = &t
	m.position = 0
	m.duration = clipLength(t, DefaultPreviewLength)
	m.playing = false
	m.volumes = nil
	m.loads++
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.track == nil {
		return ErrNoTrack
	}
	if m.failPlay {
		return ErrPlayFailed
	}
	m.playing = true
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.track == nil {
		return ErrNoTrack
	}
	m.playing = false
	return nil
}

func (m *Mock) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.track == nil {
		return ErrNoTrack
	}
	if pos < 0 || pos > m.duration {
		return ErrInvalidSeek
	}
	m.position = pos
	return nil
}

func (m *Mock) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clampVolume(v)
	m.volumes = append(m.volumes, m.volume)
}

func (m *Mock) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

func (m *Mock) Position() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.duration
}

func (m *Mock) Playing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playing
}

func (m *Mock) Track() (track.Track, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.track == nil {
		return track.Track{}, false
	}
	return *m.track, true
}
