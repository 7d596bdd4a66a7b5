// Package crossfade provides the two-channel transition scheduler.
package crossfade

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/app/notification"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/infra/audio"
)

// Errors
var (
	ErrTransitioning = errors.New("transition already in progress")
	ErrNoTrack       = errors.New("no track playing")
	ErrNotPlayable   = errors.New("track has no preview")
	ErrClosed        = errors.New("scheduler is closed")
)

// Steps is the number of volume updates in a crossfade.
const Steps = 60

// scheduleMargin is added to the crossfade when deciding whether a
// scheduled transition starts immediately.
const scheduleMargin = time.Second

// Scheduler plays tracks on two channels and moves between them with
// timed volume envelopes. At most one transition runs at a time.
type Scheduler struct {
	mu sync.Mutex

	current audio.Channel
	standby audio.Channel

	state    State
	settings Settings
	volume   float64
	// pendingVolume is a volume set during a transition, applied when it ends.
	pendingVolume *float64

	// generation is bumped by Stop so superseded fades and loads drop
	// their results.
	generation  uint64
	loading     bool
	fadeCancel  context.CancelFunc
	timerCancel func() // Cancel function for an armed deferred transition

	observers *notification.Registry[Event]
	wg        sync.WaitGroup
	closed    bool
}

// New creates a scheduler over channels a and b. a starts as current.
func New(a, b audio.Channel, settings Settings) (*Scheduler, error) {
	if a == nil || b == nil {
		return nil, errors.New("two channels are required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		current:   a,
		standby:   b,
		state:     StateIdle,
		settings:  settings,
		observers: notification.NewRegistry[Event]("crossfade"),
	}, nil
}

// PlayTrack loads t into the current channel and starts it at volume.
// An armed deferred transition is cancelled. A request made while a
// transition runs or another track is loading is rejected with
// ErrTransitioning. The channel loads without holding the scheduler lock;
// a Stop during the load wins and the loaded track is not started.
func (s *Scheduler) PlayTrack(ctx context.Context, t track.Track, volume float64) error {
	volume = clampVolume(volume)

	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.busyLocked() {
		state := s.state
		s.mu.Unlock()
		zlog.Warn().Msgf("crossfade: play rejected, track change in progress: requested=%q state=%s", t.Name, state)
		return ErrTransitioning
	}
	if !t.Playable() {
		s.mu.Unlock()
		return s.fail(t, errors.Wrapf(ErrNotPlayable, "track_id=%d", t.ID), false)
	}
	s.cancelTimerLocked()
	s.loading = true
	gen := s.generation
	ch := s.current
	s.mu.Unlock()

	err := ch.Load(ctx, t)

	s.mu.Lock()
	s.loading = false
	if gen != s.generation {
		s.mu.Unlock()
		zlog.Debug().Msgf("crossfade: play superseded while loading: track_id=%d", t.ID)
		return errors.Wrapf(context.Canceled, "play of track %d superseded", t.ID)
	}
	if err != nil {
		s.resetLocked()
		s.mu.Unlock()
		return s.fail(t, errors.Wrapf(err, "failed to load track %d", t.ID), false)
	}
	loaded := Event{Type: EventTrackLoaded, Track: &t, State: s.state}

	ch.SetVolume(volume)
	if err := ch.Play(); err != nil {
		s.resetLocked()
		s.mu.Unlock()
		s.emit(loaded)
		return s.fail(t, errors.Wrapf(err, "failed to play track %d", t.ID), false)
	}
	s.volume = volume
	s.state = StatePlaying
	s.mu.Unlock()

	zlog.Info().Msgf("crossfade: track started: track_id=%d name=%q volume=%.2f", t.ID, t.Name, volume)
	s.emit(loaded)
	s.emit(Event{Type: EventTrackStarted, Track: &t, State: StatePlaying})
	return nil
}

// TransitionTo starts a transition to t and returns. Completion is
// reported by EventTransitionCompleted. A request made while another
// transition runs is rejected with ErrTransitioning and changes nothing.
// When nothing is loaded, TransitionTo behaves like PlayTrack.
func (s *Scheduler) TransitionTo(ctx context.Context, t track.Track, volume float64) error {
	volume = clampVolume(volume)

	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.busyLocked() {
		s.mu.Unlock()
		zlog.Warn().Msgf("crossfade: transition already in progress: requested=%q", t.Name)
		return ErrTransitioning
	}
	if _, ok := s.current.Track(); !ok || s.state == StateIdle {
		s.mu.Unlock()
		return s.PlayTrack(ctx, t, volume)
	}
	if !t.Playable() {
		s.mu.Unlock()
		return s.fail(t, errors.Wrapf(ErrNotPlayable, "track_id=%d", t.ID), false)
	}

	s.cancelTimerLocked()
	fadeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.fadeCancel = cancel
	s.state = StateTransitioning
	gen := s.generation
	settings := s.settings
	out, in := s.current, s.standby
	s.wg.Add(1)
	s.mu.Unlock()

	zlog.Info().Msgf("crossfade: transition started: to=%q type=%s curve=%s duration=%s",
		t.Name, settings.Type, settings.Curve, settings.Crossfade)
	s.emit(Event{Type: EventTransitionStarted, Track: &t, State: StateTransitioning})

	go s.runTransition(fadeCtx, gen, out, in, t, volume, settings)
	return nil
}

func (s *Scheduler) runTransition(ctx context.Context, gen uint64, out, in audio.Channel, t track.Track, volume float64, settings Settings) {
	defer s.wg.Done()

	if err := in.Load(ctx, t); err != nil {
		s.abortTransition(gen, t, errors.Wrapf(err, "failed to load track %d", t.ID))
		return
	}
	if !s.stillCurrent(gen) {
		return
	}
	s.emit(Event{Type: EventTrackLoaded, Track: &t, Preloaded: true, State: StateTransitioning})

	var err error
	switch settings.Type {
	case TypeCut:
		err = s.cut(ctx, gen, out, in, volume, settings.Gap)
	case TypeBeatmatch:
		zlog.Debug().Msg("crossfade: beatmatch runs as crossfade")
		fallthrough
	default:
		err = s.fade(ctx, gen, out, in, volume, settings)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.abortTransition(gen, t, errors.Wrapf(err, "failed to play track %d", t.ID))
		}
		return
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	_ = out.Pause()
	_ = out.Seek(0)
	s.current, s.standby = in, out
	s.volume = volume
	if s.pendingVolume != nil {
		s.volume = *s.pendingVolume
		in.SetVolume(s.volume)
		s.pendingVolume = nil
	}
	s.state = StatePlaying
	s.fadeCancel = nil
	s.mu.Unlock()

	zlog.Info().Msgf("crossfade: transition completed: track_id=%d name=%q", t.ID, t.Name)
	s.emit(Event{Type: EventTransitionCompleted, Track: &t, State: StatePlaying})
}

// fade runs the stepped crossfade. At step i the outgoing channel is at
// curve(1-i/Steps)*volume and the incoming one at curve(i/Steps)*volume.
func (s *Scheduler) fade(ctx context.Context, gen uint64, out, in audio.Channel, volume float64, settings Settings) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return context.Canceled
	}
	in.SetVolume(0)
	err := in.Play()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(max(time.Millisecond, settings.Crossfade/Steps))
	defer ticker.Stop()

	for i := 1; i <= Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		progress := float64(i) / Steps
		outgoing := settings.Curve.Apply(1-progress) * volume
		incoming := min(volume, settings.Curve.Apply(progress)*volume)
		if i == Steps {
			outgoing, incoming = 0, volume
		}

		s.mu.Lock()
		if gen != s.generation {
			s.mu.Unlock()
			return context.Canceled
		}
		out.SetVolume(outgoing)
		in.SetVolume(incoming)
		s.mu.Unlock()
	}
	return nil
}

// cut silences the outgoing channel, waits for the gap and starts the
// incoming one at full volume.
func (s *Scheduler) cut(ctx context.Context, gen uint64, out, in audio.Channel, volume float64, gap time.Duration) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return context.Canceled
	}
	out.SetVolume(0)
	_ = out.Pause()
	s.mu.Unlock()

	if gap > 0 {
		timer := time.NewTimer(gap)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return context.Canceled
	}
	in.SetVolume(volume)
	return in.Play()
}

// abortTransition reports a failed transition. The outgoing channel keeps
// playing if it still is.
func (s *Scheduler) abortTransition(gen uint64, t track.Track, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.fadeCancel = nil
	_ = s.standby.Pause()
	s.standby.SetVolume(0)
	if s.current.Playing() {
		s.current.SetVolume(s.volume)
		s.state = StatePlaying
	} else {
		s.state = StateIdle
	}
	s.mu.Unlock()

	_ = s.fail(t, err, true)
}

// ScheduleTransition transitions to t right away when the current track
// ends within the crossfade plus one second; otherwise it arms a one-shot
// transition that starts crossfade-duration before the end. Arming again
// replaces the previous one.
func (s *Scheduler) ScheduleTransition(ctx context.Context, t track.Track, volume float64) error {
	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.busyLocked() {
		s.mu.Unlock()
		return ErrTransitioning
	}
	if _, ok := s.current.Track(); !ok {
		s.mu.Unlock()
		return ErrNoTrack
	}
	duration := s.current.Duration()
	if duration <= 0 {
		s.mu.Unlock()
		zlog.Debug().Msg("crossfade: current duration unknown, not scheduling")
		return nil
	}

	remaining := duration - s.current.Position()
	if remaining <= s.settings.Crossfade+scheduleMargin {
		s.mu.Unlock()
		return s.TransitionTo(ctx, t, volume)
	}

	delay := remaining - s.settings.Crossfade
	s.cancelTimerLocked()
	s.timerCancel = s.startWallClockTimer(delay, func() {
		if err := s.TransitionTo(context.Background(), t, volume); err != nil {
			zlog.Warn().Msgf("crossfade: deferred transition failed: track_id=%d error=%v", t.ID, err)
		}
	})
	s.mu.Unlock()

	zlog.Debug().Msgf("crossfade: transition armed: to=%q in=%s", t.Name, delay)
	return nil
}

// Armed reports whether a deferred transition is waiting to fire.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timerCancel != nil
}

// CancelScheduled disarms a deferred transition.
func (s *Scheduler) CancelScheduled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
}

// Pause pauses the current channel and disarms a deferred transition.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	if _, ok := s.current.Track(); !ok {
		s.mu.Unlock()
		return ErrNoTrack
	}
	s.cancelTimerLocked()
	if err := s.current.Pause(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.state == StatePlaying {
		s.state = StatePaused
	}
	state := s.state
	s.mu.Unlock()

	s.emit(Event{Type: EventPaused, State: state})
	return nil
}

// Resume resumes the current channel.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	t, ok := s.current.Track()
	if !ok {
		s.mu.Unlock()
		return ErrNoTrack
	}
	if err := s.current.Play(); err != nil {
		s.mu.Unlock()
		return s.fail(t, errors.Wrapf(err, "failed to resume track %d", t.ID), false)
	}
	if s.state == StatePaused || s.state == StateIdle {
		s.state = StatePlaying
	}
	state := s.state
	s.mu.Unlock()

	s.emit(Event{Type: EventResumed, State: state})
	return nil
}

// Stop halts both channels, cancels a running fade and any armed
// transition, and returns to idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()

	zlog.Info().Msg("crossfade: stopped")
	s.emit(Event{Type: EventStopped, State: StateIdle})
}

func (s *Scheduler) stopLocked() {
	s.generation++
	if s.fadeCancel != nil {
		s.fadeCancel()
		s.fadeCancel = nil
	}
	s.cancelTimerLocked()
	for _, ch := range []audio.Channel{s.current, s.standby} {
		if _, ok := ch.Track(); ok {
			_ = ch.Pause()
			_ = ch.Seek(0)
		}
		ch.SetVolume(0)
	}
	s.pendingVolume = nil
	s.state = StateIdle
}

// SetVolume sets the playback volume, clamped to [0,1]. During a
// transition the change is held back and applied when it completes.
func (s *Scheduler) SetVolume(v float64) {
	v = clampVolume(v)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTransitioning {
		s.pendingVolume = &v
		return
	}
	s.volume = v
	s.current.SetVolume(v)
}

// Volume returns the target volume.
func (s *Scheduler) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingVolume != nil {
		return *s.pendingVolume
	}
	return s.volume
}

// UpdateSettings replaces the transition settings. They apply from the
// next transition.
func (s *Scheduler) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = settings
	state := s.state
	s.mu.Unlock()

	zlog.Info().Msgf("crossfade: settings updated: duration=%s gap=%s curve=%s type=%s",
		settings.Crossfade, settings.Gap, settings.Curve, settings.Type)
	s.emit(Event{Type: EventSettingsUpdated, Settings: &settings, State: state})
	return nil
}

// Settings returns the transition settings.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// CurrentTime returns the position of the current channel.
func (s *Scheduler) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Position()
}

// Duration returns the clip length of the current channel.
func (s *Scheduler) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Duration()
}

// Remaining returns the time left on the current channel.
func (s *Scheduler) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return audio.Remaining(s.current)
}

// Seek moves the current channel. It is ignored during a transition.
// An armed transition is disarmed since its timing no longer holds.
func (s *Scheduler) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTransitioning {
		zlog.Debug().Msg("crossfade: seek ignored during transition")
		return nil
	}
	if _, ok := s.current.Track(); !ok {
		return ErrNoTrack
	}
	s.cancelTimerLocked()
	return s.current.Seek(pos)
}

// CurrentTrack returns the track on the current channel.
func (s *Scheduler) CurrentTrack() (track.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Track()
}

// IsPlaying reports whether the current channel is playing.
func (s *Scheduler) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Playing()
}

// IsTransitioning reports whether a transition is running.
func (s *Scheduler) IsTransitioning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateTransitioning
}

// State returns the scheduler state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers handler for scheduler events. Events are delivered
// synchronously in emission order.
func (s *Scheduler) Subscribe(handler func(Event)) string {
	return s.observers.Subscribe(handler)
}

// Unsubscribe removes an event handler.
func (s *Scheduler) Unsubscribe(id string) bool {
	return s.observers.Unsubscribe(id)
}

// Wait blocks until a running transition and any fired deferred
// transition have finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close stops playback, waits for background work and drops subscribers.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.stopLocked()
	s.mu.Unlock()

	s.wg.Wait()
	return s.observers.Close()
}

func (s *Scheduler) checkLocked() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// busyLocked reports whether a transition runs or PlayTrack is loading.
func (s *Scheduler) busyLocked() bool {
	return s.state == StateTransitioning || s.loading
}

func (s *Scheduler) resetLocked() {
	s.state = StateIdle
	_ = s.current.Pause()
}

func (s *Scheduler) cancelTimerLocked() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
}

func (s *Scheduler) stillCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

// fail emits an error event for t and returns err.
func (s *Scheduler) fail(t track.Track, err error, transitioning bool) error {
	zlog.Error().Msgf("crossfade: %v: track_id=%d transition=%t", err, t.ID, transitioning)
	s.emit(Event{Type: EventError, Track: &t, Err: err, State: s.State()})
	return err
}

func (s *Scheduler) emit(e Event) {
	s.observers.Publish(e)
}

// startWallClockTimer calls callback once duration has elapsed on the wall
// clock. The returned function cancels it.
func (s *Scheduler) startWallClockTimer(duration time.Duration, callback func()) func() {
	ctx, cancel := context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		endTime := toWallTime(time.Now()).Add(duration)
		ticker := time.NewTicker(timerResolution)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !toWallTime(time.Now()).Before(endTime) {
					s.mu.Lock()
					fired := ctx.Err() == nil
					if fired {
						s.timerCancel = nil
					}
					s.mu.Unlock()
					if fired {
						callback()
					}
					return
				}
			}
		}
	}()

	return cancel
}

// timerResolution is how often an armed transition checks the wall clock.
const timerResolution = 20 * time.Millisecond

// toWallTime returns the time with monotonic clock stripped.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}

func clampVolume(v float64) float64 {
	return max(0, min(1, v))
}
