// Package player provides the host that drives the crossfade scheduler from
// the DJ session: it feeds the lookahead into transitions, arms them ahead of
// each track boundary and reports played tracks back to the controller.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/app/crossfade"
	"github.com/osa030/vibebox/internal/app/dj"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/infra/config"
)

var (
	ErrNothingToPlay = errors.New("no track to play")
	ErrNotStarted    = errors.New("player is not started")
)

// eventBuffer is the capacity of the host's event channels.
const eventBuffer = 64

// Status is a point-in-time view of playback.
type Status struct {
	State        crossfade.State
	Track        *track.Track
	Position     time.Duration
	Duration     time.Duration
	Volume       float64
	AutoPlayNext bool
	// Scheduled is set once the transition for the current track is armed.
	Scheduled bool
	// Armed reports a deferred transition waiting on the wall clock.
	Armed    bool
	Settings crossfade.Settings
}

// Player bridges a DJ controller and a crossfade scheduler.
type Player struct {
	cfg       config.PlayerConfig
	dj        *dj.Controller
	scheduler *crossfade.Scheduler

	mu           sync.Mutex
	volume       float64
	autoPlayNext bool
	scheduled    bool // One-shot: the next transition has been requested
	wasActive    bool
	started      bool

	deckSub  string
	stateSub string
	deckCh   chan crossfade.Event
	stateCh  chan dj.State

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a player. Start must be called before playback is driven.
func New(cfg config.PlayerConfig, volume float64, controller *dj.Controller, scheduler *crossfade.Scheduler) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		cfg:          cfg,
		dj:           controller,
		scheduler:    scheduler,
		volume:       max(0, min(1, volume)),
		autoPlayNext: cfg.AutoPlayNext == nil || *cfg.AutoPlayNext,
		deckCh:       make(chan crossfade.Event, eventBuffer),
		stateCh:      make(chan dj.State, eventBuffer),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// Start subscribes to both components and starts the scheduling loop.
func (p *Player) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.wasActive = p.dj.State().Active
	p.mu.Unlock()

	p.deckSub = p.scheduler.Subscribe(func(e crossfade.Event) { send(p.ctx, p.deckCh, e, "deck") })
	p.stateSub = p.dj.Subscribe(func(s dj.State) { send(p.ctx, p.stateCh, s, "dj") })

	go p.loop()
	zlog.Info().Msgf("player: started: tick=%s lead=%s auto_play_next=%t", p.cfg.Tick(), p.cfg.Lead(), p.AutoPlayNext())
}

// send forwards v without blocking the publisher.
func send[T any](ctx context.Context, ch chan<- T, v T, source string) {
	select {
	case ch <- v:
	case <-ctx.Done():
	default:
		zlog.Warn().Msgf("player: %s event dropped, loop is behind", source)
	}
}

// loop runs the scheduling tick and handles component events.
func (p *Player) loop() {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("player: loop panicked: %v", r)
		}
	}()

	ticker := time.NewTicker(p.cfg.Tick())
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case e := <-p.deckCh:
			p.handleDeckEvent(e)
		case s := <-p.stateCh:
			p.handleStateChange(s)
		case <-ticker.C:
			p.tick()
		}
	}
}

// handleDeckEvent reports started tracks to the controller and resets the
// one-shot flag on every track change.
func (p *Player) handleDeckEvent(e crossfade.Event) {
	zlog.Debug().Msgf("player: deck event: type=%s state=%s", e.Type, e.State)

	switch e.Type {
	case crossfade.EventTrackStarted, crossfade.EventTransitionCompleted:
		p.resetScheduled()
		if e.Track != nil {
			p.dj.MarkPlayed(*e.Track)
		}
	case crossfade.EventPaused, crossfade.EventStopped, crossfade.EventError:
		p.resetScheduled()
	}
}

// handleStateChange stops playback when the DJ session ends.
func (p *Player) handleStateChange(s dj.State) {
	p.mu.Lock()
	stopped := p.wasActive && !s.Active
	p.wasActive = s.Active
	p.mu.Unlock()

	if stopped && p.scheduler.State() != crossfade.StateIdle {
		zlog.Info().Msg("player: DJ session stopped, stopping playback")
		p.scheduler.Stop()
	}
}

// tick arms the transition to the next lookahead track once the current one
// is within the crossfade window plus the lead, and starts the next track
// when the current one ran out with nothing armed.
func (p *Player) tick() {
	p.mu.Lock()
	auto, scheduled, volume := p.autoPlayNext, p.scheduled, p.volume
	p.mu.Unlock()

	if !auto || scheduled || p.scheduler.State() != crossfade.StatePlaying {
		return
	}

	next, ok := p.nextCandidate()
	if !ok {
		return
	}

	if !p.scheduler.IsPlaying() {
		if p.scheduler.Remaining() > 0 {
			return
		}
		zlog.Info().Msgf("player: track ended, playing next: next=%q", next.Name)
		p.setScheduled()
		if err := p.scheduler.PlayTrack(p.ctx, next, volume); err != nil {
			zlog.Warn().Msgf("player: failed to play next track: %v", err)
		}
		return
	}

	remaining := p.scheduler.Remaining()
	window := p.scheduler.Settings().Crossfade + p.cfg.Lead()
	if remaining <= 0 || remaining > window {
		return
	}

	p.setScheduled()
	zlog.Debug().Msgf("player: scheduling transition: next=%q remaining=%s", next.Name, remaining)
	if err := p.scheduler.ScheduleTransition(p.ctx, next, volume); err != nil {
		if errors.Is(err, crossfade.ErrTransitioning) {
			return
		}
		zlog.Warn().Msgf("player: failed to schedule transition: %v", err)
		p.resetScheduled()
	}
}

// nextCandidate returns the lookahead head unless it is already on the deck.
func (p *Player) nextCandidate() (track.Track, bool) {
	next, ok := p.dj.NextTrack()
	if !ok {
		return track.Track{}, false
	}
	if current, ok := p.scheduler.CurrentTrack(); ok && current.ID == next.ID {
		return track.Track{}, false
	}
	return next, true
}

// Play resumes paused playback, or starts the session queue head, or the
// lookahead head when there is no queue head to play.
func (p *Player) Play(ctx context.Context) error {
	if err := p.checkStarted(); err != nil {
		return err
	}

	switch p.scheduler.State() {
	case crossfade.StatePlaying, crossfade.StateTransitioning:
		return nil
	case crossfade.StatePaused:
		return p.scheduler.Resume()
	}

	t, ok := p.dj.QueueHead()
	if !ok {
		if t, ok = p.dj.NextTrack(); !ok {
			return ErrNothingToPlay
		}
	}
	zlog.Info().Msgf("player: play: track_id=%d name=%q", t.ID, t.Name)
	return p.scheduler.PlayTrack(ctx, t, p.Volume())
}

// PlayTrack plays t now, crossfading when something is already playing.
// It fails with crossfade.ErrTransitioning while a transition runs.
func (p *Player) PlayTrack(ctx context.Context, t track.Track) error {
	if err := p.checkStarted(); err != nil {
		return err
	}
	switch p.scheduler.State() {
	case crossfade.StateTransitioning:
		zlog.Info().Msgf("player: play rejected during transition: track_id=%d", t.ID)
		return crossfade.ErrTransitioning
	case crossfade.StatePlaying:
		p.scheduler.CancelScheduled()
		p.setScheduled()
		return p.scheduler.TransitionTo(ctx, t, p.Volume())
	default:
		p.scheduler.CancelScheduled()
		p.setScheduled()
		return p.scheduler.PlayTrack(ctx, t, p.Volume())
	}
}

// Skip moves on to the next lookahead track.
func (p *Player) Skip(ctx context.Context) error {
	next, ok := p.nextCandidate()
	if !ok {
		return ErrNothingToPlay
	}
	zlog.Info().Msgf("player: skip: next=%q", next.Name)
	return p.PlayTrack(ctx, next)
}

// Pause pauses playback.
func (p *Player) Pause() error {
	return p.scheduler.Pause()
}

// Resume resumes playback.
func (p *Player) Resume() error {
	return p.scheduler.Resume()
}

// Replay restarts the current track.
func (p *Player) Replay() error {
	if err := p.scheduler.Seek(0); err != nil {
		return err
	}
	p.resetScheduled()
	return p.scheduler.Resume()
}

// Seek moves the current track. The armed transition is re-evaluated on the
// next tick.
func (p *Player) Seek(pos time.Duration) error {
	if err := p.scheduler.Seek(pos); err != nil {
		return err
	}
	p.resetScheduled()
	return nil
}

// Stop stops playback.
func (p *Player) Stop() {
	p.scheduler.Stop()
}

// SetVolume sets the playback volume, clamped to [0,1].
func (p *Player) SetVolume(v float64) {
	v = max(0, min(1, v))
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	p.scheduler.SetVolume(v)
}

// Volume returns the playback volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetAutoPlayNext turns automatic advancing on or off.
func (p *Player) SetAutoPlayNext(on bool) {
	p.mu.Lock()
	p.autoPlayNext = on
	p.mu.Unlock()
	if !on {
		p.scheduler.CancelScheduled()
		p.resetScheduled()
	}
	zlog.Info().Msgf("player: auto play next: enabled=%t", on)
}

// AutoPlayNext reports whether the player advances on its own.
func (p *Player) AutoPlayNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.autoPlayNext
}

// Status returns the playback status.
func (p *Player) Status() Status {
	s := Status{
		State:     p.scheduler.State(),
		Position:  p.scheduler.CurrentTime(),
		Duration:  p.scheduler.Duration(),
		Volume:    p.Volume(),
		Settings:  p.scheduler.Settings(),
		Scheduled: p.isScheduled(),
		Armed:     p.scheduler.Armed(),
	}
	s.AutoPlayNext = p.AutoPlayNext()
	if t, ok := p.scheduler.CurrentTrack(); ok {
		s.Track = &t
	}
	return s
}

// Close stops the loop and unsubscribes. The controller and scheduler are
// owned by the caller.
func (p *Player) Close() {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	p.cancel()
	if !started {
		return
	}
	<-p.done
	p.scheduler.Unsubscribe(p.deckSub)
	p.dj.Unsubscribe(p.stateSub)
}

func (p *Player) checkStarted() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	return nil
}

func (p *Player) setScheduled() {
	p.mu.Lock()
	p.scheduled = true
	p.mu.Unlock()
}

func (p *Player) resetScheduled() {
	p.mu.Lock()
	p.scheduled = false
	p.mu.Unlock()
}

func (p *Player) isScheduled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scheduled
}
