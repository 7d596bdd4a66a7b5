// Package dj provides the DJ session controller: the queue state machine,
// the discovery pipeline that keeps the lookahead filled and best-effort
// persistence of the session.
package dj

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/app/analyzer"
	"github.com/osa030/vibebox/internal/app/filter"
	"github.com/osa030/vibebox/internal/app/notification"
	"github.com/osa030/vibebox/internal/app/ranker"
	"github.com/osa030/vibebox/internal/app/search"
	"github.com/osa030/vibebox/internal/domain/mode"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/domain/vibe"
	"github.com/osa030/vibebox/internal/infra/config"
	"github.com/osa030/vibebox/internal/infra/store"
)

var (
	ErrUnknownMode      = errors.New("unknown DJ mode")
	ErrTrackNotPlayable = errors.New("track has no preview")
	ErrNoCandidates     = errors.New("no usable candidates found")
	ErrClosed           = errors.New("controller is closed")
)

// nextTracksPreview is the number of tracks NextTracks returns.
const nextTracksPreview = 5

// Dependencies are the collaborators of a Controller. Search is required;
// the rest default to the builtin analyzer, ranker, mode catalog and an
// in-memory store.
type Dependencies struct {
	Search   search.Provider
	Analyzer *analyzer.Analyzer
	Ranker   *ranker.Ranker
	Modes    *mode.Catalog
	Store    store.Store
}

// Controller owns a DJ session. All methods are safe for concurrent use.
type Controller struct {
	cfg      config.DJConfig
	search   search.Provider
	analyzer *analyzer.Analyzer
	ranker   *ranker.Ranker
	modes    *mode.Catalog
	store    store.Store

	mu    sync.RWMutex
	state State
	// generation is bumped whenever the session is replaced, so discovery
	// passes started for an older session drop their results.
	generation uint64
	// discovering counts in-flight discovery passes per generation.
	discovering map[uint64]int
	closed      bool

	// publishMu keeps persistence and notification in mutation order.
	publishMu sync.Mutex
	observers *notification.Registry[State]

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a controller and restores the persisted session, if any.
func New(cfg config.DJConfig, deps Dependencies) (*Controller, error) {
	if deps.Search == nil {
		return nil, errors.New("search provider is required")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set DJ defaults")
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analyzer.New()
	}
	if deps.Ranker == nil {
		deps.Ranker = ranker.New(deps.Analyzer, nil)
	}
	if deps.Modes == nil {
		deps.Modes = mode.Builtin()
	}
	if deps.Store == nil {
		deps.Store = store.NewMemory()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:         cfg,
		search:      deps.Search,
		analyzer:    deps.Analyzer,
		ranker:      deps.Ranker,
		modes:       deps.Modes,
		store:       deps.Store,
		observers:   notification.NewRegistry[State]("dj"),
		discovering: make(map[uint64]int),
		ctx:         ctx,
		cancel:      cancel,
	}
	c.state = c.restore()
	return c, nil
}

// StartSession starts a session seeded with seed and launches discovery in
// the background. The queue holds only the seed when StartSession returns.
func (c *Controller) StartSession(seed track.Track) error {
	if !seed.Playable() {
		return errors.Wrapf(ErrTrackNotPlayable, "track_id=%d", seed.ID)
	}

	profile := c.analyzer.Classify(seed)
	queue := &Queue{
		ID:        "dj-" + uuid.New().String(),
		Tracks:    []track.Track{seed},
		Active:    true,
		Profile:   profile,
		CreatedAt: time.Now(),
	}

	var gen uint64
	err := c.update(func(s *State) error {
		gen = c.nextGenerationLocked()
		s.Active = true
		s.Queue = queue
		s.AutoQueue = true
		s.Profile = &profile
		s.PlayedTracks = []track.Track{seed}
		s.NextTracks = []track.Track{}
		return nil
	})
	if err != nil {
		return err
	}

	zlog.Info().Msgf("dj: session started: queue_id=%s seed=%q language=%s genre=%s",
		queue.ID, seed.Name, profile.Language, seed.Genre)
	c.launch(gen, func(ctx context.Context) { c.discoverFromTrack(ctx, gen, seed) })
	return nil
}

// StartSessionWithMode starts a session driven by the mode with id modeID.
func (c *Controller) StartSessionWithMode(modeID string) error {
	m, err := c.lookupMode(modeID)
	if err != nil {
		return err
	}

	var gen uint64
	err = c.update(func(s *State) error {
		gen = c.nextGenerationLocked()
		profile := m.Vibe
		s.Active = true
		s.Queue = nil
		s.AutoQueue = true
		s.Profile = &profile
		s.Mode = &m
		s.PlayedTracks = []track.Track{}
		s.NextTracks = []track.Track{}
		return nil
	})
	if err != nil {
		return err
	}

	zlog.Info().Msgf("dj: session started with mode: mode=%s", m.ID)
	c.launch(gen, func(ctx context.Context) { c.discoverForMode(ctx, gen, m) })
	return nil
}

// StopSession ends the session. Played history and the current profile are kept.
func (c *Controller) StopSession() error {
	err := c.update(func(s *State) error {
		c.nextGenerationLocked()
		s.Active = false
		s.Queue = nil
		s.AutoQueue = false
		s.NextTracks = []track.Track{}
		s.Mode = nil
		return nil
	})
	if err == nil {
		zlog.Info().Msg("dj: session stopped")
	}
	return err
}

// SetMode selects a mode. When a session is active its queue and lookahead
// are cleared immediately and mode discovery is relaunched.
func (c *Controller) SetMode(modeID string) error {
	m, err := c.lookupMode(modeID)
	if err != nil {
		return err
	}

	var (
		gen    uint64
		active bool
	)
	err = c.update(func(s *State) error {
		gen = c.nextGenerationLocked()
		profile := m.Vibe
		s.Mode = &m
		s.Profile = &profile
		s.Queue = nil
		s.NextTracks = []track.Track{}
		active = s.Active
		return nil
	})
	if err != nil {
		return err
	}

	zlog.Info().Msgf("dj: mode set: mode=%s name=%q active=%t", m.ID, m.Name, active)
	if active {
		c.launch(gen, func(ctx context.Context) { c.discoverForMode(ctx, gen, m) })
	}
	return nil
}

// NextTrack returns the head of the lookahead without removing it.
func (c *Controller) NextTrack() (track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.state.Active || len(c.state.NextTracks) == 0 {
		return track.Track{}, false
	}
	return c.state.NextTracks[0], true
}

// QueueHead returns the track at the current index of the session queue.
func (c *Controller) QueueHead() (track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.state.Active {
		return track.Track{}, false
	}
	return c.state.Queue.Head()
}

// MarkPlayed records t as played and removes it from the lookahead. When
// auto-queue is on and the lookahead runs low, a refill keyed on t starts
// in the background. Marking a track that is already played and no longer
// in the lookahead does nothing.
func (c *Controller) MarkPlayed(t track.Track) {
	var (
		gen    uint64
		refill bool
	)
	err := c.update(func(s *State) error {
		if !s.Active {
			return errNoChange
		}
		queued := track.Contains(s.NextTracks, t.ID)
		played := track.Contains(s.PlayedTracks, t.ID)
		if played && !queued {
			return errNoChange
		}

		if !played {
			s.PlayedTracks = append(s.PlayedTracks, t)
		}
		s.NextTracks = track.Without(s.NextTracks, t.ID)
		if s.Queue != nil && s.Queue.CurrentIndex < len(s.Queue.Tracks)-1 && s.Queue.Tracks[s.Queue.CurrentIndex].ID == t.ID {
			s.Queue.CurrentIndex++
		}

		gen = c.generation
		refill = s.AutoQueue && s.Profile != nil &&
			len(s.NextTracks) < c.cfg.RefillThreshold && c.discovering[c.generation] == 0
		return nil
	})
	if err != nil {
		return
	}

	zlog.Debug().Msgf("dj: track played: track_id=%d name=%q refill=%t", t.ID, t.Name, refill)
	if refill {
		c.launch(gen, func(ctx context.Context) { c.discoverFromTrack(ctx, gen, t) })
	}
}

// AddToQueue puts t at the front of the lookahead and drifts the session
// vibe toward it. When no session is active, it starts one seeded with t.
func (c *Controller) AddToQueue(ctx context.Context, t track.Track) error {
	if !t.Playable() {
		return errors.Wrapf(ErrTrackNotPlayable, "track_id=%d", t.ID)
	}

	c.mu.RLock()
	active := c.state.Active
	history := track.Clone(c.state.NextTracks)
	c.mu.RUnlock()

	if !active {
		return c.StartSession(t)
	}

	if len(c.ranker.Screen(ctx, []track.Track{t}, history, filter.OriginManual)) == 0 {
		return errors.Wrapf(ErrTrackNotPlayable, "track_id=%d rejected", t.ID)
	}

	profile := c.analyzer.Classify(t)
	return c.update(func(s *State) error {
		s.NextTracks = append([]track.Track{t}, track.Without(s.NextTracks, t.ID)...)
		if s.Profile != nil {
			blended := analyzer.Blend(*s.Profile, profile)
			s.Profile = &blended
		}
		return nil
	})
}

// RemoveFromQueue removes the track with id from the lookahead.
func (c *Controller) RemoveFromQueue(id int64) error {
	return c.update(func(s *State) error {
		if !track.Contains(s.NextTracks, id) {
			return errNoChange
		}
		s.NextTracks = track.Without(s.NextTracks, id)
		return nil
	})
}

// ToggleAutoQueue flips auto-queue and returns the new value.
func (c *Controller) ToggleAutoQueue() bool {
	var enabled bool
	_ = c.update(func(s *State) error {
		s.AutoQueue = !s.AutoQueue
		enabled = s.AutoQueue
		return nil
	})
	return enabled
}

// ClearHistory empties the played history and the lookahead.
func (c *Controller) ClearHistory() error {
	return c.update(func(s *State) error {
		s.PlayedTracks = []track.Track{}
		s.NextTracks = []track.Track{}
		return nil
	})
}

// QueueStatus returns the lookahead and history sizes.
func (c *Controller) QueueStatus() QueueStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := QueueStatus{
		NextCount:   len(c.state.NextTracks),
		PlayedCount: len(c.state.PlayedTracks),
	}
	if c.state.Profile != nil {
		p := *c.state.Profile
		status.Profile = &p
	}
	return status
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// PlayedTracks returns the played history, oldest first.
func (c *Controller) PlayedTracks() []track.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return track.Clone(c.state.PlayedTracks)
}

// NextTracks returns the first tracks of the lookahead.
func (c *Controller) NextTracks() []track.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return track.Clone(c.state.NextTracks[:min(nextTracksPreview, len(c.state.NextTracks))])
}

// Modes returns the mode catalog in order.
func (c *Controller) Modes() []mode.Mode {
	return c.modes.All()
}

// ModesByLanguage returns the modes targeting lang, in catalog order.
func (c *Controller) ModesByLanguage(lang vibe.Language) []mode.Mode {
	return c.modes.ByLanguage(lang)
}

// CurrentMode returns the selected mode.
func (c *Controller) CurrentMode() (mode.Mode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state.Mode == nil {
		return mode.Mode{}, false
	}
	return *c.state.Clone().Mode, true
}

// Subscribe registers handler for state changes. Each call receives its own
// snapshot. Handlers run synchronously after the mutation that caused them
// and must not call mutating methods of the controller.
func (c *Controller) Subscribe(handler func(State)) string {
	if handler == nil {
		panic("dj: state handler cannot be nil")
	}
	return c.observers.Subscribe(func(s State) { handler(s.Clone()) })
}

// Unsubscribe removes a state handler.
func (c *Controller) Unsubscribe(id string) bool {
	return c.observers.Unsubscribe(id)
}

// Wait blocks until every in-flight discovery pass has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight discovery, waits for it and drops subscribers.
// The store is owned by the caller and is not closed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return c.observers.Close()
}

// errNoChange aborts an update without persisting or notifying.
var errNoChange = errors.New("no change")

// update applies fn to the state under the lock, then persists and
// publishes the result in mutation order.
func (c *Controller) update(fn func(s *State) error) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := fn(&c.state); err != nil {
		c.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	snap := c.state.Clone()
	c.mu.Unlock()

	c.persist(snap)
	c.observers.Publish(snap)
	return nil
}

func (c *Controller) nextGenerationLocked() uint64 {
	c.generation++
	return c.generation
}

func (c *Controller) lookupMode(id string) (mode.Mode, error) {
	m, ok := c.modes.Lookup(id)
	if !ok {
		zlog.Error().Msgf("dj: mode not found: mode=%s", id)
		return mode.Mode{}, errors.Wrapf(ErrUnknownMode, "mode=%s", id)
	}
	return m, nil
}

// launch runs fn on a goroutine tracked by the controller.
func (c *Controller) launch(gen uint64, fn func(ctx context.Context)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.discovering[gen]++
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			c.discovering[gen]--
			if c.discovering[gen] == 0 {
				delete(c.discovering, gen)
			}
			c.mu.Unlock()
		}()
		fn(c.ctx)
		zlog.Debug().Msgf("dj: discovery finished: generation=%d", gen)
	}()
}
