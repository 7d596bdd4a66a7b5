package player

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/vibebox/internal/app/crossfade"
	"github.com/osa030/vibebox/internal/app/dj"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/infra/audio"
	"github.com/osa030/vibebox/internal/infra/config"
	"github.com/osa030/vibebox/internal/testutil"
)

const preview = "https://audio.example.com/p.m4a"

var seed = track.Track{
	ID:         100,
	Name:       "Lover",
	ArtistName: "Diljit Dosanjh",
	Genre:      "Punjabi",
	PreviewURL: preview,
	DurationMs: 187000,
}

// staticSearch returns the same tracks for every query.
type staticSearch struct {
	tracks []track.Track
}

func (s staticSearch) Search(_ context.Context, _ string) ([]track.Track, error) {
	return track.Clone(s.tracks), nil
}

func (s staticSearch) Name() string { return "static" }

func candidates() []track.Track {
	names := []string{"Softly", "Winning Speech", "Admirin You", "Players", "Daytime", "Skyfall"}
	tracks := make([]track.Track, 0, len(names))
	for i, name := range names {
		tracks = append(tracks, track.Track{
			ID:         int64(i + 1),
			Name:       name,
			ArtistName: "Karan Aujla",
			Genre:      "Punjabi",
			PreviewURL: preview,
			DurationMs: 180000,
		})
	}
	return tracks
}

type rig struct {
	player     *Player
	controller *dj.Controller
	scheduler  *crossfade.Scheduler
	a, b       *audio.Mock
}

func newRig(t *testing.T, cfg config.PlayerConfig) *rig {
	t.Helper()

	controller, err := dj.New(config.DJConfig{}, dj.Dependencies{Search: staticSearch{tracks: candidates()}})
	require.NoError(t, err)

	a, b := audio.NewMock("a"), audio.NewMock("b")
	scheduler, err := crossfade.New(a, b, crossfade.Settings{
		Crossfade: 100 * time.Millisecond,
		Curve:     crossfade.CurveLinear,
		Type:      crossfade.TypeCrossfade,
	})
	require.NoError(t, err)

	if cfg.TickMs == 0 {
		cfg.TickMs = 10
	}
	p := New(cfg, 0.8, controller, scheduler)
	t.Cleanup(func() {
		p.Close()
		_ = scheduler.Close()
		_ = controller.Close()
	})
	return &rig{player: p, controller: controller, scheduler: scheduler, a: a, b: b}
}

// startSession seeds a DJ session and waits for the lookahead.
func (r *rig) startSession(t *testing.T) {
	t.Helper()
	require.NoError(t, r.controller.StartSession(seed))
	r.controller.Wait()
	require.Positive(t, r.controller.QueueStatus().NextCount)
}

func (r *rig) currentID() int64 {
	current, _ := r.scheduler.CurrentTrack()
	return current.ID
}

func TestPlayer_NotStarted(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	assert.True(t, errors.Is(r.player.Play(context.Background()), ErrNotStarted))
}

func TestPlayer_PlayWithoutSession(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	r.player.Start()
	assert.True(t, errors.Is(r.player.Play(context.Background()), ErrNothingToPlay))
	assert.True(t, errors.Is(r.player.Skip(context.Background()), ErrNothingToPlay))
}

func TestPlayer_AdvancesAtTrackBoundary(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	r := newRig(t, config.PlayerConfig{})
	r.startSession(t)
	r.player.Start()

	require.NoError(t, r.player.Play(context.Background()))
	assert.Equal(t, seed.ID, r.currentID())
	assert.Equal(t, crossfade.StatePlaying, r.scheduler.State())

	next, ok := r.controller.NextTrack()
	require.True(t, ok)

	r.a.SetPosition(audio.DefaultPreviewLength - 50*time.Millisecond)

	require.Eventually(t, func() bool {
		return r.currentID() == next.ID && !r.scheduler.IsTransitioning()
	}, 3*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return track.Contains(r.controller.State().PlayedTracks, next.ID)
	}, time.Second, 10*time.Millisecond, "the finished transition is reported as played")

	assert.False(t, track.Contains(r.controller.State().NextTracks, next.ID))
	assert.True(t, r.b.Playing())
	assert.False(t, r.a.Playing())

	r.player.Close()
	require.NoError(t, r.scheduler.Close())
	require.NoError(t, r.controller.Close())
}

func TestPlayer_PlaysNextWhenTrackEnds(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	r.startSession(t)
	r.player.Start()

	require.NoError(t, r.player.Play(context.Background()))
	next, _ := r.controller.NextTrack()

	// The clip ran out before anything was armed.
	require.NoError(t, r.a.Pause())
	r.a.SetPosition(audio.DefaultPreviewLength)

	require.Eventually(t, func() bool {
		return r.currentID() == next.ID && r.a.Playing()
	}, 3*time.Second, 10*time.Millisecond)
}

func TestPlayer_AutoPlayNextDisabled(t *testing.T) {
	off := false
	r := newRig(t, config.PlayerConfig{AutoPlayNext: &off})
	r.startSession(t)
	r.player.Start()
	assert.False(t, r.player.AutoPlayNext())

	require.NoError(t, r.player.Play(context.Background()))
	r.a.SetPosition(audio.DefaultPreviewLength - 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, seed.ID, r.currentID())
	assert.False(t, r.player.Status().Scheduled)

	r.player.SetAutoPlayNext(true)
	require.Eventually(t, func() bool {
		return r.currentID() != seed.ID
	}, 3*time.Second, 10*time.Millisecond)
}

func TestPlayer_Skip(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	r.startSession(t)
	r.player.Start()

	require.NoError(t, r.player.Play(context.Background()))
	next, _ := r.controller.NextTrack()

	require.NoError(t, r.player.Skip(context.Background()))
	require.Eventually(t, func() bool {
		return track.Contains(r.controller.State().PlayedTracks, next.ID)
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, next.ID, r.currentID())
}

func TestPlayer_SkipDuringTransition(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	r.startSession(t)
	r.player.Start()
	require.NoError(t, r.scheduler.UpdateSettings(crossfade.Settings{
		Crossfade: time.Second,
		Curve:     crossfade.CurveLinear,
		Type:      crossfade.TypeCrossfade,
	}))

	require.NoError(t, r.player.Play(context.Background()))
	next, _ := r.controller.NextTrack()
	require.NoError(t, r.player.Skip(context.Background()))
	require.True(t, r.scheduler.IsTransitioning())

	err := r.player.Skip(context.Background())
	assert.True(t, errors.Is(err, crossfade.ErrTransitioning))
	err = r.player.PlayTrack(context.Background(), seed)
	assert.True(t, errors.Is(err, crossfade.ErrTransitioning))

	r.scheduler.Wait()
	assert.Equal(t, next.ID, r.currentID())
	assert.Equal(t, crossfade.StatePlaying, r.scheduler.State())
}

func TestPlayer_StatusReportsArmedTransition(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	r.startSession(t)
	r.player.Start()
	require.NoError(t, r.player.Play(context.Background()))
	assert.False(t, r.player.Status().Armed)

	next, _ := r.controller.NextTrack()
	require.NoError(t, r.scheduler.ScheduleTransition(context.Background(), next, 0.8))
	assert.True(t, r.player.Status().Armed)

	require.NoError(t, r.player.Pause())
	assert.False(t, r.player.Status().Armed, "pause disarms")
}

func TestPlayer_Controls(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	r.startSession(t)
	r.player.Start()
	require.NoError(t, r.player.Play(context.Background()))

	r.player.SetVolume(0.5)
	assert.InDelta(t, 0.5, r.a.Volume(), 1e-9)
	r.player.SetVolume(3)
	assert.InDelta(t, 1, r.player.Volume(), 1e-9)

	require.NoError(t, r.player.Seek(10*time.Second))
	assert.Equal(t, 10*time.Second, r.player.Status().Position)

	require.NoError(t, r.player.Pause())
	assert.Equal(t, crossfade.StatePaused, r.player.Status().State)
	require.NoError(t, r.player.Play(context.Background()), "play resumes")
	assert.Equal(t, crossfade.StatePlaying, r.scheduler.State())

	require.NoError(t, r.player.Pause())
	require.NoError(t, r.player.Replay())
	assert.Equal(t, time.Duration(0), r.a.Position())
	assert.True(t, r.a.Playing())

	status := r.player.Status()
	require.NotNil(t, status.Track)
	assert.Equal(t, seed.ID, status.Track.ID)
	assert.Equal(t, audio.DefaultPreviewLength, status.Duration)
	assert.True(t, status.AutoPlayNext)

	r.player.Stop()
	assert.Equal(t, crossfade.StateIdle, r.scheduler.State())
}

func TestPlayer_StopsWithSession(t *testing.T) {
	r := newRig(t, config.PlayerConfig{})
	r.startSession(t)
	r.player.Start()
	require.NoError(t, r.player.Play(context.Background()))

	require.NoError(t, r.controller.StopSession())

	require.Eventually(t, func() bool {
		return r.scheduler.State() == crossfade.StateIdle
	}, time.Second, 10*time.Millisecond)
	assert.False(t, r.a.Playing())
}
