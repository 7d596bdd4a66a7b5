package connect

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/vibebox/internal/app/crossfade"
	"github.com/osa030/vibebox/internal/app/player"
)

// PlayerService exposes the host player and its crossfade scheduler.
type PlayerService struct {
	player    *player.Player
	scheduler *crossfade.Scheduler

	closeOnce sync.Once
	done      chan struct{}
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(p *player.Player, scheduler *crossfade.Scheduler) *PlayerService {
	return &PlayerService{
		player:    p,
		scheduler: scheduler,
		done:      make(chan struct{}),
	}
}

// Handler returns the path prefix and handler of the service.
func (s *PlayerService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	return newServiceHandler(PlayerServiceName, map[string]unaryFunc{
		PlayerServicePlayProcedure:            s.Play,
		PlayerServicePlayTrackProcedure:       s.PlayTrack,
		PlayerServicePauseProcedure:           s.Pause,
		PlayerServiceResumeProcedure:          s.Resume,
		PlayerServiceSkipProcedure:            s.Skip,
		PlayerServiceReplayProcedure:          s.Replay,
		PlayerServiceStopProcedure:            s.Stop,
		PlayerServiceSeekProcedure:            s.Seek,
		PlayerServiceSetVolumeProcedure:       s.SetVolume,
		PlayerServiceSetAutoPlayNextProcedure: s.SetAutoPlayNext,
		PlayerServiceGetStatusProcedure:       s.GetStatus,
		PlayerServiceUpdateSettingsProcedure:  s.UpdateSettings,
	}, map[string]streamFunc{
		PlayerServiceWatchEventsProcedure: s.WatchEvents,
	}, opts...)
}

// Close ends open watch streams.
func (s *PlayerService) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// SeekRequest carries a position in seconds.
type SeekRequest struct {
	Position float64 `json:"position"`
}

// VolumeRequest carries a volume in [0,1].
type VolumeRequest struct {
	Volume float64 `json:"volume"`
}

// AutoPlayNextRequest turns automatic advancing on or off.
type AutoPlayNextRequest struct {
	Enabled bool `json:"enabled"`
}

// Play starts or resumes playback.
func (s *PlayerService) Play(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.status(s.player.Play(ctx))
}

// PlayTrack plays a given track now.
func (s *PlayerService) PlayTrack(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in TrackRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return s.status(s.player.PlayTrack(ctx, in.Track))
}

// Pause pauses playback.
func (s *PlayerService) Pause(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.status(s.player.Pause())
}

// Resume resumes playback.
func (s *PlayerService) Resume(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.status(s.player.Resume())
}

// Skip moves on to the next track.
func (s *PlayerService) Skip(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.status(s.player.Skip(ctx))
}

// Replay restarts the current track.
func (s *PlayerService) Replay(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.status(s.player.Replay())
}

// Stop stops playback.
func (s *PlayerService) Stop(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	s.player.Stop()
	return s.status(nil)
}

// Seek moves the current track.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in SeekRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	return s.status(s.player.Seek(seconds(in.Position)))
}

// SetVolume sets the playback volume.
func (s *PlayerService) SetVolume(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in VolumeRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	s.player.SetVolume(in.Volume)
	return s.status(nil)
}

// SetAutoPlayNext turns automatic advancing on or off.
func (s *PlayerService) SetAutoPlayNext(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in AutoPlayNextRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	s.player.SetAutoPlayNext(in.Enabled)
	return s.status(nil)
}

// GetStatus returns the playback status.
func (s *PlayerService) GetStatus(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return s.status(nil)
}

// UpdateSettings replaces the transition settings.
func (s *PlayerService) UpdateSettings(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	in := newSettingsMessage(s.scheduler.Settings())
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := s.scheduler.UpdateSettings(in.settings()); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return s.status(nil)
}

// WatchEvents streams scheduler events.
func (s *PlayerService) WatchEvents(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
	stream *connect.ServerStream[structpb.Struct],
) error {
	ch := make(chan *structpb.Struct, streamBuffer)
	subscriptionID := s.scheduler.Subscribe(func(e crossfade.Event) {
		forward(ch, newEventMessage(e), "player event")
	})
	defer s.scheduler.Unsubscribe(subscriptionID)

	zlog.Debug().Msgf("api: event watcher subscribed: subscription=%s", subscriptionID)
	return pump(ctx, s.done, ch, stream)
}

// status answers with the playback status, or err mapped to an RPC code.
func (s *PlayerService) status(err error) (*connect.Response[structpb.Struct], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return respond(newStatusMessage(s.player.Status()))
}
