package connect

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/vibebox/internal/app/dj"
	"github.com/osa030/vibebox/internal/app/search"
	"github.com/osa030/vibebox/internal/domain/mode"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/domain/vibe"
)

// DJService exposes the DJ session controller.
type DJService struct {
	dj *dj.Controller
	// resolver turns references in AddToQueue into tracks; nil disables them.
	resolver search.Resolver

	closeOnce sync.Once
	done      chan struct{}
}

// NewDJService creates a new DJService. resolver may be nil.
func NewDJService(controller *dj.Controller, resolver search.Resolver) *DJService {
	return &DJService{
		dj:       controller,
		resolver: resolver,
		done:     make(chan struct{}),
	}
}

// Handler returns the path prefix and handler of the service.
func (s *DJService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	return newServiceHandler(DJServiceName, map[string]unaryFunc{
		DJServiceStartSessionProcedure:         s.StartSession,
		DJServiceStartSessionWithModeProcedure: s.StartSessionWithMode,
		DJServiceStopSessionProcedure:          s.StopSession,
		DJServiceSetModeProcedure:              s.SetMode,
		DJServiceNextTrackProcedure:            s.NextTrack,
		DJServiceMarkPlayedProcedure:           s.MarkPlayed,
		DJServiceAddToQueueProcedure:           s.AddToQueue,
		DJServiceRemoveFromQueueProcedure:      s.RemoveFromQueue,
		DJServiceToggleAutoQueueProcedure:      s.ToggleAutoQueue,
		DJServiceClearHistoryProcedure:         s.ClearHistory,
		DJServiceGetQueueStatusProcedure:       s.GetQueueStatus,
		DJServiceGetStateProcedure:             s.GetState,
		DJServiceGetHistoryProcedure:           s.GetHistory,
		DJServiceListModesProcedure:            s.ListModes,
	}, map[string]streamFunc{
		DJServiceWatchStateProcedure: s.WatchState,
	}, opts...)
}

// Close ends open watch streams.
func (s *DJService) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// TrackRequest carries a track.
type TrackRequest struct {
	Track track.Track `json:"track"`
}

// AddToQueueRequest carries a track, or a provider reference such as a
// Spotify URL that is resolved to one. Ref wins when both are set.
type AddToQueueRequest struct {
	Track track.Track `json:"track"`
	Ref   string      `json:"ref,omitempty"`
}

// HistoryResponse lists what was played, what comes next and the mode.
type HistoryResponse struct {
	Played []track.Track `json:"played"`
	Next   []track.Track `json:"next"`
	Mode   *mode.Mode    `json:"mode,omitempty"`
}

// ModeRequest names a DJ mode.
type ModeRequest struct {
	ModeID string `json:"modeId"`
}

// TrackIDRequest names a track by id.
type TrackIDRequest struct {
	TrackID int64 `json:"trackId"`
}

// ListModesRequest optionally restricts modes to a language.
type ListModesRequest struct {
	Language string `json:"language,omitempty"`
}

// NextTrackResponse holds the lookahead head, if any.
type NextTrackResponse struct {
	Track *track.Track `json:"track,omitempty"`
}

// AutoQueueResponse holds the auto-queue flag.
type AutoQueueResponse struct {
	AutoQueue bool `json:"autoQueue"`
}

// ListModesResponse holds DJ modes.
type ListModesResponse struct {
	Modes []mode.Mode `json:"modes"`
}

// StateMessage is sent on the WatchState stream. The first message of a
// stream has type "initial".
type StateMessage struct {
	Type       string   `json:"type"`
	SequenceNo uint64   `json:"sequenceNo"`
	State      dj.State `json:"state"`
}

// StartSession starts a session seeded with a track.
func (s *DJService) StartSession(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in TrackRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := s.dj.StartSession(in.Track); err != nil {
		return nil, toConnectError(err)
	}
	return respond(s.dj.State())
}

// StartSessionWithMode starts a session from a DJ mode.
func (s *DJService) StartSessionWithMode(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in ModeRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := s.dj.StartSessionWithMode(in.ModeID); err != nil {
		return nil, toConnectError(err)
	}
	return respond(s.dj.State())
}

// StopSession stops the session.
func (s *DJService) StopSession(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	if err := s.dj.StopSession(); err != nil {
		return nil, toConnectError(err)
	}
	return respond(s.dj.State())
}

// SetMode selects a DJ mode.
func (s *DJService) SetMode(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in ModeRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := s.dj.SetMode(in.ModeID); err != nil {
		return nil, toConnectError(err)
	}
	return respond(s.dj.State())
}

// NextTrack returns the lookahead head.
func (s *DJService) NextTrack(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var out NextTrackResponse
	if t, ok := s.dj.NextTrack(); ok {
		out.Track = &t
	}
	return respond(out)
}

// MarkPlayed records a played track.
func (s *DJService) MarkPlayed(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in TrackRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	s.dj.MarkPlayed(in.Track)
	return respond(s.dj.QueueStatus())
}

// AddToQueue puts a track at the front of the lookahead.
func (s *DJService) AddToQueue(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in AddToQueueRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	t := in.Track
	if in.Ref != "" {
		resolved, err := s.resolve(ctx, in.Ref)
		if err != nil {
			return nil, err
		}
		t = *resolved
	}
	if err := s.dj.AddToQueue(ctx, t); err != nil {
		return nil, toConnectError(err)
	}
	return respond(s.dj.QueueStatus())
}

func (s *DJService) resolve(ctx context.Context, ref string) (*track.Track, error) {
	if s.resolver == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, search.ErrNoResolver)
	}
	t, err := s.resolver.GetTrack(ctx, ref)
	if err != nil {
		zlog.Warn().Msgf("api: failed to resolve track: ref=%q error=%v", ref, err)
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	zlog.Debug().Msgf("api: resolved track: ref=%q track_id=%d name=%q", ref, t.ID, t.Name)
	return t, nil
}

// RemoveFromQueue removes a track from the lookahead.
func (s *DJService) RemoveFromQueue(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in TrackIDRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}
	if err := s.dj.RemoveFromQueue(in.TrackID); err != nil {
		return nil, toConnectError(err)
	}
	return respond(s.dj.QueueStatus())
}

// ToggleAutoQueue flips the auto-queue flag.
func (s *DJService) ToggleAutoQueue(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return respond(AutoQueueResponse{AutoQueue: s.dj.ToggleAutoQueue()})
}

// ClearHistory forgets played tracks.
func (s *DJService) ClearHistory(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	if err := s.dj.ClearHistory(); err != nil {
		return nil, toConnectError(err)
	}
	return respond(empty{})
}

// GetQueueStatus returns the queue status.
func (s *DJService) GetQueueStatus(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return respond(s.dj.QueueStatus())
}

// GetState returns a state snapshot.
func (s *DJService) GetState(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	return respond(s.dj.State())
}

// GetHistory returns the played tracks, the head of the lookahead and the
// selected mode.
func (s *DJService) GetHistory(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	out := HistoryResponse{
		Played: s.dj.PlayedTracks(),
		Next:   s.dj.NextTracks(),
	}
	if m, ok := s.dj.CurrentMode(); ok {
		out.Mode = &m
	}
	return respond(out)
}

// ListModes lists the DJ modes.
func (s *DJService) ListModes(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var in ListModesRequest
	if err := decodeRequest(req, &in); err != nil {
		return nil, err
	}

	modes := s.dj.Modes()
	if in.Language != "" {
		modes = append([]mode.Mode{}, s.dj.ModesByLanguage(vibe.Language(in.Language))...)
	}
	return respond(ListModesResponse{Modes: modes})
}

// WatchState streams state snapshots, starting with the current one.
func (s *DJService) WatchState(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
	stream *connect.ServerStream[structpb.Struct],
) error {
	ch := make(chan *structpb.Struct, streamBuffer)
	var seq uint64
	var mu sync.Mutex
	next := func() uint64 {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return seq
	}

	initial, err := Encode(StateMessage{Type: "initial", SequenceNo: next(), State: s.dj.State()})
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}

	// Updates queue up in ch until the initial snapshot is out.
	subscriptionID := s.dj.Subscribe(func(st dj.State) {
		forward(ch, StateMessage{Type: "update", SequenceNo: next(), State: st}, "dj state")
	})
	defer s.dj.Unsubscribe(subscriptionID)

	if err := stream.Send(initial); err != nil {
		return err
	}

	zlog.Debug().Msgf("api: state watcher subscribed: subscription=%s", subscriptionID)
	return pump(ctx, s.done, ch, stream)
}
