// Package connect provides the Connect RPC services of the server and a
// client for them. Messages are google.protobuf.Struct values carrying the
// JSON form of the domain types.
package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service names.
const (
	DJServiceName     = "vibebox.v1.DJService"
	PlayerServiceName = "vibebox.v1.PlayerService"
)

// DJService procedures.
const (
	DJServiceStartSessionProcedure         = "/vibebox.v1.DJService/StartSession"
	DJServiceStartSessionWithModeProcedure = "/vibebox.v1.DJService/StartSessionWithMode"
	DJServiceStopSessionProcedure          = "/vibebox.v1.DJService/StopSession"
	DJServiceSetModeProcedure              = "/vibebox.v1.DJService/SetMode"
	DJServiceNextTrackProcedure            = "/vibebox.v1.DJService/NextTrack"
	DJServiceMarkPlayedProcedure           = "/vibebox.v1.DJService/MarkPlayed"
	DJServiceAddToQueueProcedure           = "/vibebox.v1.DJService/AddToQueue"
	DJServiceRemoveFromQueueProcedure      = "/vibebox.v1.DJService/RemoveFromQueue"
	DJServiceToggleAutoQueueProcedure      = "/vibebox.v1.DJService/ToggleAutoQueue"
	DJServiceClearHistoryProcedure         = "/vibebox.v1.DJService/ClearHistory"
	DJServiceGetQueueStatusProcedure       = "/vibebox.v1.DJService/GetQueueStatus"
	DJServiceGetStateProcedure             = "/vibebox.v1.DJService/GetState"
	DJServiceGetHistoryProcedure           = "/vibebox.v1.DJService/GetHistory"
	DJServiceListModesProcedure            = "/vibebox.v1.DJService/ListModes"
	DJServiceWatchStateProcedure           = "/vibebox.v1.DJService/WatchState"
)

// PlayerService procedures.
const (
	PlayerServicePlayProcedure            = "/vibebox.v1.PlayerService/Play"
	PlayerServicePlayTrackProcedure       = "/vibebox.v1.PlayerService/PlayTrack"
	PlayerServicePauseProcedure           = "/vibebox.v1.PlayerService/Pause"
	PlayerServiceResumeProcedure          = "/vibebox.v1.PlayerService/Resume"
	PlayerServiceSkipProcedure            = "/vibebox.v1.PlayerService/Skip"
	PlayerServiceReplayProcedure          = "/vibebox.v1.PlayerService/Replay"
	PlayerServiceStopProcedure            = "/vibebox.v1.PlayerService/Stop"
	PlayerServiceSeekProcedure            = "/vibebox.v1.PlayerService/Seek"
	PlayerServiceSetVolumeProcedure       = "/vibebox.v1.PlayerService/SetVolume"
	PlayerServiceSetAutoPlayNextProcedure = "/vibebox.v1.PlayerService/SetAutoPlayNext"
	PlayerServiceGetStatusProcedure       = "/vibebox.v1.PlayerService/GetStatus"
	PlayerServiceUpdateSettingsProcedure  = "/vibebox.v1.PlayerService/UpdateSettings"
	PlayerServiceWatchEventsProcedure     = "/vibebox.v1.PlayerService/WatchEvents"
)

// readOnlyProcedures are callable without the admin token.
var readOnlyProcedures = map[string]bool{
	DJServiceNextTrackProcedure:      true,
	DJServiceGetQueueStatusProcedure: true,
	DJServiceGetStateProcedure:       true,
	DJServiceGetHistoryProcedure:     true,
	DJServiceListModesProcedure:      true,
	PlayerServiceGetStatusProcedure:  true,
}

// streamBuffer is the number of pending messages a watch stream holds
// before it starts dropping.
const streamBuffer = 32

type (
	unaryFunc  func(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)
	streamFunc func(context.Context, *connect.Request[structpb.Struct], *connect.ServerStream[structpb.Struct]) error
)

// newServiceHandler mounts the procedures of one service and returns the
// path prefix to register it under.
func newServiceHandler(name string, unary map[string]unaryFunc, streams map[string]streamFunc, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	for procedure, fn := range unary {
		mux.Handle(procedure, connect.NewUnaryHandler[structpb.Struct, structpb.Struct](procedure, fn, opts...))
	}
	for procedure, fn := range streams {
		mux.Handle(procedure, connect.NewServerStreamHandler[structpb.Struct, structpb.Struct](procedure, fn, opts...))
	}
	return "/" + name + "/", mux
}

// forward queues msg for a watch stream without blocking the publisher.
func forward(ch chan<- *structpb.Struct, v any, stream string) {
	msg, err := Encode(v)
	if err != nil {
		zlog.Error().Msgf("api: failed to encode %s message: %v", stream, err)
		return
	}
	select {
	case ch <- msg:
	default:
		zlog.Warn().Msgf("api: %s stream is behind, message dropped", stream)
	}
}

// pump sends queued messages until the client goes away or done closes.
func pump(ctx context.Context, done <-chan struct{}, ch <-chan *structpb.Struct, stream *connect.ServerStream[structpb.Struct]) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case msg := <-ch:
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// empty is the body of responses that carry no data.
type empty struct{}
