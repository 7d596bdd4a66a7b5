package connect

import (
	"encoding/json"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/vibebox/internal/app/crossfade"
	"github.com/osa030/vibebox/internal/app/dj"
	"github.com/osa030/vibebox/internal/app/player"
)

// Encode converts v into a Struct through its JSON form, so domain types
// keep their JSON field names on the wire.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode message")
	}
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, errors.Wrap(err, "failed to convert message")
	}
	return msg, nil
}

// Decode fills out from msg. Fields are matched by their json tag and
// numbers are converted to the target type.
func Decode(msg *structpb.Struct, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if msg == nil {
		return nil
	}
	if err := decoder.Decode(msg.AsMap()); err != nil {
		return errors.Wrap(err, "failed to decode message")
	}
	return nil
}

// decodeRequest decodes a request body, reporting failures as
// InvalidArgument.
func decodeRequest(req *connect.Request[structpb.Struct], out any) error {
	if err := Decode(req.Msg, out); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// respond encodes v as a response.
func respond(v any) (*connect.Response[structpb.Struct], error) {
	msg, err := Encode(v)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// toConnectError maps domain errors to RPC codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var code connect.Code
	switch {
	case errors.Is(err, dj.ErrUnknownMode):
		code = connect.CodeNotFound
	case errors.Is(err, dj.ErrTrackNotPlayable),
		errors.Is(err, crossfade.ErrNotPlayable):
		code = connect.CodeInvalidArgument
	case errors.Is(err, player.ErrNothingToPlay),
		errors.Is(err, crossfade.ErrNoTrack),
		errors.Is(err, crossfade.ErrTransitioning):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, dj.ErrClosed),
		errors.Is(err, crossfade.ErrClosed),
		errors.Is(err, player.ErrNotStarted):
		code = connect.CodeUnavailable
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}

// eventMessage is the wire form of a scheduler event.
type eventMessage struct {
	Type      string           `json:"type"`
	State     string           `json:"state"`
	Track     any              `json:"track,omitempty"`
	Preloaded bool             `json:"preloaded,omitempty"`
	Error     string           `json:"error,omitempty"`
	Settings  *settingsMessage `json:"settings,omitempty"`
}

func newEventMessage(e crossfade.Event) eventMessage {
	m := eventMessage{
		Type:      e.Type.String(),
		State:     e.State.String(),
		Preloaded: e.Preloaded,
	}
	if e.Settings != nil {
		settings := newSettingsMessage(*e.Settings)
		m.Settings = &settings
	}
	if e.Track != nil {
		m.Track = e.Track
	}
	if e.Err != nil {
		m.Error = e.Err.Error()
	}
	return m
}

// statusMessage is the wire form of the player status.
type statusMessage struct {
	State        string          `json:"state"`
	Track        any             `json:"track,omitempty"`
	Position     float64         `json:"position"`
	Duration     float64         `json:"duration"`
	Volume       float64         `json:"volume"`
	AutoPlayNext bool            `json:"autoPlayNext"`
	Scheduled    bool            `json:"scheduled"`
	Armed        bool            `json:"transitionArmed"`
	Settings     settingsMessage `json:"settings"`
}

func newStatusMessage(s player.Status) statusMessage {
	m := statusMessage{
		State:        s.State.String(),
		Position:     s.Position.Seconds(),
		Duration:     s.Duration.Seconds(),
		Volume:       s.Volume,
		AutoPlayNext: s.AutoPlayNext,
		Scheduled:    s.Scheduled,
		Armed:        s.Armed,
		Settings:     newSettingsMessage(s.Settings),
	}
	if s.Track != nil {
		m.Track = s.Track
	}
	return m
}

// settingsMessage carries transition settings with durations in seconds.
type settingsMessage struct {
	CrossfadeDuration float64 `json:"crossfadeDuration"`
	GapDuration       float64 `json:"gapDuration"`
	VolumeCurve       string  `json:"volumeCurve"`
	TransitionType    string  `json:"transitionType"`
}

func newSettingsMessage(s crossfade.Settings) settingsMessage {
	return settingsMessage{
		CrossfadeDuration: s.Crossfade.Seconds(),
		GapDuration:       s.Gap.Seconds(),
		VolumeCurve:       string(s.Curve),
		TransitionType:    string(s.Type),
	}
}

func (m settingsMessage) settings() crossfade.Settings {
	return crossfade.Settings{
		Crossfade: seconds(m.CrossfadeDuration),
		Gap:       seconds(m.GapDuration),
		Curve:     crossfade.Curve(m.VolumeCurve),
		Type:      crossfade.Type(m.TransitionType),
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
