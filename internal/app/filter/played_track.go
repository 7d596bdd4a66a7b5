package filter

import (
	"context"

	"github.com/osa030/vibebox/internal/domain/track"
)

// PlayedTrackFilter rejects tracks the session has already played or queued.
type PlayedTrackFilter struct{}

func (f *PlayedTrackFilter) Name() string {
	return "played_track_filter"
}

func (f *PlayedTrackFilter) Description() string {
	return "Rejects tracks already played or waiting in the queue (always enabled)"
}

func (f *PlayedTrackFilter) ReturnCodes() []string {
	return []string{"already_played"}
}

func (f *PlayedTrackFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *PlayedTrackFilter) AppliesTo(origin Origin) bool {
	return origin != OriginManual
}

func (f *PlayedTrackFilter) Check(ctx context.Context, t track.Track, p *Pass) Result {
	if p.Excluded(t.ID) {
		return Reject("already_played")
	}
	return Accept()
}

func init() {
	Register("played_track_filter", func() Filter {
		return &PlayedTrackFilter{}
	})
}
