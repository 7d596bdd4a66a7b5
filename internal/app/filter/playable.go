package filter

import (
	"context"

	"github.com/osa030/vibebox/internal/domain/track"
)

// PlayableFilter rejects tracks without a preview URL.
type PlayableFilter struct{}

func (f *PlayableFilter) Name() string {
	return "playable_filter"
}

func (f *PlayableFilter) Description() string {
	return "Rejects tracks that have no playable preview (always enabled)"
}

func (f *PlayableFilter) ReturnCodes() []string {
	return []string{"not_playable"}
}

func (f *PlayableFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *PlayableFilter) AppliesTo(origin Origin) bool {
	return true
}

func (f *PlayableFilter) Check(ctx context.Context, t track.Track, p *Pass) Result {
	if !t.Playable() {
		return Reject("not_playable")
	}
	return Accept()
}

func init() {
	Register("playable_filter", func() Filter {
		return &PlayableFilter{}
	})
}
