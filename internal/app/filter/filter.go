// Package filter provides the candidate filter chain used by track discovery.
package filter

import (
	"context"

	"github.com/osa030/vibebox/internal/domain/track"
)

// Origin identifies where a candidate track came from.
type Origin int

const (
	// OriginDiscovery marks candidates found from a seed or the session vibe.
	OriginDiscovery Origin = iota
	// OriginMode marks candidates found from a DJ mode's seed queries.
	OriginMode
	// OriginManual marks tracks added to the queue by a user.
	OriginManual
)

// String returns the string representation of the origin.
func (o Origin) String() string {
	switch o {
	case OriginDiscovery:
		return "discovery"
	case OriginMode:
		return "mode"
	case OriginManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "not_playable", "duplicate_track", "already_played"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for candidate filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this filter should run for tracks of the given origin.
	AppliesTo(origin Origin) bool
	// Check performs the filter check.
	Check(ctx context.Context, t track.Track, p *Pass) Result
}

// Pass carries the state shared by every check of one chain run: the tracks
// the session already owns and the candidates accepted so far.
type Pass struct {
	history  []track.Track
	excluded map[int64]bool
	accepted []track.Track
	seen     map[int64]bool
}

// NewPass creates a pass. History holds tracks already played or queued.
func NewPass(history []track.Track) *Pass {
	return &Pass{
		history:  history,
		excluded: track.IDSet(history),
		seen:     make(map[int64]bool),
	}
}

// Excluded reports whether id belongs to the session history.
func (p *Pass) Excluded(id int64) bool {
	return p.excluded[id]
}

// Seen reports whether a candidate with id was already accepted in this pass.
func (p *Pass) Seen(id int64) bool {
	return p.seen[id]
}

// History returns the tracks the pass was created with.
func (p *Pass) History() []track.Track {
	return p.history
}

// Accepted returns the candidates accepted so far, in order.
func (p *Pass) Accepted() []track.Track {
	return p.accepted
}

func (p *Pass) accept(t track.Track) {
	p.seen[t.ID] = true
	p.accepted = append(p.accepted, t)
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
