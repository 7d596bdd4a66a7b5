package dj

import (
	"time"

	"github.com/osa030/vibebox/internal/domain/mode"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/domain/vibe"
)

// Phase represents the session lifecycle phase.
type Phase int

const (
	PhaseIdle   Phase = iota // No session
	PhaseActive              // Session running, discovery may be in flight
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// Queue is the track list a session was started with. It is replaced
// wholesale when a mode is selected.
type Queue struct {
	ID           string        `json:"id"`
	Tracks       []track.Track `json:"tracks"`
	CurrentIndex int           `json:"currentIndex"`
	Active       bool          `json:"isActive"`
	Profile      vibe.Profile  `json:"vibeProfile"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Head returns the track at the current index.
func (q *Queue) Head() (track.Track, bool) {
	if q == nil || q.CurrentIndex < 0 || q.CurrentIndex >= len(q.Tracks) {
		return track.Track{}, false
	}
	return q.Tracks[q.CurrentIndex], true
}

func (q *Queue) clone() *Queue {
	if q == nil {
		return nil
	}
	c := *q
	c.Tracks = track.Clone(q.Tracks)
	return &c
}

// State is a snapshot of a DJ session. Snapshots share no memory with the
// controller and may be kept or modified by the receiver.
type State struct {
	Active       bool          `json:"isActive"`
	Queue        *Queue        `json:"currentQueue,omitempty"`
	AutoQueue    bool          `json:"autoQueue"`
	NextTracks   []track.Track `json:"nextTracks"`
	PlayedTracks []track.Track `json:"playedTracks"`
	Profile      *vibe.Profile `json:"currentVibeProfile,omitempty"`
	Mode         *mode.Mode    `json:"selectedMode,omitempty"`
}

// Phase returns the lifecycle phase of the snapshot.
func (s State) Phase() Phase {
	if s.Active {
		return PhaseActive
	}
	return PhaseIdle
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Queue = s.Queue.clone()
	c.NextTracks = track.Clone(s.NextTracks)
	c.PlayedTracks = track.Clone(s.PlayedTracks)
	if s.Profile != nil {
		p := *s.Profile
		c.Profile = &p
	}
	if s.Mode != nil {
		m := *s.Mode
		m.Genres = append([]string(nil), s.Mode.Genres...)
		m.SearchQueries = append([]string(nil), s.Mode.SearchQueries...)
		c.Mode = &m
	}
	return c
}

// QueueStatus summarizes the lookahead and history sizes.
type QueueStatus struct {
	NextCount   int           `json:"nextCount"`
	PlayedCount int           `json:"playedCount"`
	Profile     *vibe.Profile `json:"vibeProfile,omitempty"`
}

// snapshot is the persisted subset of State. The lookahead is never
// persisted; it is always rebuilt by discovery.
type snapshot struct {
	IsActive           bool          `json:"isActive"`
	AutoQueue          bool          `json:"autoQueue"`
	CurrentVibeProfile *vibe.Profile `json:"currentVibeProfile"`
	PlayedTracks       []track.Track `json:"playedTracks"`
}
