package dj

import (
	"context"
	"encoding/json"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/domain/track"
)

const storeTimeout = 5 * time.Second

// persist saves the reduced snapshot of s. Failures are logged only.
func (c *Controller) persist(s State) {
	data, err := json.Marshal(snapshot{
		IsActive:           s.Active,
		AutoQueue:          s.AutoQueue,
		CurrentVibeProfile: s.Profile,
		PlayedTracks:       s.PlayedTracks,
	})
	if err != nil {
		zlog.Warn().Msgf("dj: failed to encode state: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := c.store.Save(ctx, c.cfg.StateKey, data); err != nil {
		zlog.Warn().Msgf("dj: failed to save state: key=%s error=%v", c.cfg.StateKey, err)
	}
}

// restore loads the persisted snapshot. Absent or unreadable state yields
// an idle session.
func (c *Controller) restore() State {
	s := State{
		NextTracks:   []track.Track{},
		PlayedTracks: []track.Track{},
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	data, ok, err := c.store.Load(ctx, c.cfg.StateKey)
	if err != nil {
		zlog.Warn().Msgf("dj: failed to load state: key=%s error=%v", c.cfg.StateKey, err)
		return s
	}
	if !ok {
		return s
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		zlog.Warn().Msgf("dj: ignoring corrupt state: key=%s error=%v", c.cfg.StateKey, err)
		return s
	}

	s.Active = snap.IsActive
	s.AutoQueue = snap.AutoQueue
	s.Profile = snap.CurrentVibeProfile
	if snap.PlayedTracks != nil {
		s.PlayedTracks = snap.PlayedTracks
	}
	zlog.Info().Msgf("dj: state restored: active=%t auto_queue=%t played=%d", s.Active, s.AutoQueue, len(s.PlayedTracks))
	return s
}
