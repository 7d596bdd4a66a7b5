package dj

import (
	"context"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/app/analyzer"
	"github.com/osa030/vibebox/internal/app/filter"
	"github.com/osa030/vibebox/internal/app/ranker"
	"github.com/osa030/vibebox/internal/domain/mode"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/domain/vibe"
)

// discoverFromTrack extends the lookahead with tracks matching ref.
func (c *Controller) discoverFromTrack(ctx context.Context, gen uint64, ref track.Track) {
	profile, history, ok := c.discoveryInputs(gen)
	if !ok {
		return
	}

	target := c.ranker.TargetFromTrack(ref)
	var queries []string
	if target.Language.Known() {
		queries = ranker.LanguageQueries(target.Language, target.Genre)
		queries = queries[:min(c.cfg.LanguageQueryLimit, len(queries))]
	}
	candidates := c.collect(ctx, queries, nil)
	candidates = c.supplementByGenre(ctx, candidates, target)

	picks := ranker.Tracks(c.ranker.Rank(ctx, candidates, target, history, filter.OriginDiscovery), c.cfg.SeedAppendCount)
	if len(picks) == 0 {
		picks = c.discoverByVibe(ctx, profile, history, filter.OriginDiscovery, c.cfg.SeedAppendCount)
	}
	if len(picks) == 0 {
		zlog.Warn().Msgf("dj: %v: reference=%q language=%s", ErrNoCandidates, ref.Name, target.Language)
		return
	}

	_ = c.update(func(s *State) error {
		if gen != c.generation || !s.Active {
			return errNoChange
		}
		added := 0
		for _, t := range picks {
			if track.Contains(s.NextTracks, t.ID) || track.Contains(s.PlayedTracks, t.ID) {
				continue
			}
			s.NextTracks = append(s.NextTracks, t)
			added++
		}
		if added == 0 {
			return errNoChange
		}
		zlog.Info().Msgf("dj: lookahead extended: reference=%q added=%d next=%d", ref.Name, added, len(s.NextTracks))
		return nil
	})
}

// discoverForMode replaces the queue and lookahead with tracks for m.
func (c *Controller) discoverForMode(ctx context.Context, gen uint64, m mode.Mode) {
	_, history, ok := c.discoveryInputs(gen)
	if !ok {
		return
	}

	target := ranker.TargetFromMode(m)
	candidates := c.collect(ctx, m.SearchQueries, nil)
	candidates = c.supplementByGenre(ctx, candidates, target)

	ranked := ranker.Tracks(c.ranker.Rank(ctx, candidates, target, history, filter.OriginMode), c.cfg.ModeQueueSize)
	if len(ranked) == 0 {
		ranked = c.discoverByVibe(ctx, m.Vibe, history, filter.OriginMode, c.cfg.ModeQueueSize)
	}
	if len(ranked) == 0 {
		zlog.Warn().Msgf("dj: %v: mode=%s", ErrNoCandidates, m.ID)
		return
	}

	queue := &Queue{
		ID:        "dj-mode-" + uuid.New().String(),
		Tracks:    ranked,
		Active:    true,
		Profile:   m.Vibe,
		CreatedAt: time.Now(),
	}
	lookahead := track.Clone(ranked[1:min(1+c.cfg.ModeLookahead, len(ranked))])

	_ = c.update(func(s *State) error {
		if gen != c.generation || !s.Active {
			return errNoChange
		}
		s.Queue = queue
		s.NextTracks = lookahead
		zlog.Info().Msgf("dj: mode queue built: mode=%s queue_id=%s tracks=%d next=%d",
			m.ID, queue.ID, len(queue.Tracks), len(lookahead))
		return nil
	})
}

// discoverByVibe is the fallback pass: analyzer queries ranked by vibe
// compatibility, at most limit tracks.
func (c *Controller) discoverByVibe(ctx context.Context, profile vibe.Profile, history []track.Track, origin filter.Origin, limit int) []track.Track {
	if profile.IsZero() {
		return nil
	}
	queries := analyzer.SearchQueries(profile)
	zlog.Debug().Msgf("dj: falling back to vibe discovery: queries=%v", queries)

	candidates := c.collect(ctx, queries, nil)
	return ranker.Tracks(c.ranker.RankByVibe(ctx, candidates, profile, history, origin), limit)
}

// supplementByGenre runs the genre tier when the language tier came up short.
func (c *Controller) supplementByGenre(ctx context.Context, candidates []track.Track, target ranker.Target) []track.Track {
	if len(candidates) >= c.cfg.GenreTierThreshold || target.Genre == "" {
		return candidates
	}
	queries := ranker.GenreQueries(target.Genre, target.Country)
	queries = queries[:min(c.cfg.GenreQueryLimit, len(queries))]
	zlog.Debug().Msgf("dj: supplementing with genre queries: found=%d genre=%s", len(candidates), target.Genre)
	return c.collect(ctx, queries, candidates)
}

// collect issues queries in order, appending results to acc until the raw
// candidate target is reached. Failed queries are logged and skipped.
func (c *Controller) collect(ctx context.Context, queries []string, acc []track.Track) []track.Track {
	for _, q := range queries {
		if len(acc) >= c.cfg.RawCandidateTarget || ctx.Err() != nil {
			break
		}
		tracks, err := c.search.Search(ctx, q)
		if err != nil {
			zlog.Warn().Msgf("dj: search failed: query=%q error=%v", q, err)
			continue
		}
		zlog.Debug().Msgf("dj: search completed: query=%q results=%d", q, len(tracks))
		acc = append(acc, tracks...)
	}
	return acc
}

// discoveryInputs returns the session profile and the tracks discovery must
// not return, or false when the pass is stale.
func (c *Controller) discoveryInputs(gen uint64) (vibe.Profile, []track.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if gen != c.generation || !c.state.Active {
		return vibe.Profile{}, nil, false
	}
	var profile vibe.Profile
	if c.state.Profile != nil {
		profile = *c.state.Profile
	}
	history := make([]track.Track, 0, len(c.state.PlayedTracks)+len(c.state.NextTracks))
	history = append(history, c.state.PlayedTracks...)
	history = append(history, c.state.NextTracks...)
	return profile, history, true
}
