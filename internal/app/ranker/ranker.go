// Package ranker screens and scores discovery candidates against a target.
package ranker

import (
	"context"
	"sort"

	"github.com/osa030/vibebox/internal/app/analyzer"
	"github.com/osa030/vibebox/internal/app/filter"
	"github.com/osa030/vibebox/internal/domain/mode"
	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/domain/vibe"
)

// Score weights.
const (
	baseScore = 0.1

	languageExact      = 0.6
	languageCompatible = 0.3
	languageMismatch   = -0.5

	genreExact    = 0.25
	genreSimilar  = 0.125
	genreMismatch = -0.1

	energyMatch   = 0.1
	durationMatch = 0.05

	durationTolerance = 0.10
)

// Vibe fallback boosts, added to the analyzer's compatibility.
const (
	industrySame       = 0.4
	industryCompatible = 0.2
	industryMismatch   = -0.5
	vibeLanguageSame   = 0.3
	vibeLanguageDiffer = -0.4
	vibeGenreSame      = 0.2
)

// Target is what discovery is looking for.
type Target struct {
	Language      vibe.Language
	Genre         string
	SimilarGenres []string
	Energy        vibe.Energy
	Country       string
	// DurationMs is the reference length; 0 disables the duration bonus.
	DurationMs int64
}

// Scored is a ranked candidate.
type Scored struct {
	Track   track.Track
	Score   float64
	Profile vibe.Profile
}

// Ranker screens candidates with a filter chain and orders them by score.
type Ranker struct {
	analyzer *analyzer.Analyzer
	chain    *filter.Chain
}

// New creates a ranker. A nil chain is replaced by filter.NewDefaultChain.
func New(a *analyzer.Analyzer, chain *filter.Chain) *Ranker {
	if chain == nil {
		chain = filter.NewDefaultChain()
	}
	return &Ranker{analyzer: a, chain: chain}
}

// TargetFromTrack derives a target from a reference track.
func (r *Ranker) TargetFromTrack(ref track.Track) Target {
	p := r.analyzer.Classify(ref)
	return Target{
		Language:      p.Language,
		Genre:         ref.Genre,
		SimilarGenres: similarGenres[ref.Genre],
		Energy:        p.Energy,
		Country:       ref.Country,
		DurationMs:    ref.DurationMs,
	}
}

// TargetFromMode derives a target from a DJ mode.
func TargetFromMode(m mode.Mode) Target {
	genre := m.Vibe.PrimaryGenre
	if genre == "" && len(m.Genres) > 0 {
		genre = m.Genres[0]
	}
	return Target{
		Language:      m.Language,
		Genre:         genre,
		SimilarGenres: m.Genres,
		Energy:        m.Energy,
	}
}

// Rank screens candidates against history and returns the survivors ordered
// by descending score. Equal scores keep their candidate order.
func (r *Ranker) Rank(ctx context.Context, candidates []track.Track, target Target, history []track.Track, origin filter.Origin) []Scored {
	accepted := r.chain.Apply(ctx, candidates, filter.NewPass(history), origin)

	ranked := make([]Scored, 0, len(accepted))
	for _, t := range accepted {
		ranked = append(ranked, r.Score(t, target))
	}
	sortByScore(ranked)
	return ranked
}

// Screen runs the filter chain over candidates without scoring them.
func (r *Ranker) Screen(ctx context.Context, candidates []track.Track, history []track.Track, origin filter.Origin) []track.Track {
	return r.chain.Apply(ctx, candidates, filter.NewPass(history), origin)
}

// Score scores a single candidate against target. Components are summed,
// then clamped to [0,1].
func (r *Ranker) Score(t track.Track, target Target) Scored {
	p := r.analyzer.Classify(t)
	score := baseScore

	switch {
	case p.Language == target.Language:
		score += languageExact
	case languageCompatibleWith(target.Language, p.Language):
		score += languageCompatible
	case p.Language.Known() && target.Language.Known():
		score += languageMismatch
	}

	if (target.Genre != "" || len(target.SimilarGenres) > 0) && t.Genre != "" {
		switch {
		case t.Genre == target.Genre:
			score += genreExact
		case contains(target.SimilarGenres, t.Genre):
			score += genreSimilar
		default:
			score += genreMismatch
		}
	}

	if target.Energy != "" && p.Energy == target.Energy {
		score += energyMatch
	}

	if target.DurationMs > 0 && t.DurationMs > 0 {
		lo := float64(target.DurationMs) * (1 - durationTolerance)
		hi := float64(target.DurationMs) * (1 + durationTolerance)
		if d := float64(t.DurationMs); d >= lo && d <= hi {
			score += durationMatch
		}
	}

	return Scored{Track: t, Score: clamp(score), Profile: p}
}

// RankByVibe is the fallback ranking used when language and genre discovery
// find nothing: analyzer compatibility with the session vibe plus industry,
// language and genre boosts.
func (r *Ranker) RankByVibe(ctx context.Context, candidates []track.Track, target vibe.Profile, history []track.Track, origin filter.Origin) []Scored {
	accepted := r.chain.Apply(ctx, candidates, filter.NewPass(history), origin)

	ranked := make([]Scored, 0, len(accepted))
	for _, t := range accepted {
		p := r.analyzer.Classify(t)
		score := analyzer.Compatibility(target, p) + industryBoost(target.FilmIndustry, p.FilmIndustry) +
			languageBoost(target.Language, p.Language)
		if target.PrimaryGenre != "" && target.PrimaryGenre == p.PrimaryGenre {
			score += vibeGenreSame
		}
		ranked = append(ranked, Scored{Track: t, Score: clamp(score), Profile: p})
	}
	sortByScore(ranked)
	return ranked
}

// Tracks returns the tracks of the first n entries of ranked.
func Tracks(ranked []Scored, n int) []track.Track {
	n = max(0, min(n, len(ranked)))
	out := make([]track.Track, 0, n)
	for _, s := range ranked[:n] {
		out = append(out, s.Track)
	}
	return out
}

func industryBoost(target, got vibe.Industry) float64 {
	switch {
	case target == "" || got == "":
		return 0
	case target == got:
		return industrySame
	case !target.Known() || !got.Known():
		return 0
	case analyzer.IndustriesCompatible(target, got):
		return industryCompatible
	default:
		return industryMismatch
	}
}

func languageBoost(target, got vibe.Language) float64 {
	switch {
	case target == "" || got == "":
		return 0
	case target == got:
		return vibeLanguageSame
	case target.Known() && got.Known():
		return vibeLanguageDiffer
	default:
		return 0
	}
}

func languageCompatibleWith(target, got vibe.Language) bool {
	for _, l := range compatibleLanguages[target] {
		if l == got {
			return true
		}
	}
	return false
}

func sortByScore(ranked []Scored) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
