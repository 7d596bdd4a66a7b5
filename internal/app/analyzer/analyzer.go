// Package analyzer derives vibe profiles from track metadata, scores how well
// two profiles fit together, and turns a profile into discovery queries.
package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/domain/vibe"
)

const maxSearchQueries = 5

// Analyzer classifies tracks against ordered language and film-industry banks.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	languages  []rule[vibe.Language]
	industries []rule[vibe.Industry]
}

// New returns an Analyzer backed by the builtin pattern tables.
func New() *Analyzer {
	a, err := NewFromPatterns(builtinPatterns)
	if err != nil {
		panic(err)
	}
	return a
}

// NewFromPatterns returns an Analyzer backed by a YAML pattern document.
func NewFromPatterns(data []byte) (*Analyzer, error) {
	languages, industries, err := parsePatterns(data)
	if err != nil {
		return nil, err
	}
	return &Analyzer{languages: languages, industries: industries}, nil
}

// Classify maps a track to its vibe profile.
func (a *Analyzer) Classify(t track.Track) vibe.Profile {
	title := strings.ToLower(t.Name)
	artist := strings.ToLower(t.ArtistName)
	corpus := strings.Join([]string{title, artist, strings.ToLower(t.Album)}, " ")

	p := vibe.Profile{
		Language:     a.DetectLanguage(t),
		FilmIndustry: a.DetectIndustry(t),
		PrimaryGenre: t.Genre,
	}

	if traits, ok := genreTraitTable[t.Genre]; ok {
		p.Genre = t.Genre
		p.Energy = traits.energy
		p.Mood = traits.mood
		p.Tempo = traits.tempo
	} else {
		p.Genre = t.Genre
		if p.Genre == "" {
			p.Genre = "Unknown"
		}
		p.Energy = vibe.EnergyMedium
		p.Mood = vibe.MoodHappy
		p.Tempo = vibe.TempoMedium
	}

	high := containsAny(corpus, highEnergyKeywords)
	low := containsAny(corpus, lowEnergyKeywords)
	switch {
	case high && !low:
		p.Energy = vibe.EnergyHigh
		p.Tempo = vibe.TempoFast
	case low && !high:
		p.Energy = vibe.EnergyLow
		p.Tempo = vibe.TempoSlow
	}

	switch {
	case containsAny(corpus, partyKeywords):
		p.Mood = vibe.MoodParty
		p.Energy = vibe.EnergyHigh
	case containsAny(corpus, sadKeywords):
		p.Mood = vibe.MoodSad
		p.Energy = vibe.EnergyLow
	case containsAny(corpus, chillKeywords):
		p.Mood = vibe.MoodChill
	case containsAny(corpus, happyKeywords):
		p.Mood = vibe.MoodHappy
	}

	return p
}

// DetectLanguage returns the first language whose patterns match the track,
// then falls back to the genre mapping, then to other.
func (a *Analyzer) DetectLanguage(t track.Track) vibe.Language {
	title := strings.ToLower(t.Name)
	artist := strings.ToLower(t.ArtistName)
	corpus := strings.Join([]string{title, artist, strings.ToLower(t.Album)}, " ")

	if lang, ok := firstMatch(a.languages, corpus, artist, title); ok {
		return lang
	}
	if lang, ok := genreLanguage[t.Genre]; ok {
		return lang
	}
	return vibe.LanguageOther
}

// DetectIndustry returns the first film industry whose patterns match the track,
// then falls back to the genre mapping, then to other.
func (a *Analyzer) DetectIndustry(t track.Track) vibe.Industry {
	title := strings.ToLower(t.Name)
	artist := strings.ToLower(t.ArtistName)
	corpus := strings.Join([]string{title, artist, strings.ToLower(t.Album), strings.ToLower(t.Genre)}, " ")

	if ind, ok := firstMatch(a.industries, corpus, artist, title); ok {
		return ind
	}
	if ind, ok := genreIndustry[t.Genre]; ok {
		return ind
	}
	return vibe.IndustryOther
}

// Compatibility scores how well b fits a in [0,1]. Only attributes set on
// both sides contribute; the result is normalized by the weight applied.
func Compatibility(a, b vibe.Profile) float64 {
	var score, weight float64

	if a.FilmIndustry != "" && b.FilmIndustry != "" {
		weight += 6
		switch {
		case a.FilmIndustry == b.FilmIndustry:
			score += 6
		case contains(compatibleIndustries[a.FilmIndustry], b.FilmIndustry):
			score += 3
		case a.FilmIndustry.Known() && b.FilmIndustry.Known():
			score += 0.5
		default:
			score += 2
		}
	}

	if a.Language != "" && b.Language != "" {
		weight += 4
		switch {
		case a.Language == b.Language:
			score += 4
		case a.Language.Known() && b.Language.Known():
			score += 0.5
		default:
			score += 2
		}
	}

	if a.PrimaryGenre != "" && b.PrimaryGenre != "" {
		weight += 3
		switch {
		case a.PrimaryGenre == b.PrimaryGenre:
			score += 3
		case sameFamily(a.PrimaryGenre, b.PrimaryGenre):
			score += 2
		default:
			score += 0.5
		}
	}

	if a.Genre != "" && b.Genre != "" {
		weight += 2
		switch {
		case a.Genre == b.Genre:
			score += 2
		case contains(compatibleGenres[a.Genre], b.Genre):
			score += 1
		}
	}

	if a.Energy != "" && b.Energy != "" {
		weight += 2
		switch {
		case a.Energy == b.Energy:
			score += 2
		case a.Energy == vibe.EnergyMedium || b.Energy == vibe.EnergyMedium:
			score += 1
		}
	}

	if a.Mood != "" && b.Mood != "" {
		weight += 2
		switch {
		case a.Mood == b.Mood:
			score += 2
		case contains(compatibleMoods[a.Mood], b.Mood):
			score += 1
		}
	}

	if a.Tempo != "" && b.Tempo != "" {
		weight += 1
		switch {
		case a.Tempo == b.Tempo:
			score += 1
		case a.Tempo == vibe.TempoMedium || b.Tempo == vibe.TempoMedium:
			score += 0.5
		}
	}

	if weight == 0 {
		return 0
	}
	return score / weight
}

// SearchQueries returns up to five distinct discovery queries for p, most
// specific first. Callers issue them in order.
func SearchQueries(p vibe.Profile) []string {
	var queries []string

	if terms, ok := languageSearchTerms[p.Language]; ok {
		if p.PrimaryGenre != "" {
			for _, term := range terms {
				queries = append(queries, term+" "+p.PrimaryGenre)
			}
		}
		if p.Mood != "" {
			for _, term := range terms {
				queries = append(queries, fmt.Sprintf("%s %s", term, p.Mood))
			}
		}
		queries = append(queries, terms[:min(3, len(terms))]...)
	}

	if p.PrimaryGenre != "" {
		queries = append(queries, p.PrimaryGenre, p.PrimaryGenre+" music")
	}

	if p.Mood != "" && p.Energy != "" {
		queries = append(queries, moodEnergyQueries[fmt.Sprintf("%s-%s", p.Mood, p.Energy)]...)
	}

	queries = append(queries, tempoQueries[p.Tempo]...)
	queries = append(queries, genreQueries[p.Genre]...)

	return firstUnique(queries, maxSearchQueries)
}

// Blend folds next into current. Language, industry and genres follow the
// newer profile when it sets them; energy and tempo drift 30% toward it; mood
// is kept while it stays compatible.
func Blend(current, next vibe.Profile) vibe.Profile {
	return vibe.Profile{
		Genre:        pick(next.Genre, current.Genre),
		Energy:       blendEnergy(current.Energy, next.Energy),
		Mood:         blendMood(current.Mood, next.Mood),
		Tempo:        blendTempo(current.Tempo, next.Tempo),
		Language:     pick(next.Language, current.Language),
		PrimaryGenre: pick(next.PrimaryGenre, current.PrimaryGenre),
		FilmIndustry: pick(next.FilmIndustry, current.FilmIndustry),
	}
}

func blendEnergy(current, next vibe.Energy) vibe.Energy {
	if current == "" || next == "" {
		return pick(current, next)
	}
	c, n := current.Level(), next.Level()
	if c == 0 || n == 0 {
		return current
	}
	return vibe.EnergyFromLevel(weightedLevel(c, n))
}

func blendTempo(current, next vibe.Tempo) vibe.Tempo {
	if current == "" || next == "" {
		return pick(current, next)
	}
	c, n := current.Level(), next.Level()
	if c == 0 || n == 0 {
		return current
	}
	return vibe.TempoFromLevel(weightedLevel(c, n))
}

func blendMood(current, next vibe.Mood) vibe.Mood {
	if current == "" || next == "" {
		return pick(current, next)
	}
	if contains(compatibleMoods[current], next) {
		return current
	}
	return next
}

// IndustriesCompatible reports whether to belongs to the industry family of from.
// The relation is directional.
func IndustriesCompatible(from, to vibe.Industry) bool {
	return contains(compatibleIndustries[from], to)
}

func weightedLevel(current, next int) int {
	return int(math.Round(float64(current)*0.7 + float64(next)*0.3))
}

func pick[T ~string](preferred, fallback T) T {
	if preferred != "" {
		return preferred
	}
	return fallback
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func sameFamily(a, b string) bool {
	for _, family := range genreFamilies {
		if contains(family, a) {
			return contains(family, b)
		}
	}
	return false
}

func firstUnique(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, limit)
	for _, q := range in {
		if seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out
}
