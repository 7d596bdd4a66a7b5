package analyzer

import (
	_ "embed"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/osa030/vibebox/internal/domain/vibe"
)

//go:embed patterns.yaml
var builtinPatterns []byte

type patternFile struct {
	Languages []struct {
		Name     vibe.Language `yaml:"name"`
		Keywords []string      `yaml:"keywords"`
		Artists  []string      `yaml:"artists"`
		Titles   []string      `yaml:"titles"`
		Script   string        `yaml:"script"`
	} `yaml:"languages"`
	Industries []struct {
		Name     vibe.Industry `yaml:"name"`
		Keywords []string      `yaml:"keywords"`
		Artists  []string      `yaml:"artists"`
		Genre    string        `yaml:"genre"`
	} `yaml:"industries"`
}

// matcher is one row of an ordered detection bank.
// Any single hit is enough for the row to match.
type matcher struct {
	keywords []string       // substrings of the corpus
	artist   *regexp.Regexp // whole words of the artist name
	title    *regexp.Regexp // whole words or script runs of the track name
	corpus   *regexp.Regexp // raw pattern over the corpus
}

func (m matcher) match(corpus, artist, title string) bool {
	if containsAny(corpus, m.keywords) {
		return true
	}
	if m.artist != nil && m.artist.MatchString(artist) {
		return true
	}
	if m.title != nil && m.title.MatchString(title) {
		return true
	}
	return m.corpus != nil && m.corpus.MatchString(corpus)
}

type rule[T ~string] struct {
	category T
	matcher
}

func firstMatch[T ~string](rules []rule[T], corpus, artist, title string) (T, bool) {
	for _, r := range rules {
		if r.match(corpus, artist, title) {
			return r.category, true
		}
	}
	var zero T
	return zero, false
}

func parsePatterns(data []byte) ([]rule[vibe.Language], []rule[vibe.Industry], error) {
	var f patternFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse pattern tables")
	}

	languages := make([]rule[vibe.Language], 0, len(f.Languages))
	for _, l := range f.Languages {
		m := matcher{keywords: lowerAll(l.Keywords)}
		var err error
		if m.artist, err = wordPattern(l.Artists); err != nil {
			return nil, nil, errors.Wrapf(err, "language %s: artists", l.Name)
		}
		if l.Script != "" {
			if m.title, err = regexp.Compile(l.Script); err != nil {
				return nil, nil, errors.Wrapf(err, "language %s: script", l.Name)
			}
		} else if m.title, err = wordPattern(l.Titles); err != nil {
			return nil, nil, errors.Wrapf(err, "language %s: titles", l.Name)
		}
		languages = append(languages, rule[vibe.Language]{category: l.Name, matcher: m})
	}

	industries := make([]rule[vibe.Industry], 0, len(f.Industries))
	for _, i := range f.Industries {
		m := matcher{keywords: lowerAll(i.Keywords)}
		var err error
		if m.artist, err = wordPattern(i.Artists); err != nil {
			return nil, nil, errors.Wrapf(err, "industry %s: artists", i.Name)
		}
		if i.Genre != "" {
			if m.corpus, err = regexp.Compile("(?i)" + i.Genre); err != nil {
				return nil, nil, errors.Wrapf(err, "industry %s: genre", i.Name)
			}
		}
		industries = append(industries, rule[vibe.Industry]{category: i.Name, matcher: m})
	}

	if len(languages) == 0 || len(industries) == 0 {
		return nil, nil, errors.New("pattern tables must define languages and industries")
	}
	return languages, industries, nil
}

// wordPattern builds a case-insensitive whole-word alternation.
func wordPattern(words []string) (*regexp.Regexp, error) {
	if len(words) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
