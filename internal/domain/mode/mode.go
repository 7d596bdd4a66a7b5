// Package mode provides the DJ mode catalog.
package mode

import (
	_ "embed"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/vibebox/internal/domain/vibe"
)

//go:embed modes.yaml
var builtinModes []byte

// Mood is the party theme of a mode. It is broader than vibe.Mood.
type Mood string

const (
	MoodParty     Mood = "party"
	MoodRomantic  Mood = "romantic"
	MoodEnergetic Mood = "energetic"
	MoodChill     Mood = "chill"
	MoodDance     Mood = "dance"
	MoodWedding   Mood = "wedding"
)

// Mode is a preset bundle of target language, allowed genres, seed queries and vibe.
type Mode struct {
	ID            string        `yaml:"id" json:"id" validate:"required"`
	Name          string        `yaml:"name" json:"name" validate:"required"`
	Description   string        `yaml:"description" json:"description"`
	Icon          string        `yaml:"icon" json:"icon"`
	Language      vibe.Language `yaml:"language" json:"language" validate:"required"`
	Genres        []string      `yaml:"genres" json:"genres"`
	SearchQueries []string      `yaml:"search_queries" json:"searchQueries" validate:"required,min=1,dive,required"`
	Mood          Mood          `yaml:"mood" json:"mood" validate:"oneof=party romantic energetic chill dance wedding"`
	Energy        vibe.Energy   `yaml:"energy" json:"energy" validate:"oneof=low medium high"`
	Vibe          vibe.Profile  `yaml:"vibe" json:"vibeProfile"`
}

// AllowsGenre reports whether genre is one of the mode's genres.
func (m Mode) AllowsGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

type catalogFile struct {
	Modes []Mode `yaml:"modes" validate:"required,min=1,dive"`
}

// Catalog is an immutable, ordered set of modes.
type Catalog struct {
	modes []Mode
	byID  map[string]int
}

// Builtin returns the catalog shipped with the binary.
func Builtin() *Catalog {
	c, err := Parse(builtinModes)
	if err != nil {
		panic(errors.Wrap(err, "builtin mode catalog is invalid"))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path yields the builtin catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mode catalog: %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse mode catalog")
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, errors.Wrap(err, "invalid mode catalog")
	}

	c := &Catalog{
		modes: f.Modes,
		byID:  make(map[string]int, len(f.Modes)),
	}
	for i, m := range f.Modes {
		if _, dup := c.byID[m.ID]; dup {
			return nil, errors.Newf("duplicate mode id: %s", m.ID)
		}
		c.byID[m.ID] = i
	}
	return c, nil
}

// Lookup returns the mode with the given id.
func (c *Catalog) Lookup(id string) (Mode, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Mode{}, false
	}
	return c.modes[i], true
}

// ByLanguage returns the modes whose target language is lang, in catalog order.
func (c *Catalog) ByLanguage(lang vibe.Language) []Mode {
	var out []Mode
	for _, m := range c.modes {
		if m.Language == lang {
			out = append(out, m)
		}
	}
	return out
}

// All returns every mode in catalog order.
func (c *Catalog) All() []Mode {
	out := make([]Mode, len(c.modes))
	copy(out, c.modes)
	return out
}
