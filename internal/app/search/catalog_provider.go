package search

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/vibebox/internal/domain/track"
)

type CatalogProviderConfig struct {
	Path  string `yaml:"path" mapstructure:"path" validate:"required"`
	Limit int    `yaml:"limit" mapstructure:"limit" default:"50" validate:"gte=1"`
}

// catalogEntry is a track in a catalog file plus optional search tags.
type catalogEntry struct {
	track.Track `yaml:",inline"`
	Tags        []string `yaml:"tags"`
}

type catalogFile struct {
	Tracks []catalogEntry `yaml:"tracks"`
}

// genericTerms never decide a match on their own.
var genericTerms = map[string]bool{
	"song": true, "songs": true, "music": true, "hits": true, "the": true,
}

// CatalogProvider serves tracks from a local YAML file. It backs offline
// sessions and demos, and matches queries by keyword.
type CatalogProvider struct {
	entries []catalogEntry
	corpus  []string
	config  *CatalogProviderConfig
}

// NewCatalogProvider creates a new CatalogProvider from provider settings.
func NewCatalogProvider(settings map[string]any) (*CatalogProvider, error) {
	var config CatalogProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(config.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog: %s", config.Path)
	}

	p, err := ParseCatalog(data, config.Limit)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid catalog: %s", config.Path)
	}
	p.config.Path = config.Path

	zlog.Info().Msgf("catalog provider loaded: path=%s tracks=%d", config.Path, len(p.entries))
	return p, nil
}

// ParseCatalog builds a CatalogProvider from YAML data.
func ParseCatalog(data []byte, limit int) (*CatalogProvider, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog")
	}
	if len(file.Tracks) == 0 {
		return nil, errors.New("catalog has no tracks")
	}

	corpus := make([]string, len(file.Tracks))
	for i, e := range file.Tracks {
		if e.ID == 0 {
			return nil, errors.Newf("catalog track %d has no trackId", i)
		}
		parts := append([]string{e.Name, e.ArtistName, e.Album, e.Genre}, e.Tags...)
		corpus[i] = strings.ToLower(strings.Join(parts, " "))
	}

	if limit <= 0 {
		limit = 50
	}
	return &CatalogProvider{
		entries: file.Tracks,
		corpus:  corpus,
		config:  &CatalogProviderConfig{Limit: limit},
	}, nil
}

// Search returns catalog tracks sharing at least one significant term with
// query, in catalog order.
func (p *CatalogProvider) Search(ctx context.Context, query string) ([]track.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var terms []string
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if !genericTerms[term] {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return []track.Track{}, nil
	}

	results := make([]track.Track, 0)
	for i, e := range p.entries {
		if matchesAny(p.corpus[i], terms) {
			results = append(results, e.Track)
			if len(results) == p.config.Limit {
				break
			}
		}
	}
	return results, nil
}

// Name returns the provider name.
func (p *CatalogProvider) Name() string {
	return "catalog"
}

func matchesAny(corpus string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(corpus, term) {
			return true
		}
	}
	return false
}
