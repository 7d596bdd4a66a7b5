package search

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/vibebox/internal/domain/track"
	"github.com/osa030/vibebox/internal/infra/itunes"
)

type ITunesProviderConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	QueryParam string `yaml:"query_param" mapstructure:"query_param" default:"term"`
	Limit      int    `yaml:"limit" mapstructure:"limit" default:"20" validate:"gte=1,lte=200"`
	Country    string `yaml:"country" mapstructure:"country" validate:"omitempty,len=2"`
	Media      string `yaml:"media" mapstructure:"media" default:"music"`
	Entity     string `yaml:"entity" mapstructure:"entity" default:"song"`
	TimeoutSec int    `yaml:"timeout_sec" mapstructure:"timeout_sec" default:"10" validate:"gte=1,lte=60"`
}

// ITunesProvider searches the iTunes Search API or a compatible proxy.
type ITunesProvider struct {
	client Searcher
	config *ITunesProviderConfig
}

// NewITunesProvider creates a new ITunesProvider from provider settings.
func NewITunesProvider(settings map[string]any) (*ITunesProvider, error) {
	var config ITunesProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	zlog.Debug().Msgf("itunes provider config: %+v", config)

	client, err := itunes.New(itunes.Config{
		BaseURL:    config.BaseURL,
		QueryParam: config.QueryParam,
		Limit:      config.Limit,
		Country:    config.Country,
		Media:      config.Media,
		Entity:     config.Entity,
		Timeout:    time.Duration(config.TimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create itunes client")
	}

	return &ITunesProvider{client: client, config: &config}, nil
}

// Search returns tracks matching query.
func (p *ITunesProvider) Search(ctx context.Context, query string) ([]track.Track, error) {
	return p.client.Search(ctx, query)
}

// Name returns the provider name.
func (p *ITunesProvider) Name() string {
	return "itunes"
}
