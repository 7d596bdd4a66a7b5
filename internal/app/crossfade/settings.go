package crossfade

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/osa030/vibebox/internal/infra/config"
)

// Curve shapes a fade.
type Curve string

const (
	CurveLinear      Curve = "linear"
	CurveExponential Curve = "exponential"
	CurveSmooth      Curve = "smooth"
)

// Apply maps progress x in [0,1] to a gain in [0,1].
func (c Curve) Apply(x float64) float64 {
	x = max(0, min(1, x))
	switch c {
	case CurveExponential:
		return math.Pow(x, 2)
	case CurveSmooth:
		return x * x * (3 - 2*x)
	default:
		return x
	}
}

// Type is the kind of transition.
type Type string

const (
	TypeCrossfade Type = "crossfade"
	TypeCut       Type = "cut"
	// TypeBeatmatch is accepted and runs as a crossfade.
	TypeBeatmatch Type = "beatmatch"
)

// Settings control the next transition.
type Settings struct {
	Crossfade time.Duration `json:"crossfadeDuration" validate:"gt=0"`
	Gap       time.Duration `json:"gapDuration" validate:"gte=0"`
	Curve     Curve         `json:"volumeCurve" validate:"oneof=linear exponential smooth"`
	Type      Type          `json:"transitionType" validate:"oneof=crossfade cut beatmatch"`
}

// DefaultSettings returns a 3s smooth crossfade with a half-second gap.
func DefaultSettings() Settings {
	return Settings{
		Crossfade: 3 * time.Second,
		Gap:       500 * time.Millisecond,
		Curve:     CurveSmooth,
		Type:      TypeCrossfade,
	}
}

// SettingsFromConfig converts the configured transition settings.
func SettingsFromConfig(cfg config.CrossfadeConfig) Settings {
	return Settings{
		Crossfade: cfg.Duration(),
		Gap:       cfg.Gap(),
		Curve:     Curve(cfg.Curve),
		Type:      Type(cfg.Type),
	}
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return errors.Wrap(err, "invalid transition settings")
	}
	return nil
}
