package vibe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguage_Known(t *testing.T) {
	assert.True(t, LanguagePunjabi.Known())
	assert.False(t, LanguageOther.Known())
	assert.False(t, Language("").Known())
}

func TestIndustry_Known(t *testing.T) {
	assert.True(t, IndustryKollywood.Known())
	assert.False(t, IndustryOther.Known())
	assert.False(t, Industry("").Known())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name   string
		energy Energy
		tempo  Tempo
		level  int
	}{
		{"low", EnergyLow, TempoSlow, 1},
		{"medium", EnergyMedium, TempoMedium, 2},
		{"high", EnergyHigh, TempoFast, 3},
		{"unset", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.level, tt.energy.Level())
			assert.Equal(t, tt.level, tt.tempo.Level())
			if tt.level > 0 {
				assert.Equal(t, tt.energy, EnergyFromLevel(tt.level))
				assert.Equal(t, tt.tempo, TempoFromLevel(tt.level))
			}
		})
	}

	assert.Equal(t, EnergyHigh, EnergyFromLevel(7))
	assert.Equal(t, TempoSlow, TempoFromLevel(-1))
}

func TestProfile_IsZero(t *testing.T) {
	assert.True(t, Profile{}.IsZero())
	assert.False(t, Profile{Mood: MoodChill}.IsZero())
}
