// Package vibe provides the VibeProfile domain value and its closed enums.
//
// Every field of a Profile is independently optional. The empty string means
// the attribute is unset; unset attributes are neutral when profiles are
// compared.
package vibe

// Language is the detected or targeted song language.
type Language string

const (
	LanguageEnglish    Language = "english"
	LanguageHindi      Language = "hindi"
	LanguageSpanish    Language = "spanish"
	LanguageFrench     Language = "french"
	LanguageKorean     Language = "korean"
	LanguageJapanese   Language = "japanese"
	LanguageArabic     Language = "arabic"
	LanguagePortuguese Language = "portuguese"
	LanguagePunjabi    Language = "punjabi"
	LanguageMarathi    Language = "marathi"
	LanguageTamil      Language = "tamil"
	LanguageTelugu     Language = "telugu"
	LanguageGujarati   Language = "gujarati"
	LanguageBengali    Language = "bengali"
	LanguageRajasthani Language = "rajasthani"
	LanguageKannada    Language = "kannada"
	LanguageMalayalam  Language = "malayalam"
	LanguageOther      Language = "other"
)

// Known reports whether l is set and not "other".
func (l Language) Known() bool {
	return l != "" && l != LanguageOther
}

// Energy is the perceived intensity of a track.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// Level returns the ordinal of e (1..3), or 0 when unset or unknown.
func (e Energy) Level() int {
	switch e {
	case EnergyLow:
		return 1
	case EnergyMedium:
		return 2
	case EnergyHigh:
		return 3
	default:
		return 0
	}
}

// EnergyFromLevel maps an ordinal back to an Energy, clamping out-of-range values.
func EnergyFromLevel(level int) Energy {
	switch {
	case level <= 1:
		return EnergyLow
	case level == 2:
		return EnergyMedium
	default:
		return EnergyHigh
	}
}

// Mood is the emotional colour of a track.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodEnergetic Mood = "energetic"
	MoodRelaxed   Mood = "relaxed"
	MoodParty     Mood = "party"
	MoodChill     Mood = "chill"
)

// Tempo is the perceived pace of a track.
type Tempo string

const (
	TempoSlow   Tempo = "slow"
	TempoMedium Tempo = "medium"
	TempoFast   Tempo = "fast"
)

// Level returns the ordinal of t (1..3), or 0 when unset or unknown.
func (t Tempo) Level() int {
	switch t {
	case TempoSlow:
		return 1
	case TempoMedium:
		return 2
	case TempoFast:
		return 3
	default:
		return 0
	}
}

// TempoFromLevel maps an ordinal back to a Tempo, clamping out-of-range values.
func TempoFromLevel(level int) Tempo {
	switch {
	case level <= 1:
		return TempoSlow
	case level == 2:
		return TempoMedium
	default:
		return TempoFast
	}
}

// Industry is the regional film/music industry a track belongs to.
type Industry string

const (
	IndustryBollywood     Industry = "bollywood"
	IndustryHollywood     Industry = "hollywood"
	IndustryTollywood     Industry = "tollywood"
	IndustryKollywood     Industry = "kollywood"
	IndustryMollywood     Industry = "mollywood"
	IndustrySandalwood    Industry = "sandalwood"
	IndustryPunjabiCinema Industry = "punjabi_cinema"
	IndustryBhojpuri      Industry = "bhojpuri"
	IndustryMarathiCinema Industry = "marathi_cinema"
	IndustryInternational Industry = "international"
	IndustryOther         Industry = "other"
)

// Known reports whether i is set and not "other".
func (i Industry) Known() bool {
	return i != "" && i != IndustryOther
}

// Profile is the semantic description of a track or of a session's target vibe.
type Profile struct {
	Genre        string   `json:"genre,omitempty" yaml:"genre,omitempty"`
	Energy       Energy   `json:"energy,omitempty" yaml:"energy,omitempty"`
	Mood         Mood     `json:"mood,omitempty" yaml:"mood,omitempty"`
	Tempo        Tempo    `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	Language     Language `json:"language,omitempty" yaml:"language,omitempty"`
	PrimaryGenre string   `json:"primaryGenre,omitempty" yaml:"primaryGenre,omitempty"`
	FilmIndustry Industry `json:"filmIndustry,omitempty" yaml:"filmIndustry,omitempty"`
}

// IsZero reports whether no attribute of p is set.
func (p Profile) IsZero() bool {
	return p == Profile{}
}
