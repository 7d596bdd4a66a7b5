package analyzer

import "github.com/osa030/vibebox/internal/domain/vibe"

type genreTraits struct {
	energy vibe.Energy
	mood   vibe.Mood
	tempo  vibe.Tempo
}

var genreTraitTable = map[string]genreTraits{
	"Electronic":   {vibe.EnergyHigh, vibe.MoodEnergetic, vibe.TempoFast},
	"Dance":        {vibe.EnergyHigh, vibe.MoodParty, vibe.TempoFast},
	"House":        {vibe.EnergyHigh, vibe.MoodParty, vibe.TempoFast},
	"Techno":       {vibe.EnergyHigh, vibe.MoodEnergetic, vibe.TempoFast},
	"Trance":       {vibe.EnergyHigh, vibe.MoodEnergetic, vibe.TempoFast},
	"Dubstep":      {vibe.EnergyHigh, vibe.MoodEnergetic, vibe.TempoFast},
	"Hip-Hop/Rap":  {vibe.EnergyHigh, vibe.MoodEnergetic, vibe.TempoMedium},
	"Rap":          {vibe.EnergyHigh, vibe.MoodEnergetic, vibe.TempoMedium},
	"Pop":          {vibe.EnergyMedium, vibe.MoodHappy, vibe.TempoMedium},
	"Rock":         {vibe.EnergyHigh, vibe.MoodEnergetic, vibe.TempoFast},
	"Alternative":  {vibe.EnergyMedium, vibe.MoodEnergetic, vibe.TempoMedium},
	"Indie Rock":   {vibe.EnergyMedium, vibe.MoodChill, vibe.TempoMedium},
	"R&B/Soul":     {vibe.EnergyMedium, vibe.MoodRelaxed, vibe.TempoMedium},
	"Soul":         {vibe.EnergyMedium, vibe.MoodRelaxed, vibe.TempoMedium},
	"Jazz":         {vibe.EnergyLow, vibe.MoodChill, vibe.TempoSlow},
	"Blues":        {vibe.EnergyLow, vibe.MoodSad, vibe.TempoSlow},
	"Classical":    {vibe.EnergyLow, vibe.MoodRelaxed, vibe.TempoSlow},
	"Instrumental": {vibe.EnergyLow, vibe.MoodChill, vibe.TempoSlow},
	"Country":      {vibe.EnergyMedium, vibe.MoodHappy, vibe.TempoMedium},
	"Folk":         {vibe.EnergyLow, vibe.MoodRelaxed, vibe.TempoSlow},
	"Ambient":      {vibe.EnergyLow, vibe.MoodChill, vibe.TempoSlow},
	"Chillout":     {vibe.EnergyLow, vibe.MoodChill, vibe.TempoSlow},
	"Downtempo":    {vibe.EnergyLow, vibe.MoodChill, vibe.TempoSlow},
	"Latin":        {vibe.EnergyHigh, vibe.MoodParty, vibe.TempoFast},
	"Reggae":       {vibe.EnergyMedium, vibe.MoodChill, vibe.TempoSlow},
	"Reggaeton":    {vibe.EnergyHigh, vibe.MoodParty, vibe.TempoFast},
}

// Used when no pattern in the language bank matches.
var genreLanguage = map[string]vibe.Language{
	"Punjabi":   vibe.LanguagePunjabi,
	"Bollywood": vibe.LanguageHindi,
	"Tamil":     vibe.LanguageTamil,
	"Telugu":    vibe.LanguageTelugu,
	"Malayalam": vibe.LanguageMalayalam,
	"Kannada":   vibe.LanguageKannada,
	"Marathi":   vibe.LanguageMarathi,
	"Bengali":   vibe.LanguageBengali,
	"Gujarati":  vibe.LanguageGujarati,
	"K-Pop":     vibe.LanguageKorean,
	"J-Pop":     vibe.LanguageJapanese,
}

var genreIndustry = map[string]vibe.Industry{
	"Bollywood": vibe.IndustryBollywood,
	"Punjabi":   vibe.IndustryPunjabiCinema,
	"Tamil":     vibe.IndustryKollywood,
	"Telugu":    vibe.IndustryTollywood,
	"Malayalam": vibe.IndustryMollywood,
	"Kannada":   vibe.IndustrySandalwood,
	"Marathi":   vibe.IndustryMarathiCinema,
}

var (
	highEnergyKeywords = []string{"party", "dance", "club", "remix", "beat", "pump", "energy", "electric", "power"}
	lowEnergyKeywords  = []string{"acoustic", "slow", "ballad", "soft", "gentle", "quiet", "calm", "peaceful"}
	happyKeywords      = []string{"happy", "love", "good", "sunshine", "smile", "celebrate", "joy", "fun"}
	sadKeywords        = []string{"sad", "cry", "alone", "broken", "hurt", "miss", "goodbye", "tears"}
	partyKeywords      = []string{"party", "club", "dance", "tonight", "wild", "crazy", "celebration"}
	chillKeywords      = []string{"chill", "relax", "easy", "smooth", "mellow", "laid-back", "calm"}
)

// Compatibility tables. Entries are directional and intentionally not symmetrized.
var compatibleIndustries = map[vibe.Industry][]vibe.Industry{
	vibe.IndustryBollywood:     {vibe.IndustryBhojpuri, vibe.IndustryMarathiCinema},
	vibe.IndustryTollywood:     {vibe.IndustryKollywood, vibe.IndustrySandalwood, vibe.IndustryMollywood},
	vibe.IndustryKollywood:     {vibe.IndustryTollywood, vibe.IndustrySandalwood, vibe.IndustryMollywood},
	vibe.IndustryMollywood:     {vibe.IndustryKollywood, vibe.IndustryTollywood, vibe.IndustrySandalwood},
	vibe.IndustrySandalwood:    {vibe.IndustryKollywood, vibe.IndustryTollywood, vibe.IndustryMollywood},
	vibe.IndustryPunjabiCinema: {vibe.IndustryBollywood},
	vibe.IndustryBhojpuri:      {vibe.IndustryBollywood},
	vibe.IndustryMarathiCinema: {vibe.IndustryBollywood},
	vibe.IndustryHollywood:     {vibe.IndustryInternational},
	vibe.IndustryInternational: {vibe.IndustryHollywood},
}

var genreFamilies = [][]string{
	{"Electronic", "Dance", "House", "Techno", "Trance", "Dubstep"},
	{"Hip-Hop/Rap", "Rap"},
	{"Pop", "Rock", "Alternative", "Indie Rock"},
	{"R&B/Soul", "Soul"},
	{"Jazz", "Blues"},
	{"Classical", "Instrumental"},
	{"Country", "Folk"},
	{"Ambient", "Chillout", "Downtempo"},
	{"Latin", "Reggae", "Reggaeton"},
	{"World", "International", "Bollywood"},
}

var compatibleGenres = map[string][]string{
	"party":     {"energetic", "dance"},
	"energetic": {"party", "dance"},
	"dance":     {"party", "energetic"},
	"chill":     {"relaxed", "ambient"},
	"relaxed":   {"chill", "ambient"},
	"ambient":   {"chill", "relaxed"},
}

var compatibleMoods = map[vibe.Mood][]vibe.Mood{
	vibe.MoodHappy:     {vibe.MoodEnergetic, vibe.MoodParty},
	vibe.MoodEnergetic: {vibe.MoodHappy, vibe.MoodParty},
	vibe.MoodParty:     {vibe.MoodHappy, vibe.MoodEnergetic},
	vibe.MoodChill:     {vibe.MoodRelaxed},
	vibe.MoodRelaxed:   {vibe.MoodChill},
	vibe.MoodSad:       {},
}

// Query generation tables.
var languageSearchTerms = map[vibe.Language][]string{
	vibe.LanguageHindi:      {"hindi song", "bollywood", "desi music", "indian music", "bhangra", "romantic hindi"},
	vibe.LanguageSpanish:    {"spanish song", "latin music", "reggaeton", "salsa", "bachata", "musica latina"},
	vibe.LanguageKorean:     {"k-pop", "korean music", "kpop song", "hallyu", "korean pop"},
	vibe.LanguageJapanese:   {"j-pop", "japanese music", "jpop song", "anime music"},
	vibe.LanguageFrench:     {"french song", "chanson francaise", "musique francaise"},
	vibe.LanguageArabic:     {"arabic song", "arabic music", "middle eastern"},
	vibe.LanguagePortuguese: {"brazilian music", "musica brasileira", "bossa nova", "samba"},
	vibe.LanguageEnglish:    {"popular songs", "top hits", "english songs"},
}

var moodEnergyQueries = map[string][]string{
	"party-high":     {"party music", "dance hits", "club music", "party songs"},
	"energetic-high": {"upbeat songs", "high energy music", "workout music"},
	"happy-medium":   {"feel good music", "happy songs", "uplifting music"},
	"chill-low":      {"chill music", "relaxing songs", "mellow music"},
	"relaxed-low":    {"chill out music", "ambient music", "peaceful songs"},
	"sad-low":        {"sad songs", "emotional music", "melancholy music"},
}

var tempoQueries = map[vibe.Tempo][]string{
	vibe.TempoFast:   {"fast songs", "upbeat music", "energetic tracks"},
	vibe.TempoMedium: {"mid tempo music", "moderate pace songs"},
	vibe.TempoSlow:   {"slow songs", "ballads", "slow tempo music"},
}

var genreQueries = map[string][]string{
	"Electronic":  {"electronic dance music", "EDM", "electronic beats"},
	"Hip-Hop/Rap": {"hip hop music", "rap songs", "hip hop beats"},
	"Pop":         {"pop hits", "popular music", "pop songs"},
	"Rock":        {"rock music", "rock songs", "guitar music"},
	"Jazz":        {"jazz music", "smooth jazz", "jazz standards"},
	"Classical":   {"classical music", "orchestral music", "instrumental classical"},
}
