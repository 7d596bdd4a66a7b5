package ranker

import "github.com/osa030/vibebox/internal/domain/vibe"

// Entries are directional and intentionally not symmetrized.
var compatibleLanguages = map[vibe.Language][]vibe.Language{
	vibe.LanguageHindi:      {vibe.LanguagePunjabi, vibe.LanguageMarathi, vibe.LanguageGujarati, vibe.LanguageRajasthani},
	vibe.LanguagePunjabi:    {vibe.LanguageHindi, vibe.LanguageRajasthani},
	vibe.LanguageMarathi:    {vibe.LanguageHindi, vibe.LanguageGujarati},
	vibe.LanguageGujarati:   {vibe.LanguageHindi, vibe.LanguageMarathi, vibe.LanguageRajasthani},
	vibe.LanguageRajasthani: {vibe.LanguageHindi, vibe.LanguagePunjabi, vibe.LanguageGujarati},
	vibe.LanguageTamil:      {vibe.LanguageTelugu, vibe.LanguageKannada, vibe.LanguageMalayalam},
	vibe.LanguageTelugu:     {vibe.LanguageTamil, vibe.LanguageKannada, vibe.LanguageMalayalam},
	vibe.LanguageKannada:    {vibe.LanguageTamil, vibe.LanguageTelugu, vibe.LanguageMalayalam},
	vibe.LanguageMalayalam:  {vibe.LanguageTamil, vibe.LanguageTelugu, vibe.LanguageKannada},
	vibe.LanguageSpanish:    {vibe.LanguagePortuguese},
	vibe.LanguagePortuguese: {vibe.LanguageSpanish},
}

var similarGenres = map[string][]string{
	"Pop":         {"Adult Contemporary", "Top 40", "Dance Pop", "Teen Pop"},
	"Rock":        {"Alternative", "Indie Rock", "Classic Rock", "Pop Rock"},
	"Hip-Hop/Rap": {"R&B/Soul", "Urban", "Trap", "Contemporary R&B"},
	"Electronic":  {"Dance", "House", "Techno", "EDM", "Ambient"},
	"R&B/Soul":    {"Hip-Hop/Rap", "Contemporary R&B", "Funk", "Neo-Soul"},
	"Country":     {"Folk", "Americana", "Bluegrass", "Country Pop"},
	"Jazz":        {"Blues", "Smooth Jazz", "Contemporary Jazz", "Fusion"},
	"Classical":   {"Instrumental", "Chamber Music", "Symphony", "Opera"},
	"Reggae":      {"Dancehall", "Ska", "Dub", "Caribbean"},
	"Latin":       {"Salsa", "Bachata", "Reggaeton", "Merengue", "Latin Pop"},
	"World":       {"Folk", "Traditional", "Ethnic", "Cultural"},
	"Alternative": {"Indie", "Grunge", "Post-Rock", "Experimental"},
	"Dance":       {"Electronic", "House", "EDM", "Pop"},
	"Soundtrack":  {"Film Score", "Movie Soundtrack"},
	"World Music": {"Folk", "Traditional", "Ethnic"},

	// iTunes labels regional music inconsistently.
	"Punjabi":          {"Hip-Hop/Rap", "Pop", "Dance", "World Music", "Folk"},
	"Bollywood":        {"Hindi", "Indian Pop", "Bhangra", "Punjabi", "Pop", "Dance"},
	"Tamil":            {"Pop", "World Music", "Folk", "Classical"},
	"Telugu":           {"Pop", "World Music", "Folk", "Classical"},
	"Malayalam":        {"Pop", "World Music", "Folk", "Classical"},
	"Kannada":          {"Pop", "World Music", "Folk", "Classical"},
	"Marathi":          {"Pop", "World Music", "Folk", "Classical"},
	"Bengali":          {"Pop", "World Music", "Folk", "Classical"},
	"Gujarati":         {"Pop", "World Music", "Folk", "Classical"},
	"Hindi":            {"Bollywood", "Pop", "World Music", "Folk"},
	"K-Pop":            {"J-Pop", "Asian Pop", "Dance Pop", "Pop"},
	"J-Pop":            {"K-Pop", "Asian Pop", "Dance Pop", "Pop"},
	"Indian Classical": {"Bollywood", "Hindi", "Classical", "World Music"},
	"Devotional":       {"Spiritual", "World Music", "Classical"},
	"New Age":          {"Ambient", "Instrumental", "Electronic"},
}

var languageQueryTable = map[vibe.Language][]string{
	vibe.LanguagePunjabi:   {"punjabi songs", "punjabi music", "bhangra", "punjabi hits", "desi punjabi", "jatt songs"},
	vibe.LanguageHindi:     {"hindi songs", "bollywood music", "hindi film songs", "bollywood hits", "desi songs", "filmi songs"},
	vibe.LanguageTamil:     {"tamil songs", "kollywood music", "tamil film songs", "tamil hits", "chennai music"},
	vibe.LanguageTelugu:    {"telugu songs", "tollywood music", "telugu film songs", "telugu hits", "andhra music"},
	vibe.LanguageMalayalam: {"malayalam songs", "mollywood music", "malayalam film songs", "kerala music"},
	vibe.LanguageKannada:   {"kannada songs", "sandalwood music", "kannada film songs", "karnataka music"},
	vibe.LanguageMarathi:   {"marathi songs", "marathi music", "marathi film songs", "maharashtra music"},
	vibe.LanguageBengali:   {"bengali songs", "bangla music", "bengali film songs", "kolkata music"},
	vibe.LanguageGujarati:  {"gujarati songs", "gujarati music", "gujarat music"},
	vibe.LanguageKorean:    {"kpop", "k-pop", "korean pop", "korean music", "hallyu"},
	vibe.LanguageJapanese:  {"jpop", "j-pop", "japanese pop", "japanese music", "anime songs"},
	vibe.LanguageEnglish:   {"pop songs", "english music", "american music", "british music", "western music"},
}

var genreQueryTable = map[string][]string{
	"Punjabi":     {"punjabi songs", "punjabi music", "bhangra", "punjabi hits"},
	"Bollywood":   {"bollywood songs", "hindi songs", "bollywood music", "hindi film songs"},
	"Hip-Hop/Rap": {"hip hop", "rap music", "rap songs", "hip hop hits"},
	"Pop":         {"pop songs", "popular music", "pop hits", "mainstream pop"},
	"Rock":        {"rock music", "rock songs", "rock hits"},
	"Alternative": {"alternative music", "indie music", "alternative rock"},
	"Electronic":  {"electronic music", "edm", "dance music", "electronic dance"},
	"R&B/Soul":    {"r&b music", "soul music", "rnb songs"},
	"Country":     {"country music", "country songs", "country hits"},
	"Jazz":        {"jazz music", "jazz songs", "smooth jazz"},
	"Classical":   {"classical music", "orchestra", "symphony"},
	"Reggae":      {"reggae music", "reggae songs", "jamaican music"},
	"Latin":       {"latin music", "latin songs", "spanish music"},
	"K-Pop":       {"kpop", "korean pop", "k-pop songs"},
	"J-Pop":       {"jpop", "japanese pop", "j-pop songs"},
	"Tamil":       {"tamil songs", "tamil music", "kollywood"},
	"Telugu":      {"telugu songs", "telugu music", "tollywood"},
	"Malayalam":   {"malayalam songs", "malayalam music", "mollywood"},
	"Kannada":     {"kannada songs", "kannada music", "sandalwood"},
	"Marathi":     {"marathi songs", "marathi music"},
	"Bengali":     {"bengali songs", "bangla music"},
	"Gujarati":    {"gujarati songs", "gujarati music"},
}

var regionalGenres = map[string]bool{
	"Punjabi": true, "Bollywood": true, "Tamil": true, "Telugu": true,
	"Malayalam": true, "Kannada": true, "Marathi": true, "Bengali": true,
	"Gujarati": true, "K-Pop": true, "J-Pop": true, "Latin": true,
	"Reggae": true, "Country": true,
}

// Keyed by both country name and the ISO 3166-1 alpha-3 code the search API reports.
var regionTerms = map[string][]string{
	"India":          {"hindi", "bollywood", "indian"},
	"IND":            {"hindi", "bollywood", "indian"},
	"USA":            {"american", "us"},
	"United Kingdom": {"british", "uk"},
	"GBR":            {"british", "uk"},
	"Canada":         {"canadian"},
	"CAN":            {"canadian"},
	"Australia":      {"australian"},
	"AUS":            {"australian"},
	"South Korea":    {"korean"},
	"KOR":            {"korean"},
	"Japan":          {"japanese"},
	"JPN":            {"japanese"},
	"Spain":          {"spanish"},
	"ESP":            {"spanish"},
	"Mexico":         {"mexican"},
	"MEX":            {"mexican"},
	"Brazil":         {"brazilian"},
	"BRA":            {"brazilian"},
	"France":         {"french"},
	"FRA":            {"french"},
}
