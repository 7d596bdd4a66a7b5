package ranker

import (
	"strings"

	"github.com/osa030/vibebox/internal/domain/vibe"
)

const (
	maxLanguageQueries = 10
	maxGenreQueries    = 8
	languageGenreMixes = 3
)

// LanguageQueries returns the tier-1 discovery queries for lang, mixing in
// genre when it is set.
func LanguageQueries(lang vibe.Language, genre string) []string {
	base, ok := languageQueryTable[lang]
	if !ok {
		base = []string{string(lang)}
	}

	queries := append([]string(nil), base...)
	if genre != "" {
		g := strings.ToLower(genre)
		for _, q := range base[:min(languageGenreMixes, len(base))] {
			queries = append(queries, q+" "+g, g+" "+q)
		}
	}

	return queries[:min(maxLanguageQueries, len(queries))]
}

// GenreQueries returns the tier-2 discovery queries for genre. Regional
// genres are also searched with the terms of country.
func GenreQueries(genre, country string) []string {
	if genre == "" {
		return nil
	}
	g := strings.ToLower(genre)

	base, ok := genreQueryTable[genre]
	if !ok {
		base = []string{g}
	}

	queries := append([]string(nil), base...)
	if !anyContains(base, "music") {
		queries = append(queries, g+" music")
	}
	if !anyContains(base, "songs") {
		queries = append(queries, g+" songs")
	}

	if country != "" && regionalGenres[genre] {
		for _, term := range regionTerms[country] {
			queries = append(queries, term+" "+g)
		}
	}

	return queries[:min(maxGenreQueries, len(queries))]
}

func anyContains(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
