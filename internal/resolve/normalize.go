// Package resolve turns free-text queries into answers about indexed bills:
// it classifies the query, fuzzy-matches it against indexed titles, and
// renders the grouped bill listing.
package resolve

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// docExtensions are the trailing file extensions stripped from titles. The
// set is closed so normalization stays idempotent for titles that legitimately
// contain dots ("Act 2.0").
var docExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".htm":  true,
	".html": true,
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// NormalizeTitle canonicalizes a title or query for comparison: trailing
// document extensions are stripped, underscores and dashes become spaces,
// whitespace collapses, and each word is capitalized. It is idempotent.
// The normalized form is only ever compared, never persisted.
func NormalizeTitle(s string) string {
	s = strings.TrimSpace(s)
	for {
		ext := path.Ext(s)
		if !docExtensions[strings.ToLower(ext)] {
			break
		}
		s = s[:len(s)-len(ext)]
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// ExtractYear pulls the first four-digit 20xx token out of a raw title, or
// "Unknown" when none is present.
func ExtractYear(title string) string {
	if y := yearPattern.FindString(title); y != "" {
		return y
	}
	return "Unknown"
}

func capitalize(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	for i := 1; i < len(r); i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}
