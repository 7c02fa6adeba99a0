package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UntitledSegment replaces names that sanitize to nothing.
const UntitledSegment = "Untitled"

// SanitizeSegment converts a display name into a storage-key segment.
// Diacritics are stripped, every run of non-alphanumeric characters splits a
// word, words are title-cased (all-caps words such as "AV" are kept) and
// concatenated, and the result is capped at
// maxLen runes (maxLen <= 0 disables the cap). Returns UntitledSegment when
// nothing survives.
func SanitizeSegment(name string, maxLen int) string {
	plain := StripDiacritics(strings.TrimSpace(name))
	words := strings.FieldsFunc(plain, func(r rune) bool {
		return !isASCIIAlnum(r)
	})
	if len(words) == 0 {
		return UntitledSegment
	}
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, word := range words {
		if isAcronym(word) {
			b.WriteString(word)
			continue
		}
		b.WriteString(caser.String(word))
	}
	out := []rune(b.String())
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return string(out)
}

// isASCIIAlnum keeps storage keys within [A-Za-z0-9]; letters outside ASCII
// that survive diacritic stripping (e.g. "ß", "ø") act as separators.
func isASCIIAlnum(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// isAcronym reports whether word has letters and all of them are upper case,
// e.g. "AV", "COPD" or "DM2".
func isAcronym(word string) bool {
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters > 0
}
