// Package safe normalizes user-entered text before it is stored or used in
// file names.
package safe

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLen is the length limit used by most text columns.
const DefaultMaxLen = 250

var (
	notAllowed = regexp.MustCompile(`[^A-Z0-9.,;:()/\-]+`)
	spaces     = regexp.MustCompile(`\s+`)
	notClave   = regexp.MustCompile(`[^A-Z0-9\-]+`)
)

// StripAccents removes diacritics, turning "Ñandú" into "Nandu".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// String upper-cases s, strips accents, replaces disallowed characters with
// spaces, collapses whitespace and truncates to maxLen (0 means no limit).
// The result may be empty.
func String(s string, maxLen int) string {
	s = StripAccents(strings.ToUpper(s))
	s = notAllowed.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	return Truncate(s, maxLen)
}

// Message collapses whitespace of a bitacora text and truncates it; an empty
// input becomes "SIN DESCRIPCION".
func Message(s string, maxLen int) string {
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	if s == "" {
		return "SIN DESCRIPCION"
	}
	return Truncate(s, maxLen)
}

// Clave normalizes an authority code: upper case, letters, digits and dashes only.
func Clave(s string) string {
	s = StripAccents(strings.ToUpper(strings.TrimSpace(s)))
	s = notClave.ReplaceAllString(s, "")
	if len(s) > 16 {
		s = s[:16]
	}
	return s
}

// Slug turns a normalized description into a file name fragment.
func Slug(s string) string {
	return strings.ReplaceAll(s, " ", "-")
}

// Truncate cuts s to maxLen characters and marks the cut with "...".
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
