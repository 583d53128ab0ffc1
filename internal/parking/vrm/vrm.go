// Package vrm holds the string algorithms used to compare vehicle registration
// marks read by cameras or typed by attendants: normalization, the
// confusable-character pattern compiler and edit distance.
package vrm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var formatPattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// Normalize folds compatibility forms (full-width digits from some ANPR
// exports, for instance) and upper-cases the result. Spaces are preserved.
func Normalize(s string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Upper(language.Und).String(norm.NFKC.String(s))
}

// ValidFormat reports whether s contains only ASCII letters, digits and
// spaces once normalized. Tabs and newlines are rejected.
func ValidFormat(s string) bool {
	return formatPattern.MatchString(Normalize(s))
}

// Distance is the Levenshtein distance between the normalized forms of a
// and b, counted in runes.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(Normalize(a), Normalize(b))
}

// Length is the rune count of s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// HasPrefix reports whether stored begins with query once both are
// normalized and stripped of spaces. An empty query never matches.
func HasPrefix(stored, query string) bool {
	q := compact(query)
	if q == "" {
		return false
	}
	return strings.HasPrefix(compact(stored), q)
}

// Equal reports whether a and b are the same identifier after
// normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func compact(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "")
}
