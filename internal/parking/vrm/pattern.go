package vrm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrReservedRune is returned by Compile when the identifier contains a rune
// from the private-use block the compiler reserves for placeholders.
var ErrReservedRune = errors.New("identifier contains a reserved rune")

// ErrEmptyIdentifier is returned by Compile for an empty identifier.
var ErrEmptyIdentifier = errors.New("identifier is empty")

const optionalSpace = "[ ]?"

// confusables groups characters that OCR and attendants commonly swap.
// Each member is rewritten to the class of its group.
var confusables = []struct {
	members string
	class   string
}{
	{members: "0OQ", class: "[0OQ]"},
	{members: "1I", class: "[1I]"},
	{members: "8B", class: "[8B]"},
	{members: "5S", class: "[5S]"},
	{members: "2Z", class: "[2Z]"},
}

// placeholderBase starts the private-use range used for intermediate tokens.
const (
	placeholderBase = '\uE000'
	placeholderLast = '\uE0FF'
)

var (
	toPlaceholders   *strings.Replacer
	fromPlaceholders *strings.Replacer
)

func init() {
	var first, second []string
	n := 0
	for _, group := range confusables {
		for _, r := range group.members {
			token := string(rune(placeholderBase + n))
			first = append(first, string(r), token)
			second = append(second, token, group.class)
			n++
		}
	}
	toPlaceholders = strings.NewReplacer(first...)
	fromPlaceholders = strings.NewReplacer(second...)
}

// Pattern is a compiled, anchored matcher tolerant of confusable characters
// and optional spaces. It is immutable and safe for concurrent use.
type Pattern struct {
	identifier string
	source     string
	re         *regexp.Regexp
}

// Compile turns a raw identifier into a Pattern.
//
// Substitution happens in two passes: every confusable character is first
// swapped for a unique placeholder rune, and only then are placeholders
// expanded to character classes. Expanding directly would let a later rule
// rewrite characters inside a class emitted by an earlier one ("1" → "[1I]"
// followed by "I" → "[1I]").
func Compile(identifier string) (*Pattern, error) {
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}
	for _, r := range identifier {
		if r >= placeholderBase && r <= placeholderLast {
			return nil, fmt.Errorf("compile %q: %w", identifier, ErrReservedRune)
		}
	}

	normalized := Normalize(identifier)
	source := regexp.QuoteMeta(normalized)
	source = strings.ReplaceAll(source, " ", optionalSpace)
	source = toPlaceholders.Replace(source)
	source = fromPlaceholders.Replace(source)
	source = "^" + source + "$"

	re, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", identifier, err)
	}
	return &Pattern{identifier: normalized, source: source, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(identifier string) *Pattern {
	p, err := Compile(identifier)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether the whole of stored, once normalized, matches.
func (p *Pattern) Match(stored string) bool {
	return p.re.MatchString(Normalize(stored))
}

// String returns the regular expression source.
func (p *Pattern) String() string { return p.source }

// Identifier returns the normalized identifier the pattern was built from.
func (p *Pattern) Identifier() string { return p.identifier }
