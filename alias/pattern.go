package alias

import (
	"fmt"
	"strings"
)

// Pattern is a validated specifier-matching rule: either an exact string
// or a literal prefix with a single trailing wildcard capture.
// The zero value is invalid; use [Exact], [Prefix], or their Must variants.
type Pattern struct {
	kind  patternKind
	value string
}

type patternKind uint8

const (
	patternInvalid patternKind = iota
	patternExact
	patternPrefix
)

// Exact creates a pattern that matches the given specifier exactly.
// The specifier must be non-empty and must not contain a wildcard.
func Exact(specifier string) (Pattern, error) {
	if specifier == "" {
		return Pattern{}, fmt.Errorf("exact pattern cannot be empty")
	}
	if strings.Contains(specifier, "*") {
		return Pattern{}, fmt.Errorf("exact pattern %q cannot contain a wildcard", specifier)
	}
	return Pattern{kind: patternExact, value: specifier}, nil
}

// MustExact creates an exact Pattern or panics. Use only for constants/tests.
func MustExact(specifier string) Pattern {
	p, err := Exact(specifier)
	if err != nil {
		panic(err)
	}
	return p
}

// Prefix creates a pattern that matches any specifier starting with the
// given literal prefix. The unmatched suffix is captured for substitution.
func Prefix(prefix string) (Pattern, error) {
	if prefix == "" {
		return Pattern{}, fmt.Errorf("prefix pattern cannot be empty")
	}
	if strings.Contains(prefix, "*") {
		return Pattern{}, fmt.Errorf("prefix pattern %q cannot contain a wildcard; the capture is implicit", prefix)
	}
	return Pattern{kind: patternPrefix, value: prefix}, nil
}

// MustPrefix creates a prefix Pattern or panics. Use only for constants/tests.
func MustPrefix(prefix string) Pattern {
	p, err := Prefix(prefix)
	if err != nil {
		panic(err)
	}
	return p
}

// Key returns the literal pattern text without wildcard decoration.
func (p Pattern) Key() string {
	return p.value
}

// IsWildcard returns true for prefix patterns.
func (p Pattern) IsWildcard() bool {
	return p.kind == patternPrefix
}

// IsEmpty returns true if this is a zero-value Pattern.
func (p Pattern) IsEmpty() bool {
	return p.kind == patternInvalid
}

// String renders the pattern, with a trailing "*" for prefix patterns.
func (p Pattern) String() string {
	if p.kind == patternPrefix {
		return p.value + "*"
	}
	return p.value
}

// Matches reports whether the pattern matches the specifier. For prefix
// patterns the captured suffix is returned; for exact patterns it is "".
func (p Pattern) Matches(specifier string) (suffix string, ok bool) {
	switch p.kind {
	case patternExact:
		return "", specifier == p.value
	case patternPrefix:
		if strings.HasPrefix(specifier, p.value) {
			return specifier[len(p.value):], true
		}
	}
	return "", false
}
