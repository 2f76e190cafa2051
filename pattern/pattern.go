// Package pattern implements the single-wildcard "%" patterns used by
// pattern rules and by the patsubst/filter functions.
package pattern

import (
	"strings"
)

type Pattern struct {
	Prefix, Suffix string
}

// Parse splits s around its first "%". It reports false when s has none.
func Parse(s string) (Pattern, bool) {
	i := strings.IndexByte(s, '%')
	if i < 0 {
		return Pattern{}, false
	}
	return Pattern{Prefix: s[:i], Suffix: s[i+1:]}, true
}

func (p Pattern) String() string {
	return p.Prefix + "%" + p.Suffix
}

func (p Pattern) Match(s string) bool {
	_, ok := p.Stem(s)
	return ok
}

// Stem returns the text "%" binds to in s.
func (p Pattern) Stem(s string) (string, bool) {
	if len(s) < len(p.Prefix)+len(p.Suffix) {
		return "", false
	}
	if !strings.HasPrefix(s, p.Prefix) || !strings.HasSuffix(s, p.Suffix) {
		return "", false
	}
	return s[len(p.Prefix) : len(s)-len(p.Suffix)], true
}

func (p Pattern) Subst(stem string) string {
	return p.Prefix + stem + p.Suffix
}
