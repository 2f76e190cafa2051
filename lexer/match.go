package lexer

import (
	"fmt"
	"slices"

	plexer "github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

type MacroToken plexer.Token

var EOF = plexer.EOF

var NilToken = MacroToken{Type: EOF}

func (t MacroToken) StringAlign() string {
	return fmt.Sprintf("%-15v %7v %q", MacroSymbolName(t.Type), t.Pos, t.Value)
}

func (t MacroToken) String() string {
	return fmt.Sprintf("%v %v %q", MacroSymbolName(t.Type), t.Pos, t.Value)
}

// Matcher checks macro tokens while parsing.
type Matcher interface {
	Is(t MacroToken) bool
	Validate(t MacroToken) error
}

// NewMatcher matches tokens of the named type. When values are given, the
// token text must be one of them.
func NewMatcher(name string, values ...string) Matcher {
	return symbolMatcher{typ: MacroSymbol(name), name: name, values: values}
}

type symbolMatcher struct {
	typ    plexer.TokenType
	name   string
	values []string
}

func (m symbolMatcher) Is(t MacroToken) bool {
	if t.Type != m.typ {
		return false
	}

	return len(m.values) == 0 || slices.Contains(m.values, t.Value)
}

func (m symbolMatcher) Validate(t MacroToken) error {
	if m.Is(t) {
		return nil
	}

	if len(m.values) > 0 {
		return errors.Errorf("%v: expected %v %q, got %v", t.Pos, m.name, m.values, t)
	}
	return errors.Errorf("%v: expected %v, got %v", t.Pos, m.name, t)
}

func (m symbolMatcher) String() string {
	return m.name
}

type anyMatcher []Matcher

// AnyOf matches a token accepted by at least one of ms.
func AnyOf(ms ...Matcher) Matcher {
	return anyMatcher(ms)
}

func (ms anyMatcher) Is(t MacroToken) bool {
	for _, m := range ms {
		if m.Is(t) {
			return true
		}
	}
	return false
}

func (ms anyMatcher) Validate(t MacroToken) error {
	if ms.Is(t) {
		return nil
	}
	return errors.Errorf("%v: expected one of %v, got %v", t.Pos, []Matcher(ms), t)
}
