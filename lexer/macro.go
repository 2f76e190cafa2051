package lexer

import (
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

var _def *plexer.StatefulDefinition

func init() {
	Escape := plexer.Rule{Name: `Escape`, Pattern: `\$\$`}
	ExpStart := plexer.Rule{Name: `ExpStart`, Pattern: `\$[({]`, Action: plexer.Push("Exp")}
	ExpVar := plexer.Rule{Name: `ExpVar`, Pattern: `\$[^({]`}
	Dollar := plexer.Rule{Name: `Dollar`, Pattern: `\$`}

	_def = plexer.MustStateful(plexer.Rules{
		"Root": {
			Escape,
			ExpStart,
			ExpVar,
			Dollar,
			{Name: `Text`, Pattern: `[^$]+`},
		},
		"Nested": {
			Escape,
			ExpStart,
			ExpVar,
			Dollar,
			{Name: `Open`, Pattern: `[({]`, Action: plexer.Push("Paren")},
			{Name: `Comma`, Pattern: `,`},
			{Name: `Space`, Pattern: `[ \t\r\n]+`},
			{Name: `Word`, Pattern: `[^$(){},\s]+`},
		},
		"Exp": {
			{Name: `ExpEnd`, Pattern: `[)}]`, Action: plexer.Pop()},
			plexer.Include("Nested"),
		},
		"Paren": {
			{Name: `Close`, Pattern: `[)}]`, Action: plexer.Pop()},
			plexer.Include("Nested"),
		},
	})

	typeToName = map[plexer.TokenType]string{}
	for s, k := range MacroSymbols() {
		typeToName[k] = s
	}
}

// TokenizeMacro splits raw variable text into macro tokens, terminated by an
// EOF token.
func TokenizeMacro(text string) ([]MacroToken, error) {
	lex, err := MacroDef().Lex("", strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	toks, err := plexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	mytoks := make([]MacroToken, len(toks))
	for i, t := range toks {
		mytoks[i] = MacroToken(t)
	}

	return mytoks, nil
}

func MacroDef() *plexer.StatefulDefinition {
	return _def
}

func MacroSymbols() map[string]plexer.TokenType {
	return MacroDef().Symbols()
}

func MacroSymbol(name string) plexer.TokenType {
	t := MacroSymbols()[name]
	if t == 0 {
		panic("unknown symbol: " + name)
	}
	return t
}

var typeToName map[plexer.TokenType]string

func MacroSymbolName(t plexer.TokenType) string {
	return typeToName[t]
}
