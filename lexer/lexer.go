package lexer

import (
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

var _lineDef *plexer.StatefulDefinition

// Root covers the lines before the first statement, where a leading tab is
// plain whitespace. The first statement token pushes Lines, which then stays
// on the stack and turns "\n\t" into the start of a recipe.
func init() {
	Continuation := plexer.Rule{Name: `Continuation`, Pattern: `[ \t]*\\\r?\n[ \t]*`}
	Dangling := plexer.Rule{Name: `Dangling`, Pattern: `\\$`}
	Nl := plexer.Rule{Name: `Nl`, Pattern: `\r?\n|\r$`}
	Space := plexer.Rule{Name: `Space`, Pattern: `[ \t]+`}
	Hash := plexer.Rule{Name: `Hash`, Pattern: `#`, Action: plexer.Push("Raw")}
	Escape := plexer.Rule{Name: `Escape`, Pattern: `\$\$`}
	ExpStart := plexer.Rule{Name: `ExpStart`, Pattern: `\$[({]`, Action: plexer.Push("Macro")}
	Dollar := plexer.Rule{Name: `Dollar`, Pattern: `\$`}
	Op := plexer.Rule{Name: `Operator`, Pattern: `[=:]`}
	EscapedHash := plexer.Rule{Name: `EscapedHash`, Pattern: `\\+#`}
	Backslash := plexer.Rule{Name: `Backslash`, Pattern: `\\\\|\\`}
	Text := plexer.Rule{Name: `Text`, Pattern: `[^ \t\r\n\\$#=:]+`}
	Cr := plexer.Rule{Name: `Cr`, Pattern: `\r[^\n]`}

	enter := func(r plexer.Rule) plexer.Rule {
		r.Action = plexer.Push("Lines")
		return r
	}

	macro := func(end plexer.Action) []plexer.Rule {
		return []plexer.Rule{
			Continuation,
			Dangling,
			Escape,
			ExpStart,
			{Name: `Open`, Pattern: `[({]`, Action: plexer.Push("Macro")},
			{Name: `ExpEnd`, Pattern: `[)}]`, Action: end},
			Dollar,
			Space,
			Backslash,
			{Name: `MacroText`, Pattern: `[^ \t\r\n\\$(){}]+`},
			Cr,
			plexer.Return(),
		}
	}

	_lineDef = plexer.MustStateful(plexer.Rules{
		"Root": {
			Nl,
			Continuation,
			Dangling,
			Space,
			Hash,
			{Name: `ExpStart`, Pattern: ExpStart.Pattern, Action: plexer.Push("FirstMacro")},
			enter(Escape),
			enter(Dollar),
			enter(Op),
			enter(EscapedHash),
			enter(Backslash),
			enter(Text),
			enter(Cr),
		},
		"Lines": {
			{Name: `Tab`, Pattern: `\r?\n\t`, Action: plexer.Push("Raw")},
			Nl,
			Continuation,
			Dangling,
			Space,
			Hash,
			Escape,
			ExpStart,
			Dollar,
			Op,
			EscapedHash,
			Backslash,
			Text,
			Cr,
		},
		"Raw": {
			Continuation,
			Dangling,
			Space,
			Backslash,
			{Name: `RawText`, Pattern: `[^ \t\r\n\\]+`},
			Cr,
			plexer.Return(),
		},
		"Macro":      macro(plexer.Pop()),
		"FirstMacro": macro(plexer.Push("Lines")),
	})

	lineTypeToName = map[plexer.TokenType]string{}
	for s, k := range Symbols() {
		lineTypeToName[k] = s
	}
}

func Def() *plexer.StatefulDefinition {
	return _lineDef
}

func Symbols() map[string]plexer.TokenType {
	return Def().Symbols()
}

var lineTypeToName map[plexer.TokenType]string

func SymbolName(t plexer.TokenType) string {
	return lineTypeToName[t]
}

// Tokenize scans makefile text into a flat token sequence, one group per
// logical line. Columns are relative to the logical line, where every
// continuation counts as a single space, so a line without continuations can
// be rebuilt from the spans.
func Tokenize(text, source string) []Token {
	lex, err := Def().LexString(source, text)
	if err != nil {
		panic(err)
	}

	ptoks, err := plexer.ConsumeAll(lex)
	if err != nil {
		panic(err)
	}

	toks := make([]Token, 0)
	var l *logical
	flush := func() {
		if l != nil {
			toks = append(toks, l.tokens(source)...)
			l = nil
		}
	}

	for _, t := range ptoks {
		switch SymbolName(t.Type) {
		case "EOF", "Nl":
			flush()
			continue
		case "Tab":
			flush()
			l = &logical{
				number: t.Pos.Line + 1,
				base:   t.Pos.Offset + len(t.Value) - 1,
				recipe: true,
				hash:   -1,
				op:     -1,
			}
			l.text.WriteString("\t")
			continue
		}

		if l == nil {
			l = &logical{number: t.Pos.Line, base: t.Pos.Offset, hash: -1, op: -1}
		}

		switch SymbolName(t.Type) {
		case "Continuation":
			l.add(t, " ")
		case "Dangling":
			l.add(t, "")
		case "Hash":
			if col := l.add(t, t.Value); l.hash < 0 {
				l.hash = col
			}
		case "Operator":
			if col := l.add(t, t.Value); l.op < 0 {
				l.op = col
			}
		default:
			l.add(t, t.Value)
		}
	}
	flush()

	return toks
}

// logical accumulates the tokens of one logical line.
type logical struct {
	number int
	base   int
	text   strings.Builder
	recipe bool
	hash   int
	op     int
}

// add appends value in place of the raw token and returns its column.
func (l *logical) add(t plexer.Token, value string) int {
	col := t.Pos.Offset - l.base
	l.base += len(t.Value) - len(value)
	l.text.WriteString(value)
	return col
}

func (l *logical) tokens(source string) []Token {
	s := l.text.String()
	if strings.TrimSpace(s) == "" {
		return nil
	}

	loc := func(start, end int) Location {
		return Location{Source: source, Line: l.number, Start: start, End: end}
	}

	if l.recipe {
		return []Token{{Kind: Recipe, Text: s[1:], Location: loc(0, len(s)-1)}}
	}

	if l.hash >= 0 && strings.TrimSpace(s[:l.hash]) == "" {
		return []Token{{Kind: Comment, Text: strings.TrimSpace(s), Location: loc(0, len(s)-1)}}
	}

	toks := make([]Token, 0, 4)

	var trailing *Token
	if l.hash > 0 {
		trailing = &Token{Kind: Comment, Text: strings.TrimSpace(s[l.hash:]), Location: loc(l.hash, len(s)-1)}
		s = s[:l.hash]
	}

	if op := l.op; op < 0 {
		toks = append(toks, Token{Kind: Identifier, Text: strings.TrimSpace(s), Location: loc(0, len(s)-1)})
	} else {
		if id := strings.TrimSpace(s[:op]); id != "" {
			toks = append(toks, Token{Kind: Identifier, Text: id, Location: loc(0, op-1)})
		}
		toks = append(toks, Token{Kind: Operator, Text: s[op : op+1], Location: loc(op, op)})
		if rest := s[op+1:]; strings.TrimSpace(rest) != "" {
			toks = append(toks, Token{Kind: RValue, Text: rest, Location: loc(op+1, len(s)-1)})
		}
	}

	if trailing != nil {
		toks = append(toks, *trailing)
	}

	return toks
}
