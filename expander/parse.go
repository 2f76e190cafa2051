package expander

import (
	"github.com/pkg/errors"

	"github.com/raphaelvigee/gmk/functions"
	"github.com/raphaelvigee/gmk/lexer"
)

var (
	mEscape   = lexer.NewMatcher("Escape")
	mExpStart = lexer.NewMatcher("ExpStart")
	mExpEnd   = lexer.NewMatcher("ExpEnd")
	mExpVar   = lexer.NewMatcher("ExpVar")
	mOpen     = lexer.NewMatcher("Open")
	mClose    = lexer.NewMatcher("Close")
	mComma    = lexer.NewMatcher("Comma")
	mSpace    = lexer.NewMatcher("Space")
	mWord     = lexer.NewMatcher("Word")
	mEOF      = lexer.NewMatcher("EOF")

	mArgsEnd = lexer.AnyOf(mExpEnd, mEOF)
)

type macroParser struct {
	funcs  functions.Registry
	tokens []lexer.MacroToken
	c      int
}

// parseMacro turns raw macro text into its AST.
func parseMacro(funcs functions.Registry, raw string) (Nodes, error) {
	toks, err := lexer.TokenizeMacro(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "lexing %q", raw)
	}

	p := &macroParser{
		funcs:  funcs,
		tokens: toks,
	}

	ns, err := p.parseRoot()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", raw)
	}

	return ns, nil
}

func (p *macroParser) advance() lexer.MacroToken {
	if p.c > len(p.tokens)-1 {
		return lexer.NilToken
	}

	t := p.tokens[p.c]
	p.c++
	return t
}

func (p *macroParser) peekn(i int) lexer.MacroToken {
	if p.c+i > len(p.tokens)-1 {
		return lexer.NilToken
	}

	return p.tokens[p.c+i]
}

// expect consumes the next token, which must satisfy m. Running out of
// tokens means a reference was left open.
func (p *macroParser) expect(m lexer.Matcher) (lexer.MacroToken, error) {
	t := p.advance()
	if mEOF.Is(t) && !m.Is(t) {
		return t, ErrUnterminated
	}

	return t, m.Validate(t)
}

func (p *macroParser) parseRoot() (Nodes, error) {
	ns := make(Nodes, 0)

	for {
		t := p.advance()

		switch {
		case mEOF.Is(t):
			return ns, nil
		case mExpStart.Is(t):
			n, err := p.parseExp()
			if err != nil {
				return nil, err
			}
			ns = ns.add(n)
		default:
			ns = ns.add(p.leaf(t))
		}
	}
}

// leaf converts the tokens that never nest.
func (p *macroParser) leaf(t lexer.MacroToken) Node {
	switch {
	case mEscape.Is(t):
		return &Escape{}
	case mExpVar.Is(t):
		return &Ref{Name: Nodes{&Raw{Text: t.Value[1:]}}}
	default:
		return &Raw{Text: t.Value}
	}
}

// parseExp parses the body of a reference, after its opening "$(".
func (p *macroParser) parseExp() (Node, error) {
	name := p.peekn(0)
	if mWord.Is(name) && mSpace.Is(p.peekn(1)) {
		if f, ok := p.funcs.Lookup(name.Value); ok {
			p.advance()
			if _, err := p.expect(mSpace); err != nil {
				return nil, wrap("call "+name.Value, err)
			}

			args, err := p.parseArgs(f.Arity)
			if err != nil {
				return nil, wrap("call "+name.Value, err)
			}

			return &Call{Name: name.Value, Args: args}, nil
		}
	}

	args, err := p.parseArgs(1)
	if err != nil {
		return nil, wrap("ref", err)
	}

	return &Ref{Name: args[0]}, nil
}

// parseArgs reads up to the closing ")" of the current reference, splitting
// at top-level commas into at most n arguments.
func (p *macroParser) parseArgs(n int) ([]Nodes, error) {
	args := make([]Nodes, 0, n)
	cur := make(Nodes, 0)
	depth := 0

	for !mArgsEnd.Is(p.peekn(0)) {
		t := p.advance()

		switch {
		case mExpStart.Is(t):
			e, err := p.parseExp()
			if err != nil {
				return nil, err
			}
			cur = cur.add(e)
		case mComma.Is(t) && depth == 0 && len(args) < n-1:
			args = append(args, cur)
			cur = make(Nodes, 0)
		case mOpen.Is(t):
			depth++
			cur = cur.add(&Raw{Text: t.Value})
		case mClose.Is(t):
			depth--
			cur = cur.add(&Raw{Text: t.Value})
		default:
			cur = cur.add(p.leaf(t))
		}
	}

	if _, err := p.expect(mExpEnd); err != nil {
		return nil, err
	}

	return append(args, cur), nil
}
