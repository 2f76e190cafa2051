package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/raphaelvigee/gmk/lexer"
)

type SyntaxError struct {
	Msg      string
	Location lexer.Location
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %v", e.Location, e.Msg)
}

func ParseFile(path string) (*Makefile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read makefile")
	}

	return ParseString(string(data), path)
}

func ParseString(text, source string) (*Makefile, error) {
	return Parse(lexer.Tokenize(text, source))
}

func Parse(tokens []lexer.Token) (*Makefile, error) {
	return (&Parser{
		tokens: tokens,
	}).parse()
}

type Parser struct {
	tokens []lexer.Token
	c      int

	mf *Makefile
	// rule is the rule recipes attach to, nil once a non-rule statement
	// has been seen.
	rule *Rule
}

func (p *Parser) parse() (*Makefile, error) {
	p.mf = &Makefile{
		Vars:  NewVariableTable(),
		Rules: make([]*Rule, 0),
	}

	for {
		t, ok := p.peekn(0)
		if !ok {
			break
		}

		switch t.Kind {
		case lexer.Comment:
			p.advance()
		case lexer.Recipe:
			p.advance()
			if p.rule == nil {
				return nil, p.errat(t, "unexpected recipe")
			}
			p.rule.Recipes = append(p.rule.Recipes, t.Text)
		case lexer.Identifier:
			if err := p.statement(); err != nil {
				return nil, err
			}
		default:
			return nil, p.ut(t)
		}
	}

	return p.mf, nil
}

func (p *Parser) statement() error {
	id, _ := p.advance()

	op, ok := p.peekn(0)
	if !ok || op.Kind != lexer.Operator || op.Location.Line != id.Location.Line {
		p.rule = nil
		return p.errat(id, "missing separator")
	}
	p.advance() // Eat op

	var value string
	if rv, ok := p.peekn(0); ok && rv.Kind == lexer.RValue {
		p.advance()
		value = rv.Text
	}

	switch op.Text {
	case "=":
		p.rule = nil
		p.mf.Vars.Set(&Variable{
			Name:     id.Text,
			Value:    strings.TrimPrefix(value, " "),
			Location: id.Location,
		})
	case ":":
		p.rule = &Rule{
			Target:   id.Text,
			Deps:     strings.TrimSpace(value),
			Recipes:  make([]string, 0),
			Location: id.Location,
		}
		p.mf.Rules = append(p.mf.Rules, p.rule)
	default:
		return p.ut(op)
	}

	return nil
}
