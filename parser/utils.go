package parser

import (
	"fmt"

	"github.com/raphaelvigee/gmk/lexer"
)

func (p *Parser) advance() (lexer.Token, bool) {
	if p.c > len(p.tokens)-1 {
		return lexer.Token{}, false
	}

	t := p.tokens[p.c]
	p.c++
	return t, true
}

func (p *Parser) peekn(i int) (lexer.Token, bool) {
	if p.c+i > len(p.tokens)-1 {
		return lexer.Token{}, false
	}

	return p.tokens[p.c+i], true
}

func (p *Parser) errat(t lexer.Token, f string, args ...interface{}) error {
	return &SyntaxError{
		Msg:      fmt.Sprintf(f, args...),
		Location: t.Location,
	}
}

// Unexpected token
func (p *Parser) ut(t lexer.Token) error {
	return p.errat(t, "unexpected %v: %v", t.Kind, t.Text)
}
