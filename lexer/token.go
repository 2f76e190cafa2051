package lexer

import (
	"fmt"
)

type Kind int

const (
	Comment Kind = iota
	Identifier
	Operator
	RValue
	Recipe
)

var kindNames = map[Kind]string{
	Comment:    "comment",
	Identifier: "id",
	Operator:   "op",
	RValue:     "rvalue",
	Recipe:     "recipe",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Location points at a span of a logical line. Start and End are inclusive
// 0-based columns.
type Location struct {
	Source string
	Line   int
	Start  int
	End    int
}

// DefaultLocation is attached to built-in variables.
var DefaultLocation = Location{Source: "def", Line: -1}

func (l Location) String() string {
	return fmt.Sprintf("%v:%v", l.Source, l.Line)
}

type Token struct {
	Kind     Kind
	Text     string
	Location Location
}

func (t Token) span() string {
	l := t.Location
	return fmt.Sprintf("%v:%v:%v:%v", l.Source, l.Line, l.Start, l.End)
}

func (t Token) StringAlign() string {
	return fmt.Sprintf("%-15v %-7v %q", t.span(), t.Kind, t.Text)
}

func (t Token) String() string {
	return fmt.Sprintf("%v\t%v\t%v", t.span(), t.Kind, t.Text)
}
