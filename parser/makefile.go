package parser

import (
	"github.com/raphaelvigee/gmk/lexer"
)

type Variable struct {
	Name     string
	Value    string
	Location lexer.Location

	// Expanded marks a value that is used literally, without expansion.
	Expanded bool
	// Resolved is set once a computed name has been expanded, so a name
	// holding a literal "$" is not expanded twice.
	Resolved bool
}

type Rule struct {
	Target   string
	Deps     string
	Recipes  []string
	Location lexer.Location

	// Expanded is set once target, deps and recipes have been expanded.
	Expanded bool
}

type Makefile struct {
	Vars  *VariableTable
	Rules []*Rule
}

// VariableTable is an insertion-ordered variable store. Redefinition
// overwrites the stored entry in place.
type VariableTable struct {
	vars  []*Variable
	index map[string]int
}

func NewVariableTable() *VariableTable {
	t := &VariableTable{index: map[string]int{}}
	t.Set(&Variable{
		Name:     "SHELL",
		Value:    "/bin/sh",
		Location: lexer.DefaultLocation,
		Expanded: true,
	})
	return t
}

func (t *VariableTable) Set(v *Variable) {
	if i, ok := t.index[v.Name]; ok {
		t.vars[i] = v
		return
	}
	t.index[v.Name] = len(t.vars)
	t.vars = append(t.vars, v)
}

func (t *VariableTable) Get(name string) (*Variable, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.vars[i], true
}

func (t *VariableTable) Len() int {
	return len(t.vars)
}

func (t *VariableTable) Names() []string {
	names := make([]string, len(t.vars))
	for i, v := range t.vars {
		names[i] = v.Name
	}
	return names
}

// All returns the variables in insertion order.
func (t *VariableTable) All() []*Variable {
	return append([]*Variable(nil), t.vars...)
}

// Rename re-keys the variable stored under from. When to is already taken,
// the entry declared later in the table wins and the other one is dropped.
func (t *VariableTable) Rename(from, to string) {
	i, ok := t.index[from]
	if !ok || from == to {
		return
	}

	v := t.vars[i]
	if j, taken := t.index[to]; taken {
		if j > i {
			t.remove(i)
			return
		}
		t.remove(j)
		i = t.index[from]
	}

	delete(t.index, from)
	v.Name = to
	t.index[to] = i
}

func (t *VariableTable) remove(i int) {
	t.vars = append(t.vars[:i], t.vars[i+1:]...)
	t.index = make(map[string]int, len(t.vars))
	for k, v := range t.vars {
		t.index[v.Name] = k
	}
}
