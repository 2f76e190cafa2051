// Package expander resolves "$(...)" references in variable values, rule
// headers and recipes.
package expander

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/raphaelvigee/gmk/event"
	"github.com/raphaelvigee/gmk/functions"
	"github.com/raphaelvigee/gmk/lexer"
	"github.com/raphaelvigee/gmk/parser"
)

// Env is consulted for names that are not defined in the variable table.
type Env interface {
	Lookup(name string) (string, bool)
}

type EnvFunc func(name string) (string, bool)

func (f EnvFunc) Lookup(name string) (string, bool) {
	return f(name)
}

type CycleError struct {
	Name     string
	Location lexer.Location
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("var '%v' references itself", e.Name)
}

type Option func(e *Expander)

func WithEnv(env Env) Option {
	return func(e *Expander) {
		e.env = env
	}
}

func WithSink(s event.Sink) Option {
	return func(e *Expander) {
		e.sink = s
	}
}

type Expander struct {
	vars  *parser.VariableTable
	funcs functions.Registry
	env   Env
	sink  event.Sink

	cache map[string]Nodes
}

func New(vars *parser.VariableTable, funcs functions.Registry, opts ...Option) *Expander {
	if vars == nil {
		vars = parser.NewVariableTable()
	}
	if funcs == nil {
		funcs = functions.Builtins()
	}

	e := &Expander{
		vars:  vars,
		funcs: funcs,
		sink:  event.Discard,
		cache: map[string]Nodes{},
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Expander) Vars() *parser.VariableTable {
	return e.vars
}

// state is carried through one evaluation.
type state struct {
	inProgress map[string]bool
	// auto holds the automatic variables bound for a recipe line.
	auto map[string]string
	// deferAuto leaves automatic variables and "$$" in the output for a
	// later pass.
	deferAuto bool
	// deferred counts automatic references left in the output.
	deferred int
}

func newState() *state {
	return &state{inProgress: map[string]bool{}}
}

// literal protects a value that must not be expanded again. Deferred output
// goes through ExpandWith once more, so its "$" are escaped.
func (s *state) literal(v string) string {
	if s.deferAuto {
		return strings.ReplaceAll(v, "$", "$$")
	}
	return v
}

var autoVars = map[string]bool{}

func init() {
	for _, n := range []string{"@", "<", "*", "^", "?", "+"} {
		autoVars[n] = true
		autoVars[n+"D"] = true
		autoVars[n+"F"] = true
	}
}

func IsAutomatic(name string) bool {
	return autoVars[name]
}

func (e *Expander) Parse(raw string) (Nodes, error) {
	if ns, ok := e.cache[raw]; ok {
		return ns, nil
	}

	ns, err := parseMacro(e.funcs, raw)
	if err != nil {
		return nil, err
	}

	e.cache[raw] = ns
	return ns, nil
}

func (e *Expander) Evaluate(ns Nodes) (string, error) {
	return e.eval(ns, newState())
}

func (e *Expander) ExpandString(raw string) (string, error) {
	return e.expand(raw, newState())
}

// ExpandWith expands raw with the automatic variables in auto bound.
// Automatic names missing from auto expand to nothing.
func (e *Expander) ExpandWith(raw string, auto map[string]string) (string, error) {
	s := newState()
	s.auto = auto
	if s.auto == nil {
		s.auto = map[string]string{}
	}

	return e.expand(raw, s)
}

// expandDeferred expands ordinary references and keeps automatic variables
// and "$$" escapes for ExpandWith.
func (e *Expander) expandDeferred(raw string) (string, error) {
	s := newState()
	s.deferAuto = true

	return e.expand(raw, s)
}

func (e *Expander) expand(raw string, s *state) (string, error) {
	if !strings.Contains(raw, "$") {
		return raw, nil
	}

	ns, err := e.Parse(raw)
	if err != nil {
		return "", err
	}

	return e.eval(ns, s)
}

func (e *Expander) eval(ns Nodes, s *state) (string, error) {
	var sb strings.Builder

	for _, n := range ns {
		switch n := n.(type) {
		case *Raw:
			sb.WriteString(n.Text)
		case *Escape:
			if s.deferAuto {
				sb.WriteString("$$")
			} else {
				sb.WriteString("$")
			}
		case *Ref:
			before := s.deferred
			name, err := e.eval(n.Name, s)
			if err != nil {
				return "", err
			}
			if s.deferred > before {
				sb.WriteString(n.String())
				continue
			}

			v, err := e.lookup(name, s)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		case *Call:
			v, err := e.call(n, s)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		default:
			panic(fmt.Sprintf("unhandled node %T", n))
		}
	}

	return sb.String(), nil
}

func (e *Expander) lookup(name string, s *state) (string, error) {
	if name == "" {
		return "", nil
	}

	if IsAutomatic(name) {
		if s.auto != nil {
			return s.auto[name], nil
		}
		if s.deferAuto {
			s.deferred++
			return "$(" + name + ")", nil
		}
	}

	v, ok := e.vars.Get(name)
	if !ok {
		if e.env != nil {
			if ev, ok := e.env.Lookup(name); ok {
				return s.literal(ev), nil
			}
		}

		e.sink.Emit(event.UndefinedVariable{Name: name})
		return "", nil
	}

	if v.Expanded {
		return s.literal(v.Value), nil
	}

	if s.inProgress[name] {
		return "", &CycleError{Name: name, Location: v.Location}
	}

	s.inProgress[name] = true
	defer delete(s.inProgress, name)

	return e.expand(v.Value, s)
}

func (e *Expander) call(c *Call, s *state) (string, error) {
	f, ok := e.funcs.Lookup(c.Name)
	if !ok {
		return "", errors.Errorf("unknown function '%v'", c.Name)
	}

	if len(c.Args) < f.Arity {
		e.sink.Emit(event.TooFewArguments{
			Function: c.Name,
			Want:     f.Arity,
			Got:      len(c.Args),
		})
	}

	before := s.deferred
	args := make([]string, max(f.Arity, len(c.Args)))
	for i, a := range c.Args {
		v, err := e.eval(a, s)
		if err != nil {
			return "", err
		}
		args[i] = v
	}

	if s.deferred > before {
		return c.String(), nil
	}

	return f.Call(args), nil
}

// Expand expands mf in place, adopting mf.Vars as the variable table:
// computed variable names are resolved first, every variable is then
// evaluated once to reject reference cycles, and finally rule targets, deps
// and recipes are rewritten. Recipes keep their automatic variables and "$$"
// escapes for ExpandWith. Rules already flagged Expanded are left alone.
func (e *Expander) Expand(mf *parser.Makefile) error {
	e.vars = mf.Vars

	for _, v := range mf.Vars.All() {
		if v.Expanded || v.Resolved || !strings.Contains(v.Name, "$") {
			continue
		}

		name, err := e.ExpandString(v.Name)
		if err != nil {
			return errors.Wrapf(err, "%v", v.Location)
		}
		v.Resolved = true
		mf.Vars.Rename(v.Name, strings.TrimSpace(name))
	}

	for _, v := range mf.Vars.All() {
		if v.Expanded {
			continue
		}

		s := newState()
		s.inProgress[v.Name] = true
		if _, err := e.expand(v.Value, s); err != nil {
			return err
		}
	}

	for _, r := range mf.Rules {
		if r.Expanded {
			continue
		}

		target, err := e.ExpandString(r.Target)
		if err != nil {
			return errors.Wrapf(err, "%v", r.Location)
		}

		deps, err := e.ExpandString(r.Deps)
		if err != nil {
			return errors.Wrapf(err, "%v", r.Location)
		}

		recipes := make([]string, len(r.Recipes))
		for i, line := range r.Recipes {
			recipes[i], err = e.expandDeferred(line)
			if err != nil {
				return errors.Wrapf(err, "%v", r.Location)
			}
		}

		r.Target = strings.TrimSpace(target)
		r.Deps = deps
		r.Recipes = recipes
		r.Expanded = true
	}

	return nil
}
