// Package maker decides which targets of an expanded makefile are stale and
// runs their recipes, depth first.
package maker

import (
	"time"

	"github.com/raphaelvigee/gmk/event"
	"github.com/raphaelvigee/gmk/expander"
	"github.com/raphaelvigee/gmk/lexer"
	"github.com/raphaelvigee/gmk/parser"
	"github.com/raphaelvigee/gmk/pattern"
)

type FileInfo interface {
	Exists(name string) bool
	// ModTime returns the zero time for missing files.
	ModTime(name string) time.Time
}

type Globber interface {
	Glob(pattern string) ([]string, error)
}

type RunOptions struct {
	Silent      bool
	IgnoreError bool
	Shell       string
}

type Executor interface {
	// Run executes one recipe line and returns its exit code. The error is
	// reserved for failures to run the command at all.
	Run(command string, opts RunOptions) (int, error)
}

type Option func(m *Maker)

func WithGoals(goals ...string) Option {
	return func(m *Maker) {
		m.goals = goals
	}
}

func WithFileInfo(fi FileInfo) Option {
	return func(m *Maker) {
		m.fs = fi
	}
}

func WithGlobber(g Globber) Option {
	return func(m *Maker) {
		m.glob = g
	}
}

func WithExecutor(e Executor) Option {
	return func(m *Maker) {
		m.exec = e
	}
}

func WithSink(s event.Sink) Option {
	return func(m *Maker) {
		m.sink = s
	}
}

// Rule is an explicit target after normalization.
type Rule struct {
	Target   string
	Deps     []string
	Recipes  []string
	Location lexer.Location
}

type PatternRule struct {
	Target   pattern.Pattern
	Deps     []string
	Recipes  []string
	Location lexer.Location
}

type Maker struct {
	mf    *parser.Makefile
	exp   *expander.Expander
	goals []string

	fs   FileInfo
	glob Globber
	exec Executor
	sink event.Sink
	now  func() time.Time

	normalized bool
	rules      map[string]*Rule
	order      []string
	patterns   []*PatternRule
}

// New returns a Maker over mf. The collaborators default to ones that see
// no files and refuse to run commands.
func New(mf *parser.Makefile, exp *expander.Expander, opts ...Option) *Maker {
	if exp == nil {
		exp = expander.New(mf.Vars, nil)
	}

	m := &Maker{
		mf:   mf,
		exp:  exp,
		fs:   noFiles{},
		glob: noFiles{},
		exec: noExec{},
		sink: event.Discard,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Rules returns the explicit rules in declaration order.
func (m *Maker) Rules() []*Rule {
	out := make([]*Rule, len(m.order))
	for i, name := range m.order {
		out[i] = m.rules[name]
	}
	return out
}

func (m *Maker) Rule(target string) (*Rule, bool) {
	r, ok := m.rules[target]
	return r, ok
}

func (m *Maker) Patterns() []*PatternRule {
	return m.patterns
}

// DefaultGoal is the first explicit target in declaration order.
func (m *Maker) DefaultGoal() (string, bool) {
	if err := m.ensureNormalized(); err != nil || len(m.order) == 0 {
		return "", false
	}

	return m.order[0], true
}

func (m *Maker) ensureNormalized() error {
	if m.normalized {
		return nil
	}
	return m.Normalize()
}

type noFiles struct{}

func (noFiles) Exists(string) bool {
	return false
}

func (noFiles) ModTime(string) time.Time {
	return time.Time{}
}

func (noFiles) Glob(string) ([]string, error) {
	return nil, nil
}

type noExec struct{}

func (noExec) Run(command string, _ RunOptions) (int, error) {
	return -1, ErrNoExecutor
}
