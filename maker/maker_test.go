package maker

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelvigee/gmk/event"
	"github.com/raphaelvigee/gmk/expander"
	"github.com/raphaelvigee/gmk/parser"
)

type harness struct {
	m    *Maker
	mf   *parser.Makefile
	fs   *fakeFS
	exec *fakeExec
	rec  *event.Recorder
}

func newHarness(t *testing.T, src string, fs *fakeFS, opts ...Option) *harness {
	mf, err := parser.ParseString(src, "test")
	require.NoError(t, err)

	h := &harness{
		mf:   mf,
		fs:   fs,
		exec: &fakeExec{fs: fs},
		rec:  &event.Recorder{},
	}

	opts = append([]Option{
		WithFileInfo(fs),
		WithGlobber(fs),
		WithExecutor(h.exec),
		WithSink(h.rec),
	}, opts...)
	h.m = New(mf, expander.New(mf.Vars, nil, expander.WithSink(h.rec)), opts...)
	require.NoError(t, h.m.Normalize())

	return h
}

func TestStem(t *testing.T) {
	testCases := []struct {
		pattern string
		target  string
		stem    string
		ok      bool
	}{
		{"e%t", "src/eat", "src/a", true},
		{"c%r", "src/car", "src/a", true},
		{"e%t", "eat", "a", true},
		{"invalid", "src/car", "", false},
		{"lib/%.o", "lib/foo.o", "foo", true},
		{"lib/%.c", "lib/foo.c", "foo", true},
		{"pp-%", "pp-files", "files", true},
		{"p/p-%", "p/p-files", "files", true},
		{"%.o", "lib/foo.c", "", false},
	}
	for _, tc := range testCases {
		stem, ok := Stem(tc.pattern, tc.target)
		assert.Equal(t, tc.ok, ok, tc.pattern+" "+tc.target)
		assert.Equal(t, tc.stem, stem, tc.pattern+" "+tc.target)
	}
}

func TestMaker_Escape(t *testing.T) {
	h := newHarness(t, `
test:
	@echo '$$(SHELL)=$(SHELL)'
`, newFS())

	require.NoError(t, h.m.Recompile())
	assert.Equal(t, []string{"$(SHELL)=/bin/sh"}, h.exec.stdout)
	assert.Equal(t, []fakeRun{{
		Command: "echo '$(SHELL)=/bin/sh'",
		Opts:    RunOptions{Silent: true, Shell: "/bin/sh"},
	}}, h.exec.runs)
}

const chain = `
convert = @echo convert $< to $@; touch $@

files = 1.4 1.3 1.2

%.4: %.3
	$(convert)
%.3: %.2
	$(convert)
%.2: %.1
	$(convert)

pp-%:
	@echo $($*) | tr ' ' \\n
`

func TestMaker_ChainOfImplicits(t *testing.T) {
	h := newHarness(t, chain, newFS("1.1"), WithGoals("1.4", "1.3"))

	require.NoError(t, h.m.Recompile())
	assert.Equal(t, []string{
		"convert 1.1 to 1.2",
		"convert 1.2 to 1.3",
		"convert 1.3 to 1.4",
	}, h.exec.stdout)

	assert.Equal(t, []event.NothingToDo{{Target: "1.1"}}, event.Of[event.NothingToDo](h.rec))
	assert.Equal(t, []event.DepsComputed{
		{Target: "1.2", Deps: []string{"1.1"}},
		{Target: "1.3", Deps: []string{"1.2"}},
		{Target: "1.4", Deps: []string{"1.3"}},
	}, event.Of[event.DepsComputed](h.rec))
	assert.True(t, h.fs.Exists("1.4"))
}

func TestMaker_ChainUpToDate(t *testing.T) {
	h := newHarness(t, chain, newFS("1.1", "1.2", "1.3"))

	require.NoError(t, h.m.Recompile("1.3"))
	assert.Empty(t, h.exec.runs)
	assert.Equal(t, []event.UpToDate{{Target: "1.2"}, {Target: "1.3"}}, event.Of[event.UpToDate](h.rec))

	h.fs.touch("1.2")
	h.rec.Reset()

	require.NoError(t, h.m.Recompile("1.3"))
	assert.Equal(t, []string{"convert 1.2 to 1.3"}, h.exec.stdout)
	assert.Equal(t, []event.TargetStatus{{Target: "1.3", Forced: false}}, event.Of[event.TargetStatus](h.rec))
}

func TestMaker_CancelImplicitRule(t *testing.T) {
	mf, err := parser.ParseString(`
%.2: %.1
	@echo making $@ from $<
%.2: %.1
foo: 1.2
`, "test")
	require.NoError(t, err)

	rec := &event.Recorder{}
	m := New(mf, nil, WithFileInfo(newFS("1.1")), WithSink(rec))

	err = m.Recompile()
	assert.EqualError(t, err, "no rule to make target '1.2', needed by 'foo'")

	var nerr *NoRuleError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "1.2", nerr.Target)
	assert.Equal(t, "foo", nerr.NeededBy)

	cancelled := event.Of[event.PatternCancelled](rec)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "%.2", cancelled[0].Target)
	assert.Equal(t, "%.1", cancelled[0].Deps)
	assert.Empty(t, m.Patterns())
}

func TestMaker_Glob(t *testing.T) {
	h := newHarness(t, "*.foo: *.bar", newFS("1.foo", "2.foo", "1.bar", "2.bar"))

	assert.Equal(t, "*.bar", h.mf.Rules[0].Deps)

	goal, ok := h.m.DefaultGoal()
	require.True(t, ok)
	assert.Equal(t, "1.foo", goal)

	r, ok := h.m.Rule("1.foo")
	require.True(t, ok)
	assert.Equal(t, []string{"1.bar", "2.bar"}, r.Deps)

	_, ok = h.m.Rule("2.foo")
	assert.True(t, ok)
}

func TestMaker_GlobNoMatch(t *testing.T) {
	h := newHarness(t, "x: *.none\n", newFS())

	assert.Equal(t, []event.GlobNoMatch{{
		Pattern:  "*.none",
		Location: h.mf.Rules[0].Location,
	}}, event.Of[event.GlobNoMatch](h.rec))

	r, _ := h.m.Rule("x")
	assert.Equal(t, []string{"*.none"}, r.Deps)

	assert.EqualError(t, h.m.Recompile(), "no rule to make target '*.none', needed by 'x'")
}

func TestMaker_Override(t *testing.T) {
	h := newHarness(t, `
foo: bar
	@echo must not run
foo: baz
	@echo making $@ from $<
bar:
	@echo always making $@
baz:
`, newFS())

	goal, _ := h.m.DefaultGoal()
	assert.Equal(t, "foo", goal)

	names := make([]string, 0)
	for _, r := range h.m.Rules() {
		names = append(names, r.Target)
	}
	assert.Equal(t, []string{"foo", "bar", "baz"}, names)

	warnings := event.Of[event.OverrideWarning](h.rec)
	require.Len(t, warnings, 1)
	assert.Equal(t, "foo", warnings[0].Target)
	assert.Equal(t, "test:2", warnings[0].Prev.String())
	assert.Equal(t, "test:4", warnings[0].Location.String())

	require.NoError(t, h.m.Recompile())
	assert.Equal(t, []string{"always making bar", "making foo from baz"}, h.exec.stdout)

	deps := event.Of[event.DepsComputed](h.rec)
	require.NotEmpty(t, deps)
	assert.Equal(t, event.DepsComputed{Target: "foo", Deps: []string{"baz", "bar"}}, deps[len(deps)-1])
	assert.Equal(t, []event.NothingToDo{{Target: "baz"}}, event.Of[event.NothingToDo](h.rec))
}

func TestMaker_MergeWithoutRecipes(t *testing.T) {
	h := newHarness(t, `
all: a
all: b
	@echo all
all: c
`, newFS("a", "b", "c"))

	r, _ := h.m.Rule("all")
	assert.Equal(t, []string{"b", "a", "c"}, r.Deps)
	assert.Equal(t, []string{"@echo all"}, r.Recipes)
	assert.Equal(t, 3, r.Location.Line)
	assert.Empty(t, event.Of[event.OverrideWarning](h.rec))
}

func TestMaker_Empty(t *testing.T) {
	h := newHarness(t, "", newFS())

	assert.EqualError(t, h.m.Recompile("foo"), "no rule to make target 'foo'")

	_, ok := h.m.DefaultGoal()
	assert.False(t, ok)
	assert.True(t, errors.Is(h.m.Recompile(), ErrNoTargets))
}

func TestMaker_ImplicitRuleSelection(t *testing.T) {
	const src = `
convert = @echo "make $@ from $< (stem=$(*))"

%.o: %.c
	$(convert)

%.o: %.f
	$(convert)

%.f:
	@echo always create $@

lib/%.o: lib/%.c
	$(convert)
`
	testCases := []struct {
		name     string
		files    []string
		goal     string
		expected []string
	}{
		{"first rule", []string{"bar.c", "bar.f"}, "bar.o", []string{"make bar.o from bar.c (stem=bar)"}},
		{"second rule", []string{"bar.f"}, "bar.o", []string{"make bar.o from bar.f (stem=bar)"}},
		{"chained through %.f", nil, "bar.o", []string{"always create bar.f", "make bar.o from bar.f (stem=bar)"}},
		{"shortest stem", []string{"lib/bar.c", "lib/bar.f"}, "lib/bar.o", []string{"make lib/bar.o from lib/bar.c (stem=bar)"}},
		{"directory stem", []string{"lib/bar.f"}, "lib/bar.o", []string{"make lib/bar.o from lib/bar.f (stem=lib/bar)"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, src, newFS(tc.files...))

			require.NoError(t, h.m.Recompile(tc.goal))
			assert.Equal(t, tc.expected, h.exec.stdout)
		})
	}
}

func TestMaker_Plan(t *testing.T) {
	h := newHarness(t, chain, newFS("1.1"))

	p, err := h.m.Plan("1.4")
	require.NoError(t, err)
	assert.Equal(t, "1.4", p.Target)
	assert.Equal(t, []string{"1.3"}, p.Deps)
	assert.Equal(t, "1", p.Stem)
	assert.Equal(t, "%.4", p.Pattern)
	assert.Equal(t, []string{"@echo convert $(<) to $(@); touch $(@)"}, p.Recipes)

	p, err = h.m.Plan("1.1")
	require.NoError(t, err)
	assert.True(t, p.Leaf)

	_, err = h.m.Plan("1.9")
	assert.EqualError(t, err, "no rule to make target '1.9'")
}

func TestMaker_PlanMergesExplicitWithPattern(t *testing.T) {
	h := newHarness(t, `
CC = cc
%.o: %.c
	$(CC) -c $< -o $@
foo.o: foo.h
`, newFS("foo.c", "foo.h"))

	p, err := h.m.Plan("foo.o")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo.c", "foo.h"}, p.Deps)
	assert.Equal(t, "foo", p.Stem)

	require.NoError(t, h.m.Recompile())
	assert.Equal(t, []string{"cc -c foo.c -o foo.o"}, h.exec.commands())
}

func TestMaker_RecipeFailureAborts(t *testing.T) {
	h := newHarness(t, `
all: a b
a:
	exit 2
	echo never
b:
	echo b
`, newFS())

	err := h.m.Recompile()

	var rerr *RecipeError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "a", rerr.Target)
	assert.Equal(t, "exit 2", rerr.Command)
	assert.Equal(t, 2, rerr.ExitCode)
	assert.Equal(t, "test:3: [a] error 2", err.Error())

	assert.Equal(t, []string{"exit 2"}, h.exec.commands())
}

func TestMaker_IgnoredRecipeError(t *testing.T) {
	h := newHarness(t, `
a:
	-exit 3
	@echo after
`, newFS())

	require.NoError(t, h.m.Recompile())
	assert.Equal(t, []string{"after"}, h.exec.stdout)
	assert.Equal(t, []event.RecipeErrorIgnored{{
		Target:   "a",
		Command:  "exit 3",
		ExitCode: 3,
	}}, event.Of[event.RecipeErrorIgnored](h.rec))
	assert.True(t, h.exec.runs[0].Opts.IgnoreError)
}

func TestMaker_CircularDependency(t *testing.T) {
	h := newHarness(t, `
a: b
	@echo a
b: a
	@echo b
`, newFS())

	require.NoError(t, h.m.Recompile())
	assert.Equal(t, []string{"b", "a"}, h.exec.stdout)
	assert.Equal(t, []event.CircularDependency{{Target: "a", From: "b"}}, event.Of[event.CircularDependency](h.rec))
}

func TestMaker_AutomaticVariables(t *testing.T) {
	h := newHarness(t, `
out/prog: a.c lib/b.c a.c
	@echo $@ $< $^ $(@D) $(@F) $(^F) [$*]
`, newFS("a.c", "lib/b.c"))

	require.NoError(t, h.m.Recompile())
	assert.Equal(t, []string{"out/prog a.c a.c lib/b.c out prog a.c b.c []"}, h.exec.stdout)
}

func TestMaker_EnvironmentValuesAreLiteral(t *testing.T) {
	mf, err := parser.ParseString("a:\n\t@echo $(X)\n", "test")
	require.NoError(t, err)

	fs := newFS()
	exec := &fakeExec{fs: fs}
	env := expander.EnvFunc(func(name string) (string, bool) {
		return "p$HOME", name == "X"
	})
	m := New(mf, expander.New(mf.Vars, nil, expander.WithEnv(env)),
		WithFileInfo(fs),
		WithGlobber(fs),
		WithExecutor(exec),
	)

	require.NoError(t, m.Recompile())
	require.Len(t, exec.runs, 1)
	assert.Equal(t, "echo p$HOME", exec.runs[0].Command)
}

func TestMaker_NoExecutor(t *testing.T) {
	mf, err := parser.ParseString("a:\n\ttrue\n", "test")
	require.NoError(t, err)

	err = New(mf, nil).Recompile()
	assert.True(t, errors.Is(err, ErrNoExecutor))
}

func TestMaker_Suggestions(t *testing.T) {
	h := newHarness(t, `
build:
	echo
build-all:
	echo
`, newFS())

	err := h.m.Recompile("bld")

	var nerr *NoRuleError
	require.True(t, errors.As(err, &nerr))
	assert.Contains(t, nerr.Suggestions, "build")
}

func TestRecipeFlags(t *testing.T) {
	testCases := []struct {
		line    string
		command string
		opts    RunOptions
	}{
		{"echo hi", "echo hi", RunOptions{}},
		{"@echo hi", "echo hi", RunOptions{Silent: true}},
		{"-@ rm x", "rm x", RunOptions{Silent: true, IgnoreError: true}},
		{"+ls", "ls", RunOptions{}},
		{"@", "", RunOptions{Silent: true}},
		{"  ", "", RunOptions{}},
	}
	for _, tc := range testCases {
		command, opts := recipeFlags(tc.line)
		assert.Equal(t, tc.command, command, tc.line)
		assert.Equal(t, tc.opts, opts, tc.line)
	}
}
