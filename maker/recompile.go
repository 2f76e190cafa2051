package maker

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/raphaelvigee/gmk/event"
)

type status int

const (
	unvisited status = iota
	resolving
	resolved
	failed
)

type result struct {
	rebuilt bool
	mtime   time.Time
	err     error
}

// run holds the state of one Recompile call.
type run struct {
	m       *Maker
	status  map[string]status
	results map[string]result
}

// Recompile brings goals up to date. Without goals, the constructor goals or
// else the default goal are used. The first failing recipe aborts the call.
func (m *Maker) Recompile(goals ...string) error {
	if err := m.ensureNormalized(); err != nil {
		return err
	}

	if len(goals) == 0 {
		goals = m.goals
	}
	if len(goals) == 0 {
		if g, ok := m.DefaultGoal(); ok {
			goals = []string{g}
		}
	}
	if len(goals) == 0 {
		return ErrNoTargets
	}

	r := &run{
		m:       m,
		status:  map[string]status{},
		results: map[string]result{},
	}

	for _, g := range goals {
		if _, _, err := r.build(g, ""); err != nil {
			return err
		}
	}

	return nil
}

// build makes target up to date. dropped reports a dependency cycle through
// target, in which case the edge from parent is ignored.
func (r *run) build(target, parent string) (res result, dropped bool, err error) {
	switch r.status[target] {
	case resolving:
		r.m.sink.Emit(event.CircularDependency{Target: target, From: parent})
		return result{}, true, nil
	case resolved, failed:
		prev := r.results[target]
		return prev, false, prev.err
	}

	r.status[target] = resolving

	res, err = r.resolve(target, parent)
	res.err = err
	r.results[target] = res
	if err != nil {
		r.status[target] = failed
		return res, false, err
	}

	r.status[target] = resolved
	return res, false, nil
}

func (r *run) resolve(target, parent string) (result, error) {
	m := r.m

	p, ok := m.plan(target)
	if !ok {
		return result{}, m.noRule(target, parent)
	}

	if p.Leaf {
		m.sink.Emit(event.NothingToDo{Target: target})
		return result{mtime: m.fs.ModTime(target)}, nil
	}

	deps := make([]string, 0, len(p.Deps))
	forced := false
	var newest time.Time
	for _, d := range p.Deps {
		dres, dropped, err := r.build(d, target)
		if err != nil {
			return result{}, err
		}
		if dropped {
			continue
		}

		deps = append(deps, d)
		forced = forced || dres.rebuilt
		if dres.mtime.After(newest) {
			newest = dres.mtime
		}
	}
	p.Deps = deps

	m.sink.Emit(event.DepsComputed{Target: target, Deps: deps})

	exists := m.fs.Exists(target)
	mtime := m.fs.ModTime(target)

	switch {
	case !exists || forced:
		m.sink.Emit(event.TargetStatus{Target: target, Forced: true})
	case newest.After(mtime):
		m.sink.Emit(event.TargetStatus{Target: target, Forced: false})
	case len(deps) == 0:
		m.sink.Emit(event.NothingToDo{Target: target})
		return result{mtime: mtime}, nil
	default:
		m.sink.Emit(event.UpToDate{Target: target})
		return result{mtime: mtime}, nil
	}

	if len(p.Recipes) == 0 {
		m.sink.Emit(event.NothingToDo{Target: target})
		return result{rebuilt: true, mtime: m.now()}, nil
	}

	if err := r.dispatch(p, mtime, exists); err != nil {
		return result{}, err
	}

	built := m.fs.ModTime(target)
	if !m.fs.Exists(target) {
		built = m.now()
	}

	return result{rebuilt: true, mtime: built}, nil
}

func (r *run) dispatch(p *Plan, mtime time.Time, exists bool) error {
	m := r.m

	shell, err := m.exp.ExpandString("$(SHELL)")
	if err != nil {
		return errors.Wrap(err, "SHELL")
	}

	auto := r.automatic(p, mtime, exists)

	for _, raw := range p.Recipes {
		line, err := m.exp.ExpandWith(raw, auto)
		if err != nil {
			return errors.Wrapf(err, "%v", p.Location)
		}

		command, opts := recipeFlags(line)
		if command == "" {
			continue
		}
		opts.Shell = shell

		code, err := m.exec.Run(command, opts)
		if err != nil {
			return errors.Wrapf(err, "%v: [%v]", p.Location, p.Target)
		}
		if code == 0 {
			continue
		}

		if opts.IgnoreError {
			m.sink.Emit(event.RecipeErrorIgnored{
				Target:   p.Target,
				Command:  command,
				ExitCode: code,
			})
			continue
		}

		return &RecipeError{
			Target:   p.Target,
			Command:  command,
			ExitCode: code,
			Location: p.Location,
		}
	}

	return nil
}

// automatic binds $@ $< $^ $+ $? $* and their D/F forms.
func (r *run) automatic(p *Plan, mtime time.Time, exists bool) map[string]string {
	first := ""
	if len(p.Deps) > 0 {
		first = p.Deps[0]
	}

	newer := make([]string, 0)
	for _, d := range p.Deps {
		res := r.results[d]
		if !exists || res.rebuilt || res.mtime.After(mtime) {
			newer = append(newer, d)
		}
	}

	auto := map[string]string{
		"@": p.Target,
		"<": first,
		"^": strings.Join(p.Deps, " "),
		"+": strings.Join(p.Deps, " "),
		"?": strings.Join(newer, " "),
		"*": p.Stem,
	}

	for _, name := range []string{"@", "<", "^", "+", "?", "*"} {
		words := strings.Fields(auto[name])
		dirs := make([]string, len(words))
		files := make([]string, len(words))
		for i, w := range words {
			dirs[i] = filepath.Dir(w)
			files[i] = filepath.Base(w)
		}
		auto[name+"D"] = strings.Join(dirs, " ")
		auto[name+"F"] = strings.Join(files, " ")
	}

	return auto
}

// recipeFlags strips the leading "@", "-" and "+" markers of a recipe line.
func recipeFlags(line string) (string, RunOptions) {
	var opts RunOptions

	for {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			return "", opts
		}

		switch line[0] {
		case '@':
			opts.Silent = true
		case '-':
			opts.IgnoreError = true
		case '+':
		default:
			return line, opts
		}
		line = line[1:]
	}
}
