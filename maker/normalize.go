package maker

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/raphaelvigee/gmk/event"
	"github.com/raphaelvigee/gmk/functions"
	"github.com/raphaelvigee/gmk/lexer"
	"github.com/raphaelvigee/gmk/parser"
	"github.com/raphaelvigee/gmk/pattern"
)

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// Normalize expands the makefile if needed and builds the explicit rule map
// and the pattern rule list.
func (m *Maker) Normalize() error {
	if err := m.exp.Expand(m.mf); err != nil {
		return err
	}

	m.rules = map[string]*Rule{}
	m.order = make([]string, 0)
	m.patterns = make([]*PatternRule, 0)

	for _, r := range m.mf.Rules {
		if r.Target == "" {
			continue
		}

		deps, err := m.globWords(functions.Words(r.Deps), r.Location)
		if err != nil {
			return err
		}

		if strings.Count(r.Target, "%") == 1 && !isGlob(r.Target) {
			p, _ := pattern.Parse(r.Target)
			m.addPattern(p, deps, r)
			continue
		}

		targets := []string{r.Target}
		if isGlob(r.Target) {
			targets, err = m.globWords(functions.Words(r.Target), r.Location)
			if err != nil {
				return err
			}
		}

		for _, t := range targets {
			m.addExplicit(t, deps, r)
		}
	}

	m.normalized = true
	m.sink.Emit(event.RulesGenerated{Count: len(m.order) + len(m.patterns)})

	return nil
}

func (m *Maker) globWords(words []string, loc lexer.Location) ([]string, error) {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !isGlob(w) {
			out = append(out, w)
			continue
		}

		matches, err := m.glob.Glob(w)
		if err != nil {
			return nil, errors.Wrapf(err, "%v: glob %v", loc, w)
		}
		if len(matches) == 0 {
			m.sink.Emit(event.GlobNoMatch{Pattern: w, Location: loc})
			out = append(out, w)
			continue
		}

		sort.Strings(matches)
		out = append(out, matches...)
	}

	return out, nil
}

func (m *Maker) addExplicit(target string, deps []string, r *parser.Rule) {
	prev, ok := m.rules[target]
	if !ok {
		m.rules[target] = &Rule{
			Target:   target,
			Deps:     dedupe(deps),
			Recipes:  r.Recipes,
			Location: r.Location,
		}
		m.order = append(m.order, target)
		return
	}

	if len(r.Recipes) == 0 {
		prev.Deps = dedupe(append(prev.Deps, deps...))
		return
	}

	if len(prev.Recipes) > 0 {
		m.sink.Emit(event.OverrideWarning{
			Target:   target,
			Prev:     prev.Location,
			Location: r.Location,
		})
	}

	prev.Deps = dedupe(append(append([]string{}, deps...), prev.Deps...))
	prev.Recipes = r.Recipes
	prev.Location = r.Location
}

func (m *Maker) addPattern(p pattern.Pattern, deps []string, r *parser.Rule) {
	same := func(pr *PatternRule) bool {
		return pr.Target == p && strings.Join(pr.Deps, " ") == strings.Join(deps, " ")
	}

	if len(r.Recipes) == 0 {
		kept := m.patterns[:0]
		for _, pr := range m.patterns {
			if same(pr) {
				m.sink.Emit(event.PatternCancelled{
					Target:   p.String(),
					Deps:     strings.Join(deps, " "),
					Location: r.Location,
				})
				continue
			}
			kept = append(kept, pr)
		}
		m.patterns = kept
		return
	}

	pr := &PatternRule{
		Target:   p,
		Deps:     deps,
		Recipes:  r.Recipes,
		Location: r.Location,
	}

	for i, old := range m.patterns {
		if same(old) {
			m.patterns[i] = pr
			return
		}
	}
	m.patterns = append(m.patterns, pr)
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
