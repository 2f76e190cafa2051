package maker

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/raphaelvigee/gmk/lexer"
)

// Plan is the rule chosen to build one target.
type Plan struct {
	Target  string
	Deps    []string
	Recipes []string
	// Stem and Pattern are set when a pattern rule was used.
	Stem     string
	Pattern  string
	Location lexer.Location
	// Leaf marks an existing file that no rule builds.
	Leaf bool
}

// Plan returns the rule that would build target.
func (m *Maker) Plan(target string) (*Plan, error) {
	if err := m.ensureNormalized(); err != nil {
		return nil, err
	}

	p, ok := m.plan(target)
	if !ok {
		return nil, m.noRule(target, "")
	}

	return p, nil
}

func (m *Maker) plan(target string) (*Plan, bool) {
	r, explicit := m.rules[target]
	if explicit && len(r.Recipes) > 0 {
		return &Plan{
			Target:   target,
			Deps:     r.Deps,
			Recipes:  r.Recipes,
			Location: r.Location,
		}, true
	}

	if p, ok := m.implicit(target, map[string]bool{target: true}); ok {
		if explicit {
			p.Deps = dedupe(append(p.Deps, r.Deps...))
		}
		return p, true
	}

	if explicit {
		return &Plan{
			Target:   target,
			Deps:     r.Deps,
			Recipes:  r.Recipes,
			Location: r.Location,
		}, true
	}

	if m.fs.Exists(target) {
		return &Plan{Target: target, Leaf: true}, true
	}

	return nil, false
}

type candidate struct {
	rule *PatternRule
	stem string
}

// implicit picks the first pattern rule, by shortest stem then declaration
// order, whose prerequisites can all be satisfied. visiting holds the targets
// on the current search path.
func (m *Maker) implicit(target string, visiting map[string]bool) (*Plan, bool) {
	candidates := make([]candidate, 0)
	for _, pr := range m.patterns {
		stem, ok := Stem(pr.Target.String(), target)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{rule: pr, stem: stem})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].stem) < len(candidates[j].stem)
	})

	for _, c := range candidates {
		deps := make([]string, len(c.rule.Deps))
		for i, d := range c.rule.Deps {
			deps[i] = prerequisite(c.rule.Target, d, c.stem)
		}

		if !m.satisfiable(deps, visiting) {
			continue
		}

		return &Plan{
			Target:   target,
			Deps:     dedupe(deps),
			Recipes:  c.rule.Recipes,
			Stem:     c.stem,
			Pattern:  c.rule.Target.String(),
			Location: c.rule.Location,
		}, true
	}

	return nil, false
}

func (m *Maker) satisfiable(deps []string, visiting map[string]bool) bool {
	for _, d := range deps {
		if _, ok := m.rules[d]; ok || m.fs.Exists(d) {
			continue
		}
		if visiting[d] {
			return false
		}

		visiting[d] = true
		_, ok := m.implicit(d, visiting)
		delete(visiting, d)

		if !ok {
			return false
		}
	}

	return true
}

func (m *Maker) noRule(target, neededBy string) error {
	suggestions := make([]string, 0)
	for _, match := range fuzzy.Find(target, m.order) {
		if match.Str == target {
			continue
		}
		suggestions = append(suggestions, match.Str)
		if len(suggestions) == 3 {
			break
		}
	}

	return &NoRuleError{
		Target:      target,
		NeededBy:    neededBy,
		Suggestions: suggestions,
	}
}
