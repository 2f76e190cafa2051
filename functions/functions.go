// Package functions holds the text functions callable as $(name args...).
package functions

import (
	"sort"
	"strconv"
	"strings"

	"github.com/raphaelvigee/gmk/pattern"
)

// Func is a pure text transform over already expanded arguments.
type Func func(args []string) string

// Function describes how a call's text is split: the text after the name is
// cut at commas into at most Arity arguments, the last one keeping any
// remaining commas.
type Function struct {
	Arity int
	Call  Func
}

type Registry map[string]Function

func Builtins() Registry {
	return Registry{
		"dir":        {Arity: 1, Call: dir},
		"notdir":     {Arity: 1, Call: notdir},
		"subst":      {Arity: 3, Call: subst},
		"patsubst":   {Arity: 3, Call: patsubst},
		"strip":      {Arity: 1, Call: strip},
		"words":      {Arity: 1, Call: words},
		"firstword":  {Arity: 1, Call: firstword},
		"lastword":   {Arity: 1, Call: lastword},
		"addprefix":  {Arity: 2, Call: addprefix},
		"addsuffix":  {Arity: 2, Call: addsuffix},
		"basename":   {Arity: 1, Call: basename},
		"suffix":     {Arity: 1, Call: suffix},
		"filter":     {Arity: 2, Call: filter(true)},
		"filter-out": {Arity: 2, Call: filter(false)},
		"sort":       {Arity: 1, Call: sortWords},
		"findstring": {Arity: 2, Call: findstring},
	}
}

func (r Registry) Register(name string, arity int, fn Func) {
	r[name] = Function{Arity: arity, Call: fn}
}

func (r Registry) Lookup(name string) (Function, bool) {
	f, ok := r[name]
	return f, ok
}

func Words(s string) []string {
	return strings.Fields(s)
}

func mapWords(s string, f func(w string) string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = f(w)
	}

	return strings.Join(words, " ")
}

// dir keeps everything up to and including the last slash; a word without
// one lives in "./".
func dir(args []string) string {
	return mapWords(args[0], func(w string) string {
		li := strings.LastIndex(w, "/")
		if li < 0 {
			return "./"
		}
		return w[:li+1]
	})
}

func notdir(args []string) string {
	return mapWords(args[0], func(w string) string {
		li := strings.LastIndex(w, "/")
		if li < 0 {
			return w
		}
		return w[li+1:]
	})
}

func subst(args []string) string {
	from, to, text := args[0], args[1], args[2]
	if from == "" {
		return text
	}

	return strings.ReplaceAll(text, from, to)
}

func patsubst(args []string) string {
	pat, repl, text := strings.TrimSpace(args[0]), strings.TrimSpace(args[1]), args[2]

	p, hasPattern := pattern.Parse(pat)

	return mapWords(text, func(w string) string {
		if !hasPattern {
			if w == pat {
				return repl
			}
			return w
		}

		stem, ok := p.Stem(w)
		if !ok {
			return w
		}
		return strings.Replace(repl, "%", stem, 1)
	})
}

func strip(args []string) string {
	return strings.Join(Words(args[0]), " ")
}

func words(args []string) string {
	return strconv.Itoa(len(Words(args[0])))
}

func firstword(args []string) string {
	ws := Words(args[0])
	if len(ws) == 0 {
		return ""
	}

	return ws[0]
}

func lastword(args []string) string {
	ws := Words(args[0])
	if len(ws) == 0 {
		return ""
	}

	return ws[len(ws)-1]
}

func addprefix(args []string) string {
	prefix := strings.TrimSpace(args[0])

	return mapWords(args[1], func(w string) string {
		return prefix + w
	})
}

func addsuffix(args []string) string {
	suffix := strings.TrimSpace(args[0])

	return mapWords(args[1], func(w string) string {
		return w + suffix
	})
}

// ext returns the index of the extension dot in w, or -1.
func ext(w string) int {
	dot := strings.LastIndex(w, ".")
	if dot < 0 || dot < strings.LastIndex(w, "/") {
		return -1
	}
	return dot
}

func basename(args []string) string {
	return mapWords(args[0], func(w string) string {
		if dot := ext(w); dot >= 0 {
			return w[:dot]
		}
		return w
	})
}

func suffix(args []string) string {
	out := make([]string, 0)
	for _, w := range Words(args[0]) {
		if dot := ext(w); dot >= 0 {
			out = append(out, w[dot:])
		}
	}

	return strings.Join(out, " ")
}

func filter(expected bool) Func {
	return func(args []string) string {
		patterns := Words(args[0])

		out := make([]string, 0)
		for _, w := range Words(args[1]) {
			match := false
			for _, pat := range patterns {
				if p, ok := pattern.Parse(pat); ok && p.Match(w) || pat == w {
					match = true
					break
				}
			}

			if match == expected {
				out = append(out, w)
			}
		}

		return strings.Join(out, " ")
	}
}

func sortWords(args []string) string {
	ws := Words(args[0])
	sort.Strings(ws)

	out := make([]string, 0, len(ws))
	for i, w := range ws {
		if i > 0 && ws[i-1] == w {
			continue
		}
		out = append(out, w)
	}

	return strings.Join(out, " ")
}

func findstring(args []string) string {
	if strings.Contains(args[1], args[0]) {
		return args[0]
	}

	return ""
}
