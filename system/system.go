// Package system implements the maker and expander collaborators on top of
// the operating system.
package system

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/raphaelvigee/gmk/maker"
)

// FS answers file queries relative to Dir, or the working directory when
// Dir is empty.
type FS struct {
	Dir string
}

func (f FS) path(name string) string {
	if f.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.Dir, name)
}

func (f FS) Exists(name string) bool {
	_, err := os.Stat(f.path(name))
	return err == nil
}

func (f FS) ModTime(name string) time.Time {
	info, err := os.Stat(f.path(name))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

type Glob struct {
	Dir string
}

func (g Glob) Glob(pattern string) ([]string, error) {
	if g.Dir == "" || filepath.IsAbs(pattern) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		return matches, nil
	}

	matches, err := filepath.Glob(filepath.Join(g.Dir, pattern))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(g.Dir, m)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	sort.Strings(out)

	return out, nil
}

// Shell runs each recipe line with "$SHELL -c", echoing it first unless it
// is silent.
type Shell struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

func (s Shell) Run(command string, opts maker.RunOptions) (int, error) {
	stdout, stderr := s.Stdout, s.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	if !opts.Silent {
		fmt.Fprintln(stdout, command)
	}

	shell := opts.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Dir = s.Dir
	if s.Env != nil {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err != nil {
		var eerr *exec.ExitError
		if errors.As(err, &eerr) {
			return eerr.ExitCode(), nil
		}
		return -1, errors.Wrapf(err, "run %v", shell)
	}

	return 0, nil
}

// DryRun prints recipe lines without running them.
type DryRun struct {
	Stdout io.Writer
}

func (d DryRun) Run(command string, _ maker.RunOptions) (int, error) {
	w := d.Stdout
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w, command)
	return 0, nil
}

// Env resolves names from Overrides first, then from the process environment.
type Env struct {
	Overrides map[string]string
}

func (e Env) Lookup(name string) (string, bool) {
	if v, ok := e.Overrides[name]; ok {
		return v, true
	}
	return os.LookupEnv(name)
}

// Environ renders Overrides as KEY=VALUE pairs, sorted by key.
func (e Env) Environ() []string {
	keys := make([]string, 0, len(e.Overrides))
	for k := range e.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + e.Overrides[k]
	}
	return out
}
