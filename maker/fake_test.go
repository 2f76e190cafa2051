package maker

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

type fakeFS struct {
	files map[string]time.Time
	clock time.Time
}

func newFS(names ...string) *fakeFS {
	fs := &fakeFS{
		files: map[string]time.Time{},
		clock: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, n := range names {
		fs.touch(n)
	}
	return fs
}

func (f *fakeFS) touch(name string) {
	f.clock = f.clock.Add(time.Second)
	f.files[name] = f.clock
}

func (f *fakeFS) Exists(name string) bool {
	_, ok := f.files[name]
	return ok
}

func (f *fakeFS) ModTime(name string) time.Time {
	return f.files[name]
}

func (f *fakeFS) Glob(pattern string) ([]string, error) {
	out := make([]string, 0)
	for name := range f.files {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeRun struct {
	Command string
	Opts    RunOptions
}

// fakeExec understands "echo", "touch" and "exit" separated by ";".
type fakeExec struct {
	fs     *fakeFS
	runs   []fakeRun
	stdout []string
}

var unquote = strings.NewReplacer(`'`, ``, `"`, ``)

func (e *fakeExec) Run(command string, opts RunOptions) (int, error) {
	e.runs = append(e.runs, fakeRun{Command: command, Opts: opts})

	for _, part := range strings.Split(command, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "echo":
			e.stdout = append(e.stdout, unquote.Replace(strings.Join(fields[1:], " ")))
		case "touch":
			for _, f := range fields[1:] {
				e.fs.touch(f)
			}
		case "exit":
			code, err := strconv.Atoi(fields[1])
			if err != nil {
				return -1, err
			}
			if code != 0 {
				return code, nil
			}
		}
	}

	return 0, nil
}

func (e *fakeExec) commands() []string {
	out := make([]string, len(e.runs))
	for i, r := range e.runs {
		out[i] = r.Command
	}
	return out
}
