package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/raphaelvigee/gmk/config"
	"github.com/raphaelvigee/gmk/event"
	"github.com/raphaelvigee/gmk/expander"
	"github.com/raphaelvigee/gmk/functions"
	"github.com/raphaelvigee/gmk/maker"
	"github.com/raphaelvigee/gmk/parser"
	"github.com/raphaelvigee/gmk/system"
)

var (
	level       string
	verbosity   int
	configPath  string
	profileMode string
	file        string
	dryRun      bool
	envFlags    []string
)

var cfg config.Config
var profiler interface{ Stop() }

func init() {
	rootCmd.PersistentFlags().StringVar(&level, "log", "info", "Log level")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Raise the log level, repeatable")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&profileMode, "profile", "", "Profile mode: "+strings.Join(profileModes(), "|"))
	rootCmd.PersistentFlags().StringArrayVarP(&envFlags, "env", "e", nil, "Environment override KEY=VAL")

	rootCmd.Flags().StringVarP(&file, "file", "f", "Makefile", "Makefile to read")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print recipes without running them")
}

var rootCmd = &cobra.Command{
	Use:           "gmk [goals...]",
	SilenceErrors: true,
	SilenceUsage:  true,
	Short:         "Make-compatible build tool",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("log") {
			c.Log = level
		}
		if flags.Changed("file") {
			c.Makefile = file
		}
		if flags.Changed("dry-run") {
			c.DryRun = dryRun
		}

		overrides, err := parseEnv(envFlags)
		if err != nil {
			return err
		}
		for k, v := range overrides {
			c.Env[k] = v
		}

		cfg = c

		log.SetLevel(levelFor(cfg.Log, verbosity))

		p, err := startProfile(profileMode)
		if err != nil {
			return err
		}
		profiler = p

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args)
	},
}

func levelFor(s string, verbosity int) log.Level {
	l, err := log.ParseLevel(s)
	if err != nil {
		l = log.InfoLevel
	}

	for i := 0; i < verbosity && l < log.TraceLevel; i++ {
		l++
	}

	return l
}

func parseEnv(pairs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.Errorf("invalid env override %q, expected KEY=VAL", p)
		}
		out[k] = v
	}
	return out, nil
}

type workspace struct {
	path string
	dir  string
	mf   *parser.Makefile
	env  system.Env
	sink event.Sink
	exp  *expander.Expander
}

func load(path string) (*workspace, error) {
	mf, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	w := &workspace{
		path: path,
		dir:  filepath.Dir(path),
		mf:   mf,
		env:  system.Env{Overrides: cfg.Env},
		sink: event.NewLogrusSink(log.WithField("makefile", path)),
	}
	w.exp = expander.New(mf.Vars, functions.Builtins(), expander.WithEnv(w.env), expander.WithSink(w.sink))

	return w, nil
}

func (w *workspace) maker(exec maker.Executor, goals ...string) *maker.Maker {
	return maker.New(w.mf, w.exp,
		maker.WithGoals(goals...),
		maker.WithFileInfo(system.FS{Dir: w.dir}),
		maker.WithGlobber(system.Glob{Dir: w.dir}),
		maker.WithExecutor(exec),
		maker.WithSink(w.sink),
	)
}

func run(goals []string) error {
	w, err := load(cfg.Makefile)
	if err != nil {
		return err
	}

	var exec maker.Executor = system.Shell{Dir: w.dir, Env: w.env.Environ()}
	if cfg.DryRun {
		exec = system.DryRun{}
	}

	return w.maker(exec, goals...).Recompile()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)

		var nerr *maker.NoRuleError
		if errors.As(err, &nerr) && len(nerr.Suggestions) > 0 {
			log.Infof("did you mean: %v", strings.Join(nerr.Suggestions, ", "))
		}

		os.Exit(1)
	}
}
