// Package config loads the optional gmk configuration file.
package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

const DefaultPath = ".gmk.yaml"

type Config struct {
	Makefile string            `yaml:"makefile"`
	Log      string            `yaml:"log"`
	DryRun   bool              `yaml:"dry_run"`
	Env      map[string]string `yaml:"env"`
}

func Default() Config {
	return Config{
		Makefile: "Makefile",
		Log:      "info",
		Env:      map[string]string{},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, errors.Wrap(err, "read config")
	}

	if err := yaml.UnmarshalWithOptions(data, &c, yaml.Strict()); err != nil {
		return c, errors.Wrapf(err, "parse config %v", path)
	}

	if c.Env == nil {
		c.Env = map[string]string{}
	}

	return c, nil
}
