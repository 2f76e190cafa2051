package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	p := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad(t *testing.T) {
	c, err := Load(write(t, `
makefile: build.mk
dry_run: true
env:
  CC: clang
`))
	require.NoError(t, err)
	assert.Equal(t, Config{
		Makefile: "build.mk",
		Log:      "info",
		DryRun:   true,
		Env:      map[string]string{"CC": "clang"},
	}, c)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(write(t, "makefile: [unterminated\n"))
	assert.Error(t, err)

	_, err = Load(write(t, "unknown_key: 1\n"))
	assert.Error(t, err)
}
