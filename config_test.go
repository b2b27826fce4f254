package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
)

var configTests = tests{
	"the default configuration is shown when no file exists": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "config")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.True(t, strings.Contains(stdout, "cryptosim.sock"))
	},

	"the json output is valid json": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "config", "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		var v struct {
			Server struct {
				Socket string `json:"socket"`
			} `json:"server"`
		}
		assert.OK(t, json.Unmarshal([]byte(stdout), &v))
		assert.NotEqual(t, v.Server.Socket, "")
	},

	"the yaml output reflects the configuration file": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		assert.OK(t, os.WriteFile(path, []byte("limits:\n  max-keys: 7\n"), 0600))
		t.Setenv("CRYPTOSIMCONFIG", path)

		stdout, stderr, exitCode := invoke(t, "config", "-o", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.True(t, strings.Contains(stdout, "max-keys: 7"))
	},

	"the config option overrides the environment": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "other.yaml")
		assert.OK(t, os.WriteFile(path, []byte("limits:\n  max-keys: 9\n"), 0600))

		stdout, stderr, exitCode := invoke(t, "config", "-c", path, "-o", "yaml")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.True(t, strings.Contains(stdout, "max-keys: 9"))
	},

	"a configuration with unknown keys is rejected": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		assert.OK(t, os.WriteFile(path, []byte("bogus: 1\n"), 0600))
		t.Setenv("CRYPTOSIMCONFIG", path)

		_, stderr, exitCode := invoke(t, "config")
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: cryptosim config:")
	},
}
