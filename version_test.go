package main

import (
	"strings"
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
)

var versionTests = tests{
	"show the version command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "version", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim version\n")
		assert.Equal(t, stderr, "")
	},

	"show the version command help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "version", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim version\n")
		assert.Equal(t, stderr, "")
	},

	"the version starts with the prefix cryptosim": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "cryptosim ")
		assert.Equal(t, stderr, "")
	},

	"the version number is not empty": func(t *testing.T) {
		stdout, _, exitCode := invoke(t, "version")
		assert.Equal(t, exitCode, 0)

		_, version, _ := strings.Cut(stdout, " ")
		assert.NotEqual(t, strings.TrimSpace(version), "")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, exitCode := invoke(t, "version", "-_")
		assert.Equal(t, exitCode, 2)
	},
}
