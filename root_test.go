package main

import (
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
)

var rootTests = tests{
	"invoking cryptosim without a command prints the introduction message": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t)
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "cryptosim - Software crypto service simulator\n")
		assert.Equal(t, stderr, "")
	},

	"show the cryptosim help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the cryptosim help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim <command> ")
		assert.Equal(t, stderr, "")
	},

	"passing an unsupported option causes an error": func(t *testing.T) {
		_, stderr, exitCode := invoke(t, "-_")
		assert.Equal(t, exitCode, 2)
		assert.NotEqual(t, stderr, "")
	},
}
