package main

import (
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
)

var helpTests = tests{
	"calling help without arguments prints the command list": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim <command> ")
		assert.Equal(t, stderr, "")
	},

	"calling help with an unknown command causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "cryptosim help whatever: unknown command\n")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, exitCode := invoke(t, "help", "-_")
		assert.Equal(t, exitCode, 2)
	},

	"cryptosim help config": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "config")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim config ")
		assert.Equal(t, stderr, "")
	},

	"cryptosim help hash": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "hash")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim hash ")
		assert.Equal(t, stderr, "")
	},

	"cryptosim help help": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim <command> ")
		assert.Equal(t, stderr, "")
	},

	"cryptosim help random": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "random")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim random ")
		assert.Equal(t, stderr, "")
	},

	"cryptosim help serve": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "serve")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim serve ")
		assert.Equal(t, stderr, "")
	},

	"cryptosim help trace": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "trace")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim trace ")
		assert.Equal(t, stderr, "")
	},

	"cryptosim help version": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "help", "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim version\n")
		assert.Equal(t, stderr, "")
	},
}
