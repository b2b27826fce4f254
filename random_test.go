package main

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
)

var randomTests = tests{
	"the count option sets the number of bytes": func(t *testing.T) {
		socket := startTestServer(t)

		stdout, stderr, exitCode := invoke(t, "random", "-S", socket, "-n", "16")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		b, err := hex.DecodeString(strings.TrimSuffix(stdout, "\n"))
		assert.OK(t, err)
		assert.Equal(t, len(b), 16)
	},

	"two invocations produce different bytes": func(t *testing.T) {
		socket := startTestServer(t)

		first, _, exitCode := invoke(t, "random", "-S", socket)
		assert.Equal(t, exitCode, 0)
		second, _, exitCode := invoke(t, "random", "-S", socket)
		assert.Equal(t, exitCode, 0)
		assert.NotEqual(t, first, second)
	},

	"the raw option writes unencoded bytes": func(t *testing.T) {
		socket := startTestServer(t)

		stdout, stderr, exitCode := invoke(t, "random", "-S", socket, "-r", "-n", "8")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.Equal(t, len(stdout), 8)
	},

	"show the random command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "random", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim random ")
		assert.Equal(t, stderr, "")
	},
}
