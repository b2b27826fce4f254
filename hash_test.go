package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/cryptosim/internal/assert"
	"github.com/stealthrocket/cryptosim/internal/cryptosim"
)

// startTestServer runs a server on a unix socket for the duration of the
// test and returns the socket path.
func startTestServer(t *testing.T) string {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "cryptosim.sock")
	l, err := net.Listen("unix", socket)
	assert.OK(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	server := &cryptosim.Server{}
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, l) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return socket
}

var hashTests = tests{
	"hashing a file prints its digest": func(t *testing.T) {
		socket := startTestServer(t)
		path := filepath.Join(t.TempDir(), "input.txt")
		assert.OK(t, os.WriteFile(path, []byte("abc"), 0600))

		stdout, stderr, exitCode := invoke(t, "hash", "-S", socket, path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.HasPrefix(t, stdout, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad  ")
	},

	"the algorithm option selects the hash function": func(t *testing.T) {
		socket := startTestServer(t)
		path := filepath.Join(t.TempDir(), "input.txt")
		assert.OK(t, os.WriteFile(path, []byte("abc"), 0600))

		stdout, stderr, exitCode := invoke(t, "hash", "-S", socket, "-a", "sha512", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.HasPrefix(t, stdout, "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f  ")
	},

	"hashing several files prints one line per file": func(t *testing.T) {
		socket := startTestServer(t)
		dir := t.TempDir()
		one := filepath.Join(dir, "one")
		two := filepath.Join(dir, "two")
		assert.OK(t, os.WriteFile(one, []byte("first"), 0600))
		assert.OK(t, os.WriteFile(two, []byte("second"), 0600))

		stdout, stderr, exitCode := invoke(t, "hash", "-S", socket, one, two)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
		assert.Equal(t, len(lines), 2)
		assert.True(t, strings.HasSuffix(lines[0], one))
		assert.True(t, strings.HasSuffix(lines[1], two))
	},

	"hashing a missing file causes an error": func(t *testing.T) {
		socket := startTestServer(t)

		_, stderr, exitCode := invoke(t, "hash", "-S", socket, filepath.Join(t.TempDir(), "missing"))
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: cryptosim hash:")
	},

	"show the hash command help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := invoke(t, "hash", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\tcryptosim hash ")
		assert.Equal(t, stderr, "")
	},
}
