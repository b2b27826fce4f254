package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stealthrocket/cryptosim/internal/assert"
	"github.com/stealthrocket/cryptosim/internal/cryptocall"
	"github.com/stealthrocket/cryptosim/internal/tracelog"
	"github.com/stealthrocket/cryptosim/internal/wire"
)

// writeTestTrace records one hash exchange to a trace file and returns its
// path.
func writeTestTrace(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calls.cstl")
	f, err := os.Create(path)
	assert.OK(t, err)
	defer f.Close()

	w, err := tracelog.NewWriter(f, tracelog.Snappy)
	assert.OK(t, err)

	req := wire.NewCursor(make([]byte, 64))
	assert.OK(t, wire.PutHeader(req))
	assert.OK(t, cryptocall.PutCallID(req, cryptocall.CallComputeHash))
	assert.OK(t, cryptocall.PutAlgorithm(req, cryptocall.AlgSHA256))
	assert.OK(t, wire.PutBuffer(req, []byte("abc")))

	rep := wire.NewCursor(make([]byte, 64))
	assert.OK(t, wire.PutHeader(rep))
	assert.OK(t, cryptocall.PutStatus(rep, cryptocall.StatusSuccess))

	assert.OK(t, w.WriteRecord(&tracelog.Record{
		Time:    time.Now(),
		Request: req.Bytes(),
		Reply:   rep.Bytes(),
	}))
	assert.OK(t, w.Flush())
	return path
}

var traceTests = tests{
	"recorded calls print with their name and status": func(t *testing.T) {
		path := writeTestTrace(t)

		stdout, stderr, exitCode := invoke(t, "trace", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.True(t, strings.Contains(stdout, "ComputeHash"))
		assert.True(t, strings.Contains(stdout, "Success"))
	},

	"the json output names the calls": func(t *testing.T) {
		path := writeTestTrace(t)

		stdout, stderr, exitCode := invoke(t, "trace", "-o", "json", path)
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.True(t, strings.Contains(stdout, `"call": "ComputeHash"`))
		assert.True(t, strings.Contains(stdout, `"status": "Success"`))
	},

	"a missing trace file causes an error": func(t *testing.T) {
		_, stderr, exitCode := invoke(t, "trace", filepath.Join(t.TempDir(), "missing.cstl"))
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: cryptosim trace:")
	},
}
