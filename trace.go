package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
	"github.com/stealthrocket/cryptosim/internal/cryptosim"
	"github.com/stealthrocket/cryptosim/internal/human"
	"github.com/stealthrocket/cryptosim/internal/print"
	"github.com/stealthrocket/cryptosim/internal/stream"
	"github.com/stealthrocket/cryptosim/internal/tracelog"
	"github.com/stealthrocket/cryptosim/internal/wire"
)

const traceUsage = `
Usage:	cryptosim trace [options] [path]

   Without a path, the trace file of the configuration is shown.

Options:
   -c, --config path    Path to the cryptosim configuration file (overrides CRYPTOSIMCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
`

func trace(ctx context.Context, args []string) error {
	output := outputFormat("text")

	flagSet := newFlagSet("cryptosim trace", traceUsage)
	customVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}

	var path human.Path
	switch len(args) {
	case 0:
		config, err := cryptosim.LoadConfig()
		if err != nil {
			return err
		}
		if config.Trace.Path == "" {
			return errors.New(`no trace file in the configuration, expected a path as argument`)
		}
		path = config.Trace.Path
	case 1:
		path = human.Path(args[0])
	default:
		return errors.New(`expected at most one trace file as argument`)
	}

	name, err := path.Expand()
	if err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := tracelog.NewReader(f)
	if err != nil {
		return err
	}

	var writer stream.WriteCloser[traceEntry]
	switch output {
	case "json":
		writer = print.NewJSONWriter[traceEntry](os.Stdout)
	case "yaml":
		writer = print.NewYAMLWriter[traceEntry](os.Stdout)
	default:
		writer = print.NewTextWriter[traceEntry](os.Stdout, "%v\n")
	}
	defer writer.Close()

	_, err = stream.Copy[traceEntry](writer, &traceEntryReader{records: records})
	return err
}

// traceEntry is the printable form of one recorded call.
type traceEntry struct {
	Time    time.Time   `json:"time" yaml:"time"`
	Call    string      `json:"call" yaml:"call"`
	Status  string      `json:"status" yaml:"status"`
	Request human.Bytes `json:"request" yaml:"request"`
	Reply   human.Bytes `json:"reply" yaml:"reply"`
}

func (e traceEntry) String() string {
	return fmt.Sprintf("%s  %-18s %-20s %s > %s",
		e.Time.Format("2006-01-02T15:04:05.000"), e.Call, e.Status, e.Request, e.Reply)
}

// traceEntryReader turns recorded calls into printable entries. Records alias
// the trace reader state, so each one is described before reading the next.
type traceEntryReader struct {
	records *tracelog.Reader
}

func (r *traceEntryReader) Read(entries []traceEntry) (n int, err error) {
	for n < len(entries) {
		record, err := r.records.ReadRecord()
		if err != nil {
			return n, err
		}
		entries[n] = describeRecord(record)
		n++
	}
	return n, nil
}

// describeRecord parses the recorded messages with the same codec the server
// uses. A trace recorded by a host with a different native layout does not
// parse; its sizes still print.
func describeRecord(record *tracelog.Record) traceEntry {
	e := traceEntry{
		Time:    record.Time,
		Call:    "?",
		Status:  "?",
		Request: human.Bytes(len(record.Request)),
		Reply:   human.Bytes(len(record.Reply)),
	}
	c := wire.NewCursor(record.Request)
	if wire.GetHeader(c) == nil {
		if id, err := cryptocall.GetCallID(c); err == nil {
			e.Call = id.String()
		}
	}
	c = wire.NewCursor(record.Reply)
	if wire.GetHeader(c) == nil {
		if status, err := cryptocall.GetStatus(c); err == nil {
			e.Status = status.String()
		}
	}
	return e
}
