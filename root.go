package main

// Notes on program structure
// --------------------------
//
// Cryptosim uses subcommands to invoke specific functionalities of the program.
// Each subcommand is implemented by a function named after the command, in a
// file of the same name (e.g. the "help" command is implemented by the help
// function in help.go).
//
// The usage message for each command is declared by a constant starting with
// the command name and followed by the suffix "Usage". For example, the usage
// message for the "help" command is declared by the constant helpUsage.
//
// The usage message contains a "Usage:	cryptosim <command>" section presenting
// the structure of the command. Note the tabulation separating "Usage:" and
// "cryptosim".

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/stealthrocket/cryptosim/internal/cryptosim"
	"github.com/stealthrocket/cryptosim/internal/human"
)

const rootUsage = `cryptosim - Software crypto service simulator

   cryptosim runs cryptographic computations behind a unix socket, with clients
   calling into the server through a compact binary protocol. It stands in for
   a hardened crypto service so that client code and message marshaling can be
   exercised against a real client/server split.

Example:

   $ cryptosim serve &
   $ cryptosim hash --algorithm sha256 main.go
   2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae  main.go

For a list of commands available, run 'cryptosim help'.`

// root is the cryptosim entrypoint.
func root(args ...string) int {
	var (
		// Secret options, we don't document them since they are only used for
		// development. Since they are not part of the public interface we may
		// remove or change the syntax at any time.
		cpuProfile human.Path
		memProfile human.Path
	)

	if value := os.Getenv("CRYPTOSIMCONFIG"); value != "" {
		cryptosim.ConfigPath = human.Path(value)
	}

	flagSet := newFlagSet("cryptosim", helpUsage)
	customVar(flagSet, &cpuProfile, "cpuprofile")
	customVar(flagSet, &memProfile, "memprofile")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 2
	}

	if args = flagSet.Args(); len(args) == 0 {
		fmt.Println(rootUsage)
		return 0
	}

	if cpuProfile != "" {
		path, _ := cpuProfile.Expand()
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "WARN: could not create CPU profile: %s\n", err)
		} else {
			defer f.Close()
			_ = pprof.StartCPUProfile(f)
			defer pprof.StopCPUProfile()
		}
	}

	if memProfile != "" {
		path, _ := memProfile.Expand()
		defer func() {
			f, err := os.Create(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "WARN: could not create memory profile: %s\n", err)
			}
			defer f.Close()
			runtime.GC()
			_ = pprof.WriteHeapProfile(f)
		}()
	}

	cmd, args := args[0], args[1:]

run_command:
	ctx := context.Background()

	var err error
	switch cmd {
	case "config":
		err = config(ctx, args)
	case "hash":
		err = hash(ctx, args)
	case "help":
		err = help(ctx, args)
	case "random":
		err = random(ctx, args)
	case "serve":
		err = serve(ctx, args)
	case "trace":
		err = trace(ctx, args)
	case "version":
		err = version(ctx, args)
	default:
		err = unknown(ctx, cmd)
	}

	switch e := err.(type) {
	case nil:
		return 0
	case exitCode:
		return int(e)
	case restart:
		goto run_command
	case usage:
		fmt.Fprintf(os.Stderr, "%s\n", e)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "ERR: cryptosim %s: %s\n", cmd, err)
		return 1
	}
}

// dialServer connects to the server listening on the given socket, falling
// back to the socket of the configuration when none is passed.
func dialServer(ctx context.Context, socket human.Path) (*cryptosim.Client, error) {
	if socket == "" {
		config, err := cryptosim.LoadConfig()
		if err != nil {
			return nil, err
		}
		socket = config.Server.Socket
	}
	path, err := socket.Expand()
	if err != nil {
		return nil, err
	}
	return cryptosim.Dial(ctx, "unix", path)
}

// exitCode is an error type returned from command functions to indicate the
// exit code that should be returned by the program.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit: %d", e)
}

// restart is an error type returned from command functions to indicate
// that a command should be restarted.
type restart struct{}

func (restart) Error() string { return "restart" }

// usage is an error type returned from command functions to indicate a usage
// error.
//
// Usage erors cause the program to exist with status code 2.
type usage string

func usageError(msg string, args ...any) error {
	return usage(fmt.Sprintf(msg, args...))
}

func (e usage) Error() string {
	return string(e)
}

func setEnum[T ~string](enum *T, typ string, value string, options ...string) error {
	for _, option := range options {
		if option == value {
			*enum = T(option)
			return nil
		}
	}
	return fmt.Errorf("unsupported %s: %q (not one of %s)", typ, value, strings.Join(options, ", "))
}

type compression string

func (c compression) String() string {
	return string(c)
}

func (c *compression) Set(value string) error {
	return setEnum(c, "compression type", value, "snappy", "zstd", "none")
}

type outputFormat string

func (o outputFormat) String() string {
	return string(o)
}

func (o *outputFormat) Set(value string) error {
	return setEnum(o, "output format", value, "text", "json", "yaml")
}

func newFlagSet(cmd, usage string) *flag.FlagSet {
	usage = strings.TrimSpace(usage)
	flagSet := flag.NewFlagSet(cmd, flag.ContinueOnError)
	flagSet.Usage = func() { fmt.Println(usage) }
	flagSet.SetOutput(io.Discard)
	customVar(flagSet, &cryptosim.ConfigPath, "c", "config")
	return flagSet
}

// parseFlags is a greedy parser which consumes all options known to f and
// returns the remaining arguments.
func parseFlags(f *flag.FlagSet, args []string) ([]string, error) {
	var unknownArgs []string
	for {
		if err := f.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				// The flag set already printed its usage message.
				return nil, exitCode(0)
			}
			return nil, usageError("%s", err)
		}
		if args = f.Args(); len(args) == 0 {
			return unknownArgs, nil
		}
		i := slices.IndexFunc(args, func(s string) bool {
			return strings.HasPrefix(s, "-")
		})
		if i < 0 {
			i = len(args)
		} else if args[i] == "-" {
			i++
		}
		unknownArgs = append(unknownArgs, args[:i]...)
		args = args[i:]
	}
}

func boolVar(f *flag.FlagSet, dst *bool, name string, alias ...string) {
	f.BoolVar(dst, name, *dst, "")
	for _, name := range alias {
		f.BoolVar(dst, name, *dst, "")
	}
}

func customVar(f *flag.FlagSet, dst flag.Value, name string, alias ...string) {
	f.Var(dst, name, "")
	for _, name := range alias {
		f.Var(dst, name, "")
	}
}
