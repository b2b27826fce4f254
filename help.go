package main

import (
	"context"
	"fmt"
	"strings"
)

const helpUsage = `
Usage:	cryptosim <command> [options]

Commands:
   config    Show or edit the cryptosim configuration
   hash      Hash files through a cryptosim server
   help      Show usage information of cryptosim commands
   random    Generate random bytes through a cryptosim server
   serve     Run a cryptosim server
   trace     Show the calls recorded in a trace file
   version   Show the cryptosim version

Options:
   -c, --config path  Path to the cryptosim configuration file (overrides CRYPTOSIMCONFIG)
   -h, --help         Show this usage information

For help about a specific command, run 'cryptosim help <command>'.
`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("cryptosim help", helpUsage)
	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Println(strings.TrimSpace(helpUsage))
		return nil
	}
	for _, cmd := range args {
		var usage string
		switch cmd {
		case "config":
			usage = configUsage
		case "hash":
			usage = hashUsage
		case "help":
			usage = helpUsage
		case "random":
			usage = randomUsage
		case "serve":
			usage = serveUsage
		case "trace":
			usage = traceUsage
		case "version":
			usage = versionUsage
		default:
			return usageError("cryptosim help %s: unknown command", cmd)
		}
		fmt.Println(strings.TrimSpace(usage))
	}
	return nil
}
