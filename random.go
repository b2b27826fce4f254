package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
	"github.com/stealthrocket/cryptosim/internal/human"
)

const randomUsage = `
Usage:	cryptosim random [options]

Options:
   -c, --config path  Path to the cryptosim configuration file (overrides CRYPTOSIMCONFIG)
   -h, --help         Show this usage information
   -n, --count size   Number of random bytes to generate (default to 32)
   -r, --raw          Write the raw bytes instead of their hexadecimal form
   -S, --socket path  Path of the unix socket of the server (default to the configuration)
`

func random(ctx context.Context, args []string) error {
	var (
		count  = human.Bytes(32)
		raw    = false
		socket human.Path
	)

	flagSet := newFlagSet("cryptosim random", randomUsage)
	customVar(flagSet, &count, "n", "count")
	boolVar(flagSet, &raw, "r", "raw")
	customVar(flagSet, &socket, "S", "socket")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("cryptosim random does not expect any arguments")
	}

	client, err := dialServer(ctx, socket)
	if err != nil {
		return err
	}
	defer client.Close()

	buf := make([]byte, int(count))
	if status := client.GenerateRandom(ctx, buf); status != cryptocall.StatusSuccess {
		return fmt.Errorf("generate random: %s", status)
	}
	if raw {
		_, err := os.Stdout.Write(buf)
		return err
	}
	fmt.Println(hex.EncodeToString(buf))
	return nil
}
