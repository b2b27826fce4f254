package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
	"github.com/stealthrocket/cryptosim/internal/cryptosim"
	"github.com/stealthrocket/cryptosim/internal/human"
)

const hashUsage = `
Usage:	cryptosim hash [options] <path>...

Options:
   -a, --algorithm name  Hash algorithm, one of sha256, sha384, sha512 (default to sha256)
   -c, --config path     Path to the cryptosim configuration file (overrides CRYPTOSIMCONFIG)
   -h, --help            Show this usage information
   -S, --socket path     Path of the unix socket of the server (default to the configuration)
`

type hashAlgorithm string

func (h hashAlgorithm) String() string {
	return string(h)
}

func (h *hashAlgorithm) Set(value string) error {
	return setEnum(h, "hash algorithm", value, "sha256", "sha384", "sha512")
}

var hashAlgorithms = map[hashAlgorithm]cryptocall.Algorithm{
	"sha256": cryptocall.AlgSHA256,
	"sha384": cryptocall.AlgSHA384,
	"sha512": cryptocall.AlgSHA512,
}

func hash(ctx context.Context, args []string) error {
	var (
		algorithm = hashAlgorithm("sha256")
		socket    human.Path
	)

	flagSet := newFlagSet("cryptosim hash", hashUsage)
	customVar(flagSet, &algorithm, "a", "algorithm")
	customVar(flagSet, &socket, "S", "socket")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return usageError("expected at least one path as argument")
	}

	client, err := dialServer(ctx, socket)
	if err != nil {
		return err
	}
	defer client.Close()

	alg := hashAlgorithms[algorithm]
	for _, path := range args {
		digest, err := hashFile(ctx, client, alg, path)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", hex.EncodeToString(digest), path)
	}
	return nil
}

// hashFile streams the file content to the server instead of sending it in
// one message, so files larger than a frame still hash fine.
func hashFile(ctx context.Context, client *cryptosim.Client, alg cryptocall.Algorithm, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var op cryptocall.HashOperation
	if status := client.HashSetup(ctx, &op, alg); status != cryptocall.StatusSuccess {
		return nil, fmt.Errorf("hash setup: %s", status)
	}
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if status := client.HashUpdate(ctx, &op, buf[:n]); status != cryptocall.StatusSuccess {
				_ = client.HashAbort(ctx, &op)
				return nil, fmt.Errorf("hash update: %s", status)
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			_ = client.HashAbort(ctx, &op)
			return nil, err
		}
	}
	digest, status := client.HashFinish(ctx, &op)
	if status != cryptocall.StatusSuccess {
		return nil, fmt.Errorf("hash finish: %s", status)
	}
	return digest, nil
}
