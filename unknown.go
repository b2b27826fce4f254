package main

import (
	"context"
)

const unknownCommand = `cryptosim %s: unknown command
For a list of commands available, run 'cryptosim help.'
`

func unknown(ctx context.Context, cmd string) error {
	return usageError(unknownCommand, cmd)
}
