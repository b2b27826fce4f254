package main

import (
	"io"
	"log"
	"os"
)

func init() {
	// The stdlib log output of dependencies is not part of the command output.
	log.SetOutput(io.Discard)
}

func main() {
	os.Exit(root(os.Args[1:]...))
}
