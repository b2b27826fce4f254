package main

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stealthrocket/cryptosim/internal/cryptosim"
	"github.com/stealthrocket/cryptosim/internal/human"
	"github.com/stealthrocket/cryptosim/internal/tracelog"
)

const serveUsage = `
Usage:	cryptosim serve [options]

Options:
   -c, --config path              Path to the cryptosim configuration file (overrides CRYPTOSIMCONFIG)
   -h, --help                     Show this usage information
   -S, --socket path              Path of the unix socket to listen on (default to the configuration)
       --trace path               Record the served calls to a trace file
       --trace-compression type   Compression of the trace file, either snappy, zstd or none (default to zstd)
   -v, --verbose                  Enable debug level logging
`

func serve(ctx context.Context, args []string) error {
	var (
		socket           human.Path
		tracePath        human.Path
		traceCompression compression
		verbose          = false
	)

	flagSet := newFlagSet("cryptosim serve", serveUsage)
	customVar(flagSet, &socket, "S", "socket")
	customVar(flagSet, &tracePath, "trace")
	customVar(flagSet, &traceCompression, "trace-compression")
	boolVar(flagSet, &verbose, "v", "verbose")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("cryptosim serve does not expect any arguments")
	}

	config, err := cryptosim.LoadConfig()
	if err != nil {
		return err
	}
	if socket == "" {
		socket = config.Server.Socket
	}
	if tracePath == "" {
		tracePath = config.Trace.Path
	}
	if traceCompression == "" {
		traceCompression = compression(config.Trace.Compression)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	log := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	))
	defer log.Sync()

	var trace *tracelog.Writer
	if tracePath != "" {
		path, err := tracePath.Expand()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if trace, err = tracelog.NewWriter(f, tracelog.Compression(traceCompression)); err != nil {
			return err
		}
		defer trace.Flush()
		log.Info("recording calls", zap.String("trace", path))
	}

	path, err := socket.Expand()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	// A server which did not shut down cleanly leaves its socket behind.
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	defer l.Close()
	defer os.Remove(path)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := cryptosim.Server{
		Handler:      cryptosim.NewHandler(config),
		MaxFrameSize: int(config.Server.MaxFrameSize),
		Log:          log,
		Trace:        trace,
	}
	log.Info("listening", zap.String("socket", path))
	if err := server.Serve(ctx, l); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
