// Package run contains the top-level runner for server binaries.
package run

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridge/connsvc/tlog"
	"github.com/ridge/parallel"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// LogFlags registers the logging flags in fs. The returned function builds
// the logger configuration after fs is parsed.
func LogFlags(fs *pflag.FlagSet) func() (tlog.Config, error) {
	format := fs.String("log-format", string(tlog.FormatText), "Log format (json|text)")
	color := fs.String("log-color", "auto", "Colored logs (yes|no|auto)")
	verbose := fs.BoolP("verbose", "v", false, "Enable verbose (debug level) messages")

	return func() (tlog.Config, error) {
		f, err := tlog.ParseFormat(*format)
		if err != nil {
			return tlog.Config{}, err
		}
		c, err := tlog.ParseColor(*color)
		if err != nil {
			return tlog.Config{}, err
		}
		return tlog.Config{Format: f, Color: c, Verbose: *verbose}, nil
	}
}

// Server runs the top-level task of a server program, watching for signals.
//
// The context passed to the task contains a logger built from config. If an
// interruption or termination signal arrives, the context is closed, and a
// task returning the (possibly wrapped) context error is considered to have
// shut down successfully.
//
// Server does not return. It exits with code 0 on success, and with code 1
// if the task returns any other error.
//
// Any defer handlers installed before calling Server are ignored. For this
// reason, it is recommended that most or all your main code is inside the
// task.
func Server(config tlog.Config, task func(ctx context.Context) error) {
	ctx := tlog.WithLogger(context.Background(), tlog.New(config))
	if err := serve(ctx, task); err != nil {
		tlog.Get(ctx).Error("Error", zap.Error(err))
		_ = tlog.Get(ctx).Sync()
		os.Exit(1)
	}
	_ = tlog.Get(ctx).Sync()
	os.Exit(0)
}

func serve(ctx context.Context, task func(ctx context.Context) error) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, func(ctx context.Context) error {
			err := task(ctx)
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		})
		spawn("signals", parallel.Exit, func(ctx context.Context) error {
			return waitForSignal(ctx, shutdownSignals...)
		})
		return nil
	})
}

var shutdownSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP}

// waitForSignal returns nil once one of the signals arrives
func waitForSignal(ctx context.Context, signals ...os.Signal) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	defer signal.Stop(ch)

	select {
	case sig := <-ch:
		tlog.Get(ctx).Info("Received signal, shutting down", zap.Stringer("signal", sig))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
