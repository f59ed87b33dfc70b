// Package test contains helpers for tests of this module.
package test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ridge/connsvc/tlog"
	"github.com/ridge/connsvc/tnet"
	"github.com/ridge/parallel"
	"github.com/stretchr/testify/require"
)

// DefaultTimeout limits the duration of Context and Group
const DefaultTimeout = 30 * time.Second

// Context returns a new testing context with a logger writing to the test
// log. The context is closed with context.DeadlineExceeded after
// DefaultTimeout, or when the test finishes.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(tlog.WithLogger(context.Background(), tlog.NewForTesting(t)), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// Group returns a parallel.Group with a testing context.
//
// The group is shut down when the test finishes, before the test is
// considered complete, so subtasks may still log while shutting down. If the
// group finishes with an error other than context.Canceled, the test is
// failed.
func Group(t *testing.T) *parallel.Group {
	group := parallel.NewGroup(Context(t))
	t.Cleanup(func() {
		group.Exit(nil)
		if err := group.Wait(); !errors.Is(err, context.Canceled) {
			require.NoError(t, err)
		}
	})
	return group
}

// Listener returns a TCP listener on a random local port, closed when the
// test finishes
func Listener(t *testing.T) net.Listener {
	l := tnet.ListenOnRandomPort()
	t.Cleanup(func() {
		_ = l.Close()
	})
	return l
}
