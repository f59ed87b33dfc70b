package thttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/ridge/connsvc/payload"
	"github.com/ridge/connsvc/retry"
	"github.com/ridge/connsvc/service"
	"github.com/ridge/connsvc/tlog"
	"github.com/ridge/connsvc/tnet"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 5 * time.Second

var acceptBackoff = retry.ExpConfig{
	Min:   5 * time.Millisecond,
	Max:   time.Second,
	Scale: 2.0,
}

// Conn describes an accepted connection. It is the context value passed to
// the service factory.
type Conn struct {
	RemoteAddr net.Addr
	LocalAddr  net.Addr
	TLS        *tls.ConnectionState // nil for plain connections
}

// Config contains the optional server parameters. The zero value is usable.
type Config struct {
	// MakeTimeout limits the construction of the service for a connection.
	// A connection whose service is not ready in time is closed. Zero means
	// no limit.
	MakeTimeout time.Duration

	// IdleTimeout closes connections on which no new request arrives for
	// this long. It also limits the TLS handshake. Zero means no limit.
	IdleTimeout time.Duration

	// ShutdownTimeout is how long requests in flight may run after the
	// context of Run is closed. Connections still open after that are
	// closed forcibly. Zero means 5 seconds.
	ShutdownTimeout time.Duration
}

// Server serves HTTP/1.x connections, asking the factory for a new service
// for each one
type Server[ResBody payload.Payload, E error, S service.Service[payload.Payload, ResBody, E], MakeErr error] struct {
	listener net.Listener
	factory  service.MakeService[*Conn, payload.Payload, ResBody, E, S, MakeErr]
	config   Config
}

// NewServer creates a Server
func NewServer[ResBody payload.Payload, E error, S service.Service[payload.Payload, ResBody, E], MakeErr error](
	listener net.Listener,
	factory service.MakeService[*Conn, payload.Payload, ResBody, E, S, MakeErr],
	config Config,
) *Server[ResBody, E, S, MakeErr] {
	return &Server[ResBody, E, S, MakeErr]{
		listener: listener,
		factory:  factory,
		config:   config,
	}
}

// ListenAddr returns the local address of the server's listener
func (s *Server[ResBody, E, S, MakeErr]) ListenAddr() net.Addr {
	return s.listener.Addr()
}

// Run serves connections until the context is closed, then performs
// graceful shutdown: the listener and idle connections are closed at once,
// requests in flight get up to Config.ShutdownTimeout to complete, then
// their connections are closed.
//
// Always returns a non-nil error: the context error after shutdown, or the
// error that stopped the accept loop.
func (s *Server[ResBody, E, S, MakeErr]) Run(ctx context.Context) error {
	ctx = tlog.With(ctx, zap.Stringer("httpServer", s.listener.Addr()))
	logger := tlog.Get(ctx)

	// Contexts of calls in flight outlive ctx for up to shutdownTimeout.
	// Closing callCtx also closes all connections.
	callCtx, callCancel := context.WithCancel(context.WithoutCancel(ctx))
	defer callCancel()
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
		case <-finished:
			return
		}
		timer := time.NewTimer(s.shutdownTimeout())
		defer timer.Stop()
		select {
		case <-timer.C:
			logger.Info("Shutdown timed out, closing connections")
			callCancel()
		case <-finished:
		}
	}()

	logger.Info("Serving connections")
	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("accept", parallel.Fail, func(ctx context.Context) error {
			return s.accept(ctx, callCtx, spawn)
		})
		spawn("shutdownHandler", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			logger.Info("Shutting down")
			_ = s.listener.Close()
			return ctx.Err()
		})
		return nil
	})
	logger.Info("Shutdown complete")
	return err
}

func (s *Server[ResBody, E, S, MakeErr]) shutdownTimeout() time.Duration {
	if s.config.ShutdownTimeout > 0 {
		return s.config.ShutdownTimeout
	}
	return defaultShutdownTimeout
}

func (s *Server[ResBody, E, S, MakeErr]) accept(ctx, callCtx context.Context, spawn parallel.SpawnFn) error {
	logger := tlog.Get(ctx)
	backoff := retry.NewExponential(acceptBackoff)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !tnet.IsTemporaryAcceptError(err) {
				return fmt.Errorf("failed to accept connection: %w", err)
			}
			delay := backoff.Next()
			logger.Warn("Failed to accept connection, will retry", zap.Error(err), zap.Duration("delay", delay))
			if err := retry.Sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}
		backoff.Reset()

		spawn("conn:"+conn.RemoteAddr().String(), parallel.Continue, func(ctx context.Context) error {
			s.serveConn(ctx, callCtx, conn)
			return nil
		})
	}
}
