package thttp

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/tlog"
	"github.com/ridge/connsvc/tnet"
	"go.uber.org/zap"
)

// aLongTimeAgo is a read deadline that unblocks a pending read at once
var aLongTimeAgo = time.Unix(1, 0)

// serveConn handles one connection until it closes. Requests are read and
// answered strictly in order.
//
// callCtx is the base context for service calls; it stays open for a while
// after ctx is closed.
func (s *Server[ResBody, E, S, MakeErr]) serveConn(ctx, callCtx context.Context, netConn net.Conn) {
	defer netConn.Close()
	stopClose := context.AfterFunc(callCtx, func() {
		_ = netConn.Close()
	})
	defer stopClose()

	ctx = tlog.With(ctx, zap.Stringer("remoteAddr", netConn.RemoteAddr()))
	logger := tlog.Get(ctx)
	callCtx = tlog.WithLogger(callCtx, logger)

	conn, err := describeConn(ctx, netConn, s.config.IdleTimeout)
	if err != nil {
		logger.Debug("TLS handshake failed", zap.Error(err))
		return
	}

	svc, err := s.makeService(ctx, conn)
	if err != nil {
		logger.Warn("Failed to construct service, closing connection", zap.Error(err))
		return
	}
	logger.Debug("Service constructed")

	state := &connState{conn: netConn}
	stop := context.AfterFunc(ctx, state.shutdown)
	defer stop()

	r := bufio.NewReader(netConn)
	w := bufio.NewWriter(netConn)
	for {
		if !state.startIdle(s.config.IdleTimeout) {
			return
		}
		req, err := http.ReadRequest(r)
		if err != nil {
			if !tnet.IsConnectionGone(err) {
				logger.Debug("Malformed request", zap.Error(err))
				writeBadRequest(w)
			}
			return
		}
		state.startActive()

		keepAlive, err := s.serveRequest(callCtx, svc, conn, state, req, w)
		if err != nil {
			if !tnet.IsConnectionGone(err) {
				logger.Debug("Failed to write response", zap.Error(err))
			}
			return
		}
		if !keepAlive {
			return
		}
	}
}

// makeService awaits the service for the connection. A construction that
// fails or does not finish in time yields no service.
func (s *Server[ResBody, E, S, MakeErr]) makeService(ctx context.Context, conn *Conn) (S, error) {
	construction := s.factory.MakeService(conn)
	if s.config.MakeTimeout <= 0 {
		return future.Wait(ctx, construction)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.MakeTimeout)
	defer cancel()
	res, err := future.Go(ctx, construction).Wait(ctx)
	if err != nil {
		var zero S
		return zero, fmt.Errorf("service construction abandoned: %w", err)
	}
	return res.Unpack()
}

// describeConn performs the TLS handshake, if any, within timeout
func describeConn(ctx context.Context, netConn net.Conn, timeout time.Duration) (*Conn, error) {
	conn := &Conn{
		RemoteAddr: netConn.RemoteAddr(),
		LocalAddr:  netConn.LocalAddr(),
	}
	if tlsConn, ok := netConn.(*tls.Conn); ok {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, err
		}
		state := tlsConn.ConnectionState()
		conn.TLS = &state
	}
	return conn, nil
}

// connState tracks whether a connection waits for a request, so that
// shutdown closes idle connections without interrupting requests in flight
type connState struct {
	conn net.Conn

	mu      sync.Mutex
	idle    bool
	closing bool
}

func (cs *connState) shutdown() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.closing = true
	if cs.idle {
		_ = cs.conn.SetReadDeadline(aLongTimeAgo)
	}
}

// startIdle returns false if the connection is shutting down
func (cs *connState) startIdle(timeout time.Duration) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.closing {
		return false
	}
	cs.idle = true
	if timeout > 0 {
		_ = cs.conn.SetReadDeadline(time.Now().Add(timeout))
	}
	return true
}

func (cs *connState) startActive() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.idle = false
	if !cs.closing {
		_ = cs.conn.SetReadDeadline(time.Time{})
	}
}

func (cs *connState) isClosing() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.closing
}
