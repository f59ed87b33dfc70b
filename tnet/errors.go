package tnet

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// IsClosedConnectionError returns if the passed error is "closed network connection".
func IsClosedConnectionError(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	// older code paths produce the error without wrapping net.ErrClosed
	return err != nil && strings.HasSuffix(err.Error(), "use of closed network connection")
}

// IsTimeout returns if the passed error is a network timeout, including an
// expired deadline
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTemporaryAcceptError returns if an error returned by net.Listener.Accept
// is worth retrying after a pause rather than stopping the accept loop
func IsTemporaryAcceptError(err error) bool {
	if err == nil || IsClosedConnectionError(err) {
		return false
	}
	return IsTimeout(err) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE) ||
		errors.Is(err, syscall.ENOBUFS) ||
		errors.Is(err, syscall.ENOMEM)
}

// IsConnectionGone returns if the passed error means that the peer has gone
// away or the connection was closed locally. Such errors are part of the
// normal life of a connection and are not worth reporting.
func IsConnectionGone(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		IsClosedConnectionError(err) ||
		IsTimeout(err)
}
