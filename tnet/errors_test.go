package tnet

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsClosedConnectionError(t *testing.T) {
	l := ListenOnRandomPort()
	require.NoError(t, l.Close())
	_, err := l.Accept()
	require.Error(t, err)
	assert.True(t, IsClosedConnectionError(err))
	assert.False(t, IsTemporaryAcceptError(err))
	assert.True(t, IsConnectionGone(err))

	assert.False(t, IsClosedConnectionError(nil))
	assert.False(t, IsClosedConnectionError(io.EOF))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(fmt.Errorf("read: %w", os.ErrDeadlineExceeded)))
	assert.False(t, IsTimeout(io.EOF))
	assert.False(t, IsTimeout(nil))
}

func TestIsTemporaryAcceptError(t *testing.T) {
	assert.True(t, IsTemporaryAcceptError(&os.SyscallError{Syscall: "accept", Err: syscall.EMFILE}))
	assert.True(t, IsTemporaryAcceptError(syscall.ECONNABORTED))
	assert.False(t, IsTemporaryAcceptError(errors.New("permission denied")))
	assert.False(t, IsTemporaryAcceptError(nil))
}

func TestIsConnectionGone(t *testing.T) {
	assert.True(t, IsConnectionGone(io.EOF))
	assert.True(t, IsConnectionGone(fmt.Errorf("write: %w", syscall.EPIPE)))
	assert.False(t, IsConnectionGone(errors.New("malformed HTTP request")))
	assert.False(t, IsConnectionGone(nil))
}

func TestDeadlineIsGone(t *testing.T) {
	l := ListenOnRandomPort()
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err == nil {
			time.Sleep(100 * time.Millisecond)
			conn.Close()
		}
	}()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Millisecond)))
	_, err = conn.Read(make([]byte, 1))
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.True(t, IsConnectionGone(err))
}
