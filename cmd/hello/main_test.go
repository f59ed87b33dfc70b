package main

import (
	"bytes"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/payload"
	"github.com/ridge/connsvc/service"
	"github.com/ridge/connsvc/test"
	"github.com/ridge/connsvc/thttp"
	"github.com/ridge/must/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, svc greeter, path string) (int, string) {
	ctx := test.Context(t)
	req := must.OK1(service.NewRequest[payload.Payload](http.MethodGet, path, payload.Empty()))
	resp, err := future.Wait(ctx, svc.Call(req))
	require.NoError(t, err)
	return resp.Status, string(must.OK1(payload.ReadAll(ctx, resp.Body)))
}

func TestGreeter(t *testing.T) {
	ctx := test.Context(t)
	conn1 := &thttp.Conn{RemoteAddr: must.OK1(net.ResolveTCPAddr("tcp", "127.0.0.1:54321"))}
	conn2 := &thttp.Conn{RemoteAddr: must.OK1(net.ResolveTCPAddr("tcp", "127.0.0.1:54322"))}

	svc1, err := future.Wait(ctx, makeGreeter(conn1))
	require.NoError(t, err)
	svc2, err := future.Wait(ctx, makeGreeter(conn2))
	require.NoError(t, err)

	status, body := get(t, svc2, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello, 127.0.0.1:54322", body)

	status, body = get(t, svc1, "/any/path")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello, 127.0.0.1:54321", body)
}

func TestGreeterKeepsAddressOfConstruction(t *testing.T) {
	conn := &thttp.Conn{RemoteAddr: must.OK1(net.ResolveTCPAddr("tcp", "127.0.0.1:54321"))}
	construction := makeGreeter(conn)
	conn.RemoteAddr = must.OK1(net.ResolveTCPAddr("tcp", "127.0.0.1:54399"))

	svc, err := future.Wait(test.Context(t), construction)
	require.NoError(t, err)
	_, body := get(t, svc, "/")
	assert.Equal(t, "Hello, 127.0.0.1:54321", body)
}

func TestHealthz(t *testing.T) {
	conn := &thttp.Conn{RemoteAddr: must.OK1(net.ResolveTCPAddr("tcp", "127.0.0.1:54321"))}
	svc, err := future.Wait(test.Context(t), makeGreeter(conn))
	require.NoError(t, err)

	status, body := get(t, svc, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}

func TestGzipAndCORS(t *testing.T) {
	ctx := test.Context(t)
	conn := &thttp.Conn{RemoteAddr: must.OK1(net.ResolveTCPAddr("tcp", "127.0.0.1:54321"))}
	svc, err := future.Wait(ctx, makeGreeter(conn))
	require.NoError(t, err)

	req := must.OK1(service.NewRequest[payload.Payload](http.MethodGet, "/", payload.Empty()))
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Origin", "http://example.com")
	resp, err := future.Wait(ctx, svc.Call(req))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	compressed := must.OK1(payload.ReadAll(ctx, resp.Body))
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, "Hello, 127.0.0.1:54321", string(must.OK1(io.ReadAll(gz))))
}
