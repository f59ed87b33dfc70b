package thttp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ridge/connsvc/opaque"
	"github.com/ridge/connsvc/payload"
	"github.com/ridge/connsvc/service"
	"github.com/ridge/connsvc/tlog"
	"go.uber.org/zap"
)

// maxDrainBytes is how much of an unread request body is discarded to keep
// the connection alive. Connections with more left are closed.
const maxDrainBytes = 256 << 10

// serveRequest passes one request to the service and writes the response.
// Returns whether the connection may be used for the next request.
func (s *Server[ResBody, E, S, MakeErr]) serveRequest(ctx context.Context, svc S, conn *Conn, state *connState, hreq *http.Request, w *bufio.Writer) (bool, error) {
	defer hreq.Body.Close()

	req := &service.Request[payload.Payload]{
		Method:     hreq.Method,
		URL:        hreq.URL,
		Proto:      hreq.Proto,
		Header:     hreq.Header,
		Host:       hreq.Host,
		RemoteAddr: conn.RemoteAddr,
		Body:       payload.FromReader(hreq.Body, hreq.ContentLength),
	}

	status, header, body := http.StatusInternalServerError, http.Header{}, payload.Payload(payload.Empty())
	res := svc.Call(req).Await(ctx)
	switch {
	case !res.OK():
		tlog.Get(ctx).Warn("Request failed", zap.String("method", hreq.Method), zap.Stringer("url", hreq.URL),
			zap.Error(opaque.Erase(res.Err())))
	case res.Value() == nil:
		tlog.Get(ctx).Error("Service returned no response", zap.String("method", hreq.Method), zap.Stringer("url", hreq.URL))
	default:
		resp := res.Value()
		status, header = resp.Status, resp.Header
		if any(resp.Body) != nil {
			body = resp.Body
		}
	}

	keepAlive := !hreq.Close && !state.isClosing() && !wantsClose(header)
	if body.ContentLength() == payload.UnknownLength && !hreq.ProtoAtLeast(1, 1) {
		// HTTP/1.0 has no chunked encoding, so the body is delimited by closing
		keepAlive = false
	}
	if err := writeResponse(ctx, w, hreq, status, header, body, keepAlive); err != nil {
		return false, err
	}

	if !keepAlive {
		return false, nil
	}
	n, err := io.CopyN(io.Discard, hreq.Body, maxDrainBytes+1)
	if n > maxDrainBytes || (err != nil && !errors.Is(err, io.EOF)) {
		return false, nil
	}
	return true, nil
}

func writeResponse(ctx context.Context, w *bufio.Writer, hreq *http.Request, status int, header http.Header, body payload.Payload, keepAlive bool) error {
	if status == 0 {
		status = http.StatusOK
	}
	header = header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if header.Get("Date") == "" {
		header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	}
	header.Del("Connection")
	if keepAlive && !hreq.ProtoAtLeast(1, 1) {
		header.Set("Connection", "keep-alive")
	}

	resp := &http.Response{
		StatusCode:    status,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Request:       hreq,
		Header:        header,
		ContentLength: body.ContentLength(),
		Body:          io.NopCloser(payload.NewReader(ctx, body)),
		Close:         !keepAlive,
	}
	if resp.ContentLength == payload.UnknownLength && hreq.ProtoAtLeast(1, 1) {
		resp.TransferEncoding = []string{"chunked"}
	}
	if err := resp.Write(w); err != nil {
		return err
	}
	return w.Flush()
}

// wantsClose returns if the header asks to close the connection
func wantsClose(header http.Header) bool {
	for _, v := range header.Values("Connection") {
		for _, token := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "close") {
				return true
			}
		}
	}
	return false
}

func writeBadRequest(w *bufio.Writer) {
	_, _ = w.WriteString("HTTP/1.1 400 Bad Request\r\nContent-Type: text/plain; charset=utf-8\r\nConnection: close\r\n\r\n400 Bad Request")
	_ = w.Flush()
}
