package thttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/payload"
	"github.com/ridge/connsvc/service"
)

type handlerResult = future.Result[*service.Response[*payload.Body], error]

// HandlerService adapts a http.Handler to a service. The handler runs when
// the call is awaited, with the await context as the request context. The
// response is buffered in memory.
func HandlerService(handler http.Handler) service.Func[payload.Payload, *payload.Body, error] {
	return func(req *service.Request[payload.Payload]) future.Future[*service.Response[*payload.Body], error] {
		return func(ctx context.Context) handlerResult {
			hreq, err := toHTTPRequest(ctx, req)
			if err != nil {
				return future.Fail[*service.Response[*payload.Body], error](err)
			}

			w := &bufferResponseWriter{header: http.Header{}}
			handler.ServeHTTP(w, hreq)
			if w.sentHeader == nil {
				w.WriteHeader(http.StatusOK)
			}
			return future.Ok[*service.Response[*payload.Body], error](&service.Response[*payload.Body]{
				Status: w.status,
				Header: w.sentHeader,
				Body:   payload.Bytes(w.buffer.Bytes()),
			})
		}
	}
}

func toHTTPRequest(ctx context.Context, req *service.Request[payload.Payload]) (*http.Request, error) {
	if req.URL == nil {
		return nil, errors.New("request without URL")
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	if major, minor, ok := http.ParseHTTPVersion(req.Proto); ok {
		hreq.Proto, hreq.ProtoMajor, hreq.ProtoMinor = req.Proto, major, minor
	}
	hreq.Header = req.Header.Clone()
	if hreq.Header == nil {
		hreq.Header = http.Header{}
	}
	hreq.Host = req.Host
	hreq.RequestURI = req.URL.RequestURI()
	if req.RemoteAddr != nil {
		hreq.RemoteAddr = req.RemoteAddr.String()
	}
	if any(req.Body) != nil && req.Body.ContentLength() != 0 {
		hreq.Body = io.NopCloser(payload.NewReader(ctx, req.Body))
		hreq.ContentLength = req.Body.ContentLength()
	}
	return hreq, nil
}

type bufferResponseWriter struct {
	header http.Header
	buffer bytes.Buffer
	status int
	// changes to Header() after WriteHeader() are ignored, so we need to store a copy
	sentHeader http.Header
}

func (w *bufferResponseWriter) Header() http.Header {
	return w.header
}

func (w *bufferResponseWriter) Write(p []byte) (int, error) {
	if w.sentHeader == nil {
		w.WriteHeader(http.StatusOK)
	}
	return w.buffer.Write(p)
}

// WriteHeader ignores repeated calls, as net/http does
func (w *bufferResponseWriter) WriteHeader(status int) {
	if w.sentHeader != nil {
		return
	}
	w.status = status
	w.sentHeader = w.header.Clone()
}
