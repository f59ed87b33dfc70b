package service

import (
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/ridge/connsvc/payload"
)

// Request is a request passed to a Service
type Request[B payload.Payload] struct {
	Method     string
	URL        *url.URL
	Proto      string // "HTTP/1.1"
	Header     http.Header
	Host       string
	RemoteAddr net.Addr // nil if unknown
	Body       B
}

// NewRequest creates a request for the given method and request target
// ("/path?query")
func NewRequest[B payload.Payload](method, target string, body B) (*Request[B], error) {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, fmt.Errorf("invalid request target %q: %w", target, err)
	}
	return &Request[B]{
		Method: method,
		URL:    u,
		Proto:  "HTTP/1.1",
		Header: http.Header{},
		Host:   u.Host,
		Body:   body,
	}, nil
}

// Response is a response returned by a Service
type Response[B payload.Payload] struct {
	Status int // zero means http.StatusOK
	Header http.Header
	Body   B
}

// NewResponse creates a response with an empty header
func NewResponse[B payload.Payload](status int, body B) *Response[B] {
	return &Response[B]{
		Status: status,
		Header: http.Header{},
		Body:   body,
	}
}
