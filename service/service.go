package service

import (
	"context"

	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/payload"
)

// Service handles the requests of one connection
type Service[ReqBody, ResBody payload.Payload, E error] interface {
	// Call returns a future of the response to req. The server awaits it
	// before calling the service again.
	Call(req *Request[ReqBody]) future.Future[*Response[ResBody], E]
}

// Func is a function implementing Service
type Func[ReqBody, ResBody payload.Payload, E error] func(req *Request[ReqBody]) future.Future[*Response[ResBody], E]

// Call implements Service
func (f Func[ReqBody, ResBody, E]) Call(req *Request[ReqBody]) future.Future[*Response[ResBody], E] {
	return f(req)
}

// FuncOK is an infallible synchronous function implementing Service. The
// function is called when the future returned by Call is awaited.
type FuncOK[ReqBody, ResBody payload.Payload] func(req *Request[ReqBody]) *Response[ResBody]

// Call implements Service
func (f FuncOK[ReqBody, ResBody]) Call(req *Request[ReqBody]) future.Future[*Response[ResBody], error] {
	return func(context.Context) future.Result[*Response[ResBody], error] {
		return future.Ok[*Response[ResBody], error](f(req))
	}
}
