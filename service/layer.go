package service

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/opaque"
	"github.com/ridge/connsvc/payload"
	"github.com/ridge/connsvc/tlog"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

// Wrap installs a number of layers on a service. The first layer listed will
// be the first one to see the request.
func Wrap[ReqBody, ResBody payload.Payload, E error](svc Service[ReqBody, ResBody, E], layers ...func(Service[ReqBody, ResBody, E]) Service[ReqBody, ResBody, E]) Service[ReqBody, ResBody, E] {
	for i := len(layers) - 1; i >= 0; i-- {
		svc = layers[i](svc)
	}
	return svc
}

// Log is a layer that logs before and after handling of each request.
// Does not log bodies.
//
// The context passed to the awaited future must contain a logger; the
// context passed downstream contains a sub-logger with the request fields.
func Log[ReqBody, ResBody payload.Payload, E error](next Service[ReqBody, ResBody, E]) Service[ReqBody, ResBody, E] {
	return Func[ReqBody, ResBody, E](func(req *Request[ReqBody]) future.Future[*Response[ResBody], E] {
		call := next.Call(req)
		return func(ctx context.Context) future.Result[*Response[ResBody], E] {
			started := time.Now()
			fields := []zap.Field{zap.String("method", req.Method), zap.String("hostname", req.Host)}
			if req.URL != nil {
				fields = append(fields, zap.Stringer("url", req.URL))
			}
			ctx = tlog.With(ctx, fields...)
			logger := tlog.Get(ctx)
			logger.Debug("Request handling started")

			res := call.Await(ctx)
			if !res.OK() {
				logger.Debug("Request handling failed", zap.Error(opaque.Erase(res.Err())), zap.Duration("elapsed", time.Since(started)))
				return res
			}
			status := 0
			if resp := res.Value(); resp != nil {
				status = resp.Status
			}
			logger.Debug("Request handling ended", zap.Int("statusCode", status), zap.Duration("elapsed", time.Since(started)))
			return res
		}
	})
}

// Recover is a layer that turns a panic during Call or during the await of
// its future into a per-request error. The error is a parallel.ErrPanic
// carrying the stack of the panic location.
//
// Errors of the wrapped service are passed through unchanged.
func Recover[ReqBody, ResBody payload.Payload, E error](next Service[ReqBody, ResBody, E]) Service[ReqBody, ResBody, error] {
	return Func[ReqBody, ResBody, error](func(req *Request[ReqBody]) future.Future[*Response[ResBody], error] {
		return func(ctx context.Context) (res future.Result[*Response[ResBody], error]) {
			defer func() {
				if p := recover(); p != nil {
					res = future.Fail[*Response[ResBody], error](parallel.ErrPanic{Value: p, Stack: debug.Stack()})
				}
			}()
			inner := next.Call(req).Await(ctx)
			if !inner.OK() {
				return future.Fail[*Response[ResBody], error](inner.Err())
			}
			return future.Ok[*Response[ResBody], error](inner.Value())
		}
	})
}
