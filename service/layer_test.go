package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/payload"
	"github.com/ridge/connsvc/test"
	"github.com/ridge/connsvc/tlog"
	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type echo = Service[payload.Payload, *payload.Body, error]

func tag(name string) func(echo) echo {
	return func(next echo) echo {
		return Func[payload.Payload, *payload.Body, error](func(req *Request[payload.Payload]) future.Future[*Response[*payload.Body], error] {
			req.Header.Add("X-Trace", name)
			return next.Call(req)
		})
	}
}

func TestWrap(t *testing.T) {
	var trace []string
	inner := FuncOK[payload.Payload, *payload.Body](func(req *Request[payload.Payload]) *Response[*payload.Body] {
		trace = req.Header.Values("X-Trace")
		return NewResponse(http.StatusNoContent, payload.Empty())
	})
	svc := Wrap[payload.Payload, *payload.Body, error](inner, tag("first"), tag("second"))

	req := must.OK1(NewRequest[payload.Payload](http.MethodGet, "/", payload.Empty()))
	resp, err := future.Wait(test.Context(t), svc.Call(req))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Equal(t, []string{"first", "second"}, trace)
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := tlog.WithLogger(context.Background(), zap.New(core))

	svc := Log[payload.Payload, *payload.Body, error](greeter(func(req *Request[payload.Payload]) *Response[*payload.Body] {
		return NewResponse(http.StatusOK, payload.String("hi"))
	}))
	req := must.OK1(NewRequest[payload.Payload](http.MethodPost, "/greet?lang=en", payload.String("body")))
	_, err := future.Wait(ctx, svc.Call(req))
	require.NoError(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "Request handling started", entries[0].Message)
	assert.Equal(t, "Request handling ended", entries[1].Message)
	fields := entries[1].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/greet?lang=en", fields["url"])
	assert.EqualValues(t, http.StatusOK, fields["statusCode"])
}

func TestLogFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := tlog.WithLogger(context.Background(), zap.New(core))

	svc := Log[payload.Payload, *payload.Body, makeError](Func[payload.Payload, *payload.Body, makeError](func(*Request[payload.Payload]) future.Future[*Response[*payload.Body], makeError] {
		return future.Failed[*Response[*payload.Body]](makeError{addr: "127.0.0.1:54321"})
	}))
	req := must.OK1(NewRequest[payload.Payload](http.MethodGet, "/", payload.Empty()))
	res := svc.Call(req).Await(ctx)
	require.False(t, res.OK())
	assert.Equal(t, makeError{addr: "127.0.0.1:54321"}, res.Err())

	failed := logs.FilterMessage("Request handling failed").AllUntimed()
	require.Len(t, failed, 1)
	assert.Equal(t, "refusing 127.0.0.1:54321", failed[0].ContextMap()["error"])
}

func oopsService(*Request[payload.Payload]) *Response[*payload.Body] {
	panic(errors.New("oops"))
}

func TestRecover(t *testing.T) {
	svc := Recover[payload.Payload, *payload.Body, error](greeter(oopsService))
	req := must.OK1(NewRequest[payload.Payload](http.MethodGet, "/", payload.Empty()))

	_, err := future.Wait(test.Context(t), svc.Call(req))
	require.EqualError(t, err, "panic: oops")
	var errPanic parallel.ErrPanic
	require.ErrorAs(t, err, &errPanic)
	require.Equal(t, errors.New("oops"), errPanic.Value)
	require.Regexp(t, "(?s)^goroutine.*oopsService", string(errPanic.Stack))
}

func TestRecoverPassesErrors(t *testing.T) {
	svc := Recover[payload.Payload, *payload.Body, makeError](Func[payload.Payload, *payload.Body, makeError](func(*Request[payload.Payload]) future.Future[*Response[*payload.Body], makeError] {
		return future.Failed[*Response[*payload.Body]](makeError{addr: "x"})
	}))
	req := must.OK1(NewRequest[payload.Payload](http.MethodGet, "/", payload.Empty()))
	res := svc.Call(req).Await(test.Context(t))
	require.False(t, res.OK())
	var me makeError
	require.ErrorAs(t, res.Err(), &me)
	assert.Equal(t, "x", me.addr)
}

func TestRecoverPassesResponses(t *testing.T) {
	svc := Recover[payload.Payload, *payload.Body, error](greeter(func(*Request[payload.Payload]) *Response[*payload.Body] {
		return NewResponse(http.StatusAccepted, payload.String("fine"))
	}))
	req := must.OK1(NewRequest[payload.Payload](http.MethodGet, "/", payload.Empty()))
	resp, err := future.Wait(test.Context(t), svc.Call(req))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.Status)
}
