// Package future implements lazy one-shot asynchronous computations.
//
// A Future does nothing until it is awaited. Creating one and dropping it
// without awaiting has no side effects, which is how a caller cancels a
// computation that has not started. Once started, the computation observes
// the context passed to Await.
//
// A Future resolves to a Result: either a value of type T, or an error of
// type E. The error type is a type parameter so that producers can declare
// their own error types; the constraint guarantees at compile time that
// every such type can be erased into a plain error (see package opaque).
package future

import (
	"context"
	"sync"

	"github.com/ridge/connsvc/opaque"
)

// Future is a lazy computation resolving to a Result
type Future[T any, E error] func(ctx context.Context) Result[T, E]

// Await runs the computation and returns its result
func (f Future[T, E]) Await(ctx context.Context) Result[T, E] {
	return f(ctx)
}

// Ready returns a Future that resolves to value
func Ready[T any, E error](value T) Future[T, E] {
	return func(context.Context) Result[T, E] {
		return Ok[T, E](value)
	}
}

// Failed returns a Future that fails with err
func Failed[T any, E error](err E) Future[T, E] {
	return func(context.Context) Result[T, E] {
		return Fail[T, E](err)
	}
}

// Func returns a Future that calls fn. A nil error from fn means success.
func Func[T any](fn func(ctx context.Context) (T, error)) Future[T, error] {
	return func(ctx context.Context) Result[T, error] {
		value, err := fn(ctx)
		if err != nil {
			return Fail[T, error](err)
		}
		return Ok[T, error](value)
	}
}

// Wait awaits f and returns its value or erased error.
//
// If ctx is already closed, f is not started and the context error is
// returned.
func Wait[T any, E error](ctx context.Context, f Future[T, E]) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return f.Await(ctx).Unpack()
}

// Once returns a Future that runs f at most once. All awaits share the
// result of the first one, including its context: if the first await is
// canceled, so are the rest.
func Once[T any, E error](f Future[T, E]) Future[T, E] {
	var once sync.Once
	var result Result[T, E]
	return func(ctx context.Context) Result[T, E] {
		once.Do(func() {
			result = f(ctx)
		})
		return result
	}
}

// Promise is a Future running in the background
type Promise[T any, E error] struct {
	done   chan struct{}
	result Result[T, E]
}

// Go starts awaiting f in a new goroutine
func Go[T any, E error](ctx context.Context, f Future[T, E]) *Promise[T, E] {
	p := &Promise[T, E]{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.result = f(ctx)
	}()
	return p
}

// Done returns a channel closed when the result is available
func (p *Promise[T, E]) Done() <-chan struct{} {
	return p.done
}

// Result blocks until the result is available and returns it
func (p *Promise[T, E]) Result() Result[T, E] {
	<-p.done
	return p.result
}

// Wait blocks until the result is available or ctx is closed. In the latter
// case it returns the context error, and the computation keeps running.
func (p *Promise[T, E]) Wait(ctx context.Context) (Result[T, E], error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result[T, E]{}, ctx.Err()
	}
}

// Result is the outcome of a Future
type Result[T any, E error] struct {
	value T
	err   E
	ok    bool
}

// Ok returns a successful Result
func Ok[T any, E error](value T) Result[T, E] {
	return Result[T, E]{value: value, ok: true}
}

// Fail returns a failed Result. A failed Result never carries a value, and
// Fail(nil) is still a failure.
func Fail[T any, E error](err E) Result[T, E] {
	return Result[T, E]{err: err}
}

// OK returns true for a successful Result
func (r Result[T, E]) OK() bool {
	return r.ok
}

// Value returns the value of a successful Result, or zero T
func (r Result[T, E]) Value() T {
	return r.value
}

// Err returns the error of a failed Result, or zero E
func (r Result[T, E]) Err() E {
	return r.err
}

// Unpack returns the value, or the erased error for a failed Result
func (r Result[T, E]) Unpack() (T, error) {
	if !r.ok {
		var zero T
		return zero, opaque.Erase(r.err)
	}
	return r.value, nil
}
