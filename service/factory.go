package service

import (
	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/payload"
)

// NewService is an asynchronous constructor of services that needs no input
type NewService[ReqBody, ResBody payload.Payload, E error, S Service[ReqBody, ResBody, E], InitErr error] interface {
	// NewService returns a future of a new service. It must not block: all
	// the work is done when the future is awaited.
	NewService() future.Future[S, InitErr]
}

// NewServiceFunc is a nullary function implementing NewService
type NewServiceFunc[ReqBody, ResBody payload.Payload, E error, S Service[ReqBody, ResBody, E], InitErr error] func() future.Future[S, InitErr]

// NewService implements NewService
func (f NewServiceFunc[ReqBody, ResBody, E, S, InitErr]) NewService() future.Future[S, InitErr] {
	return f()
}

// MakeService is an asynchronous constructor of services specialized to a
// context value of type C, supplied by the server for every connection
//
// Concurrent MakeService calls and awaits are allowed. An implementation
// that shares mutable state between the services it builds must synchronize
// access to it.
type MakeService[C any, ReqBody, ResBody payload.Payload, E error, S Service[ReqBody, ResBody, E], MakeErr error] interface {
	// MakeService returns a future of a new service for c. It must not
	// block: all the work is done when the future is awaited.
	//
	// c is only borrowed for the duration of the call. If C is a reference
	// type, anything the future or the service needs from it later has to
	// be copied out.
	MakeService(c C) future.Future[S, MakeErr]
}

// MakeServiceFunc is a function implementing MakeService. The function is
// its only state.
type MakeServiceFunc[C any, ReqBody, ResBody payload.Payload, E error, S Service[ReqBody, ResBody, E], MakeErr error] func(c C) future.Future[S, MakeErr]

// MakeService implements MakeService
func (f MakeServiceFunc[C, ReqBody, ResBody, E, S, MakeErr]) MakeService(c C) future.Future[S, MakeErr] {
	return f(c)
}

// MakeServiceFn wraps f into a MakeService. MakeService(c) on the result
// returns exactly f(c).
//
// The body and per-request error type parameters are not stored anywhere;
// they only pin down the shape of the services f produces.
func MakeServiceFn[C any, ReqBody, ResBody payload.Payload, E error, S Service[ReqBody, ResBody, E], MakeErr error](
	f func(c C) future.Future[S, MakeErr],
) MakeServiceFunc[C, ReqBody, ResBody, E, S, MakeErr] {
	return f
}

// IgnoringContext is a MakeService for any context type C built from a
// NewService
type IgnoringContext[C any, ReqBody, ResBody payload.Payload, E error, S Service[ReqBody, ResBody, E], InitErr error] struct {
	factory NewService[ReqBody, ResBody, E, S, InitErr]
}

// IgnoreContext upgrades a NewService into a MakeService that ignores its
// context value
func IgnoreContext[C any, ReqBody, ResBody payload.Payload, E error, S Service[ReqBody, ResBody, E], InitErr error](
	factory NewService[ReqBody, ResBody, E, S, InitErr],
) IgnoringContext[C, ReqBody, ResBody, E, S, InitErr] {
	return IgnoringContext[C, ReqBody, ResBody, E, S, InitErr]{factory: factory}
}

// MakeService implements MakeService by calling NewService of the
// underlying factory
func (ic IgnoringContext[C, ReqBody, ResBody, E, S, InitErr]) MakeService(_ C) future.Future[S, InitErr] {
	return ic.factory.NewService()
}
