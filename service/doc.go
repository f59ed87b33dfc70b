// Package service defines how a server obtains a request handler for each
// connection it accepts.
//
// # Services
//
// A Service turns one request into one response, asynchronously: Call
// returns a future.Future that resolves to a response or fails with the
// service's error type E. A service lives as long as its connection and is
// called once per request, in the order the requests arrive.
//
// # Factories
//
// Upon accepting a connection, a server asks a factory for a service. There
// are two kinds of factories:
//
// * NewService builds a service from nothing.
//
// * MakeService builds a service from a context value C supplied by the
// server for the connection (for example the remote address). The factory
// may capture the value in the service it returns, or ignore it.
//
// Both return a future.Future that resolves to the service or fails with a
// construction error. Nothing happens until the server awaits it, and a
// failed construction never yields a service: the server closes the
// connection without serving a single request.
//
// Any nullary function returning a future of a service is a NewService when
// converted to NewServiceFunc. Any function of a context value is a
// MakeService when wrapped with MakeServiceFn. Any NewService is a MakeService
// for any context type when wrapped with IgnoreContext.
//
// # Type parameters
//
// Factories declare the request body type, the response body type and the
// per-request error type of the services they build, as well as the service
// type S itself. S is constrained to be a Service with exactly the same body
// and error types, so a factory can't be instantiated with a service of a
// different shape: the mismatch is a compile error.
//
// # Errors
//
// Every error type parameter is constrained by error. A server loop that
// drives arbitrary factories logs construction and per-request errors after
// erasing them with opaque.Erase, without knowing their concrete types.
//
// # Example
//
// A factory that greets every client with its own address:
//
//	type greeter = service.FuncOK[payload.Payload, *payload.Body]
//
//	var hello = service.MakeServiceFn[string, payload.Payload, *payload.Body, error, greeter, error](
//	    func(addr string) future.Future[greeter, error] {
//	        return future.Ready[greeter, error](func(*service.Request[payload.Payload]) *service.Response[*payload.Body] {
//	            return service.NewResponse(http.StatusOK, payload.String("Hello, "+addr))
//	        })
//	    })
package service
