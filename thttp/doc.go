// Package thttp serves HTTP/1.x connections with per-connection services.
//
// # Server
//
// thttp.Server accepts connections on a listener. For every connection it
// asks a service.MakeService factory for a fresh service, passing a *Conn
// describing the connection. Each request read from the connection is then
// handed to that service, one at a time, and the responses are written in
// order.
//
// The server is controlled with the context passed to its Run method, which
// plays nicely with parallel.Run:
//
//	func RunGreeter(ctx context.Context, addr string) error {
//	    listener, err := tnet.Listen(ctx, addr)
//	    if err != nil {
//	        return fmt.Errorf("failed to run greeter: %w", err)
//	    }
//	    factory := service.MakeServiceFn[*thttp.Conn, payload.Payload, *payload.Body, error, greeter, error](
//	        func(conn *thttp.Conn) future.Future[greeter, error] {
//	            return future.Ready[greeter, error](newGreeter(conn.RemoteAddr))
//	        })
//	    return thttp.NewServer[*payload.Body, error, greeter, error](listener, factory, thttp.Config{}).Run(ctx)
//	}
//
// # Failures
//
// A factory that fails for a connection causes that connection to be closed
// without reading any request; other connections are unaffected. A failed
// call is answered with an empty 500 response, and the connection stays
// open. Malformed requests are answered with 400 and the connection is
// closed.
//
// # Request context
//
// The context passed to the futures of service calls is a descendant of the
// context passed to Run, and contains all the values stored there. During
// shutdown it stays open for up to Config.ShutdownTimeout longer than the
// parent context to allow requests in flight to complete. When it closes, the
// remaining connections are closed as well.
//
// Its logger contains the following structured fields:
//
// * httpServer: the local listening address
//
// * remoteAddr: the IP address and port of the remote client
//
// # http.Handler
//
// Existing handlers, such as a github.com/gorilla/mux router, can be served
// through HandlerService.
package thttp
