// hello greets every connection with its remote address.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/ridge/connsvc/future"
	"github.com/ridge/connsvc/payload"
	"github.com/ridge/connsvc/run"
	"github.com/ridge/connsvc/service"
	"github.com/ridge/connsvc/thttp"
	"github.com/ridge/connsvc/tlog"
	"github.com/ridge/connsvc/tnet"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type greeter = service.Service[payload.Payload, *payload.Body, error]

// makeGreeter builds the service for one connection. The address is
// captured at construction, so every response on the connection carries it.
func makeGreeter(conn *thttp.Conn) future.Future[greeter, error] {
	greeting := "Hello, " + conn.RemoteAddr.String()
	return func(ctx context.Context) future.Result[greeter, error] {
		router := mux.NewRouter()
		router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeText(w, r, "ok")
		}).Methods(http.MethodGet)
		router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeText(w, r, greeting)
		})

		svc := service.Wrap[payload.Payload, *payload.Body, error](thttp.HandlerService(cors(router)),
			service.Log[payload.Payload, *payload.Body, error],
			service.Recover[payload.Payload, *payload.Body, error])
		return future.Ok[greeter, error](svc)
	}
}

func serve(ctx context.Context, addr string) error {
	listener, err := tnet.Listen(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	tlog.Get(ctx).Info("Listening", zap.Stringer("addr", listener.Addr()))

	factory := service.MakeServiceFn[*thttp.Conn, payload.Payload, *payload.Body, error, greeter, error](makeGreeter)
	server := thttp.NewServer[*payload.Body, error, greeter, error](listener, factory, thttp.Config{
		MakeTimeout: 5 * time.Second,
		IdleTimeout: time.Minute,
	})
	return server.Run(ctx)
}

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:3000", "Address to listen on (tcp:host:port or unix:path)")
	logConfig := run.LogFlags(fs)
	_ = fs.Parse(os.Args[1:])

	config, err := logConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	run.Server(config, func(ctx context.Context) error {
		return serve(ctx, *addr)
	})
}
