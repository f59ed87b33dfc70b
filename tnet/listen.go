// Package tnet contains network helpers shared by servers: listening and
// classification of connection errors.
package tnet

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/ridge/must/v2"
)

const keepAlivePeriod = 3 * time.Minute

// Listen installs a listener on the specified address.
//
// "tcp:[host]:port" opens a TCP listening socket with TCP keep-alive
// enabled, "unix:path" listens on a UNIX domain socket. Without a prefix TCP
// is assumed.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	network, address := splitAddress(address)
	lc := net.ListenConfig{KeepAlive: keepAlivePeriod}
	return lc.Listen(ctx, network, address)
}

func splitAddress(address string) (string, string) {
	if proto, rest, ok := strings.Cut(address, ":"); ok && (proto == "tcp" || proto == "unix") {
		return proto, rest
	}
	return "tcp", address
}

// ListenOnRandomPort installs a TCP listener on a random local port
func ListenOnRandomPort() net.Listener {
	return must.OK1(Listen(context.Background(), "localhost:"))
}
