package run

// Server binaries built with this package may run in empty containers, which
// carry no CA certificates. The fallback bundle is used for outgoing TLS
// connections when the system has none.
import _ "golang.org/x/crypto/x509roots/fallback"
