// Package api provides the HTTP API server that answers questions, serves the
// chat widget and exposes stored exchanges.
package api

import "github.com/papercomputeco/verde/pkg/responder"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string

	// Responder answers questions posted to /v1/ask. Its metrics, when set,
	// are served on /metrics.
	Responder *responder.Responder
}
