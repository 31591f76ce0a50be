// Package timeouts defines the timeout constants shared by the MCP server and
// its upstream client, so transport and client limits stay in one place.
package timeouts

import "time"

// Upstream caps a single call to the remote Harito API, connection setup and
// body read included.
const Upstream = 5 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TelemetryShutdown bounds the final span flush on process exit.
const TelemetryShutdown = 5 * time.Second
