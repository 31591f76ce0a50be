// Package catalog is the HTTP client for the remote Harito service catalog.
//
// It owns the wire contract with the upstream API (base URL, timeout, error
// envelope) and returns the catalog payloads without interpreting them, so
// the MCP domain layer decides what leaves the process.
package catalog
