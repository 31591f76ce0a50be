// Package service wires protocol transport to domain services.
//
// It is the transport adapter layer: the package builds the immutable MCP tool
// table once and serves it over streamable HTTP, one short-lived transport per
// inbound request, while business meaning stays in the domain handlers.
package service
