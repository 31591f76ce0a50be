// Package domain holds the MCP tools of the Harito services server.
//
// Each tool pairs a definition (name, title, input schema) with a typed
// handler. Handlers call the catalog client and shape what the agent sees:
// catalog searches are stripped of discount data before they are returned,
// and upstream failures become tool results flagged isError rather than
// protocol errors.
package domain
