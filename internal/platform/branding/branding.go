// Package branding holds the product names shown to MCP clients and upstream
// services.
package branding

// AppName is the product name used in tool titles and user-facing text.
const AppName = "Harito"

// ServerName identifies the MCP server implementation to clients.
const ServerName = "harito-services-mcp"

// ServerVersion is the MCP server implementation version.
const ServerVersion = "1.0.0"

// UserAgent is sent on every upstream API request.
const UserAgent = ServerName + "/" + ServerVersion
