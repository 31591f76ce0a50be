package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/harito-life/services-mcp/internal/platform/branding"
	"github.com/harito-life/services-mcp/internal/services/mcp/catalog"
	"github.com/harito-life/services-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CatalogClient is the slice of the Harito API the tools depend on.
type CatalogClient interface {
	domain.ServiceSearcher
	domain.ServiceLookup
}

// Config configures the MCP server.
type Config struct {
	Host       string
	Port       int
	APIBaseURL string
	// RateLimit is the per-IP request rate in requests per second. Zero or
	// less disables limiting.
	RateLimit float64
	RateBurst int
}

// HTTPAddr joins host and port into a listen address.
func (c Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server hosts the MCP tool table. It is built once at startup and is
// read-only afterwards, so every request transport can share it.
type Server struct {
	mcpServer *mcp.Server
	tools     []string
}

// NewServer registers the catalog tools against client and returns the
// finished server. Registration problems are startup errors.
func NewServer(client CatalogClient) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("catalog client is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    branding.ServerName,
		Title:   branding.AppName + " Services",
		Version: branding.ServerVersion,
	}, nil)

	registrar := newMCPServerRegistrationAdapter(mcpServer)
	for _, module := range newMCPRegistrationModules(client) {
		if err := module.register(registrar); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}

	return &Server{mcpServer: mcpServer, tools: registrar.registered}, nil
}

// ToolNames lists the registered tools in registration order.
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.tools...)
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	client, err := catalog.NewClient(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}
	server, err := NewServer(client)
	if err != nil {
		return err
	}
	log.Printf("MCP tools registered: %v api=%s", server.ToolNames(), client.BaseURL())

	return NewHTTPTransport(server, cfg).Start(ctx)
}
