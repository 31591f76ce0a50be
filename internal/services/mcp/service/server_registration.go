package service

import (
	"fmt"

	"github.com/harito-life/services-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationModule struct {
	name     string
	register func(mcpRegistrationTarget) error
}

const (
	mcpCatalogToolsModuleName  = "catalog-tools"
	mcpDiscountToolsModuleName = "discount-tools"
)

// mcpServerRegistrationAdapter adds typed handlers to the SDK server and
// rejects duplicate tool names, which mcp.AddTool would silently replace.
type mcpServerRegistrationAdapter struct {
	server     *mcp.Server
	names      map[string]struct{}
	registered []string
}

func newMCPServerRegistrationAdapter(server *mcp.Server) *mcpServerRegistrationAdapter {
	return &mcpServerRegistrationAdapter{server: server, names: make(map[string]struct{})}
}

func (r *mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	if _, exists := r.names[tool.Name]; exists {
		return fmt.Errorf("tool %q is already registered", tool.Name)
	}
	if err := addMCPTool(r.server, tool, handler); err != nil {
		return err
	}
	r.names[tool.Name] = struct{}{}
	r.registered = append(r.registered, tool.Name)
	return nil
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.SearchServicesInput, any](),
	newMCPToolRegistrar[domain.ExplainServiceDiscountsInput, any](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(client CatalogClient) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpCatalogToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerCatalogTools(registrar, client)
			},
		},
		{
			name: mcpDiscountToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerDiscountTools(registrar, client)
			},
		},
	}
}
