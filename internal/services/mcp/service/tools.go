package service

import (
	"fmt"
	"strings"

	"github.com/harito-life/services-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
}

func registerCatalogTools(registrar mcpRegistrationTarget, searcher domain.ServiceSearcher) error {
	return registerTool(registrar, domain.SearchServicesTool(), domain.SearchServicesHandler(searcher))
}

func registerDiscountTools(registrar mcpRegistrationTarget, lookup domain.ServiceLookup) error {
	return registerTool(registrar, domain.ExplainServiceDiscountsTool(), domain.ExplainServiceDiscountsHandler(lookup))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	if strings.TrimSpace(tool.Name) == "" {
		return fmt.Errorf("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}
	return registrar.AddTool(tool, handler)
}
