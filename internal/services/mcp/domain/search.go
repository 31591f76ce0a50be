package domain

import (
	"context"
	"log"

	"github.com/harito-life/services-mcp/internal/platform/branding"
	"github.com/harito-life/services-mcp/internal/services/mcp/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SearchServicesToolName is the protocol name of the catalog search tool.
const SearchServicesToolName = "search_services"

// searchFailedMessage is reported when the API gave no message of its own.
const searchFailedMessage = "Failed to search services"

// ServiceSearcher runs full-text searches against the service catalog.
type ServiceSearcher interface {
	SearchFull(ctx context.Context, params catalog.SearchParams) (*catalog.SearchResponse, error)
}

// SearchServicesTool defines the MCP tool schema for searching services.
func SearchServicesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        SearchServicesToolName,
		Title:       "Search " + branding.AppName + " Services",
		Description: "Search " + branding.AppName + " services with pricing. Discounts are not included.",
		InputSchema: SearchServicesInputSchema(),
	}
}

// SearchServicesHandler searches the catalog and returns the page with all
// discount and promotional package fields removed.
func SearchServicesHandler(searcher ServiceSearcher) mcp.ToolHandlerFor[SearchServicesInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchServicesInput) (*mcp.CallToolResult, any, error) {
		input = input.withDefaults()
		if err := validateInput(input); err != nil {
			return nil, nil, err
		}

		ctx, span := tracer.Start(ctx, "mcp.tool."+SearchServicesToolName)
		defer span.End()
		span.SetAttributes(
			attribute.Int("search.page", input.Page),
			attribute.Int("search.limit", input.Limit),
		)

		resp, err := searcher.SearchFull(ctx, catalog.SearchParams{
			Query: input.Q,
			Page:  input.Page,
			Limit: input.Limit,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "catalog search failed")
			log.Printf("search_services failed: page=%d limit=%d err=%v", input.Page, input.Limit, err)
			if msg, ok := catalog.RemoteMessage(err); ok {
				return toolError(msg), nil, nil
			}
			return toolError(searchFailedMessage), nil, nil
		}

		text, err := formatJSON(SanitizeSearchResponse(resp))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode search result")
			log.Printf("search_services encode failed: err=%v", err)
			return toolError(searchFailedMessage), nil, nil
		}
		span.SetAttributes(attribute.Int("search.services", len(resp.Services)))
		return textResult(text), nil, nil
	}
}
