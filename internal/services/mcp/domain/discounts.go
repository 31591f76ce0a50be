package domain

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/codes"
)

// ExplainServiceDiscountsToolName is the protocol name of the discount tool.
const ExplainServiceDiscountsToolName = "explain_service_discounts"

// invalidServiceIDMessage replaces every lookup failure; upstream detail is
// only logged.
const invalidServiceIDMessage = "Invalid service ID"

// DiscountPolicyText is returned for every known service. It does not depend
// on the service record.
const DiscountPolicyText = `
Harito may offer promotional discounts for this service.

Discounts are usually applied when:
- The package value crosses a minimum threshold
- A promotional campaign is active
- You book multiple sessions or bundled care

To avail any eligible discount:
- Proceed to booking
- Applicable discounts, if any, are automatically applied before payment

No manual coupon entry is required.
`

// ServiceLookup checks that a service exists in the catalog.
type ServiceLookup interface {
	GetService(ctx context.Context, serviceID string) error
}

// ExplainServiceDiscountsTool defines the MCP tool schema for discount explanations.
func ExplainServiceDiscountsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        ExplainServiceDiscountsToolName,
		Title:       "Explain Service Discounts",
		Description: "Explain how discounts may be applied for a service",
		InputSchema: ExplainServiceDiscountsInputSchema(),
	}
}

// ExplainServiceDiscountsHandler gates the discount policy text on the
// service existing upstream.
func ExplainServiceDiscountsHandler(lookup ServiceLookup) mcp.ToolHandlerFor[ExplainServiceDiscountsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ExplainServiceDiscountsInput) (*mcp.CallToolResult, any, error) {
		if err := validateInput(input); err != nil {
			return nil, nil, err
		}

		ctx, span := tracer.Start(ctx, "mcp.tool."+ExplainServiceDiscountsToolName)
		defer span.End()

		if err := lookup.GetService(ctx, input.ServiceID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "service lookup failed")
			log.Printf("explain_service_discounts lookup failed: service_id=%q err=%v", input.ServiceID, err)
			return toolError(invalidServiceIDMessage), nil, nil
		}
		return textResult(DiscountPolicyText), nil, nil
	}
}
