package domain

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/harito-life/services-mcp/internal/platform/validator"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

const (
	// DefaultSearchPage is applied when a search omits page.
	DefaultSearchPage = 1
	// DefaultSearchLimit is applied when a search omits limit.
	DefaultSearchLimit = 20
	// MaxSearchLimit is the largest page size a search may request.
	MaxSearchLimit = 50
)

// SearchServicesInput represents the MCP tool input for a catalog search.
type SearchServicesInput struct {
	Q     string `json:"q" validate:"required"`
	Page  int    `json:"page,omitempty" validate:"gt=0"`
	Limit int    `json:"limit,omitempty" validate:"gt=0,lte=50"`
}

func (in SearchServicesInput) withDefaults() SearchServicesInput {
	if in.Page == 0 {
		in.Page = DefaultSearchPage
	}
	if in.Limit == 0 {
		in.Limit = DefaultSearchLimit
	}
	return in
}

// ExplainServiceDiscountsInput represents the MCP tool input for a discount explanation.
type ExplainServiceDiscountsInput struct {
	ServiceID string `json:"service_id" validate:"required"`
}

// SearchServicesInputSchema is the JSON schema the SDK enforces, with
// defaults applied, before the search handler runs.
func SearchServicesInputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"q": {
				Type:        "string",
				Description: "Search query",
				MinLength:   jsonschema.Ptr(1),
			},
			"page": {
				Type:             "integer",
				Description:      "Result page, starting at 1",
				ExclusiveMinimum: jsonschema.Ptr(0.0),
				Default:          json.RawMessage(`1`),
			},
			"limit": {
				Type:             "integer",
				Description:      "Services per page, at most 50",
				ExclusiveMinimum: jsonschema.Ptr(0.0),
				Maximum:          jsonschema.Ptr(float64(MaxSearchLimit)),
				Default:          json.RawMessage(`20`),
			},
		},
		Required: []string{"q"},
	}
}

// ExplainServiceDiscountsInputSchema is the JSON schema for the discount
// explanation tool.
func ExplainServiceDiscountsInputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"service_id": {
				Type:        "string",
				Description: "Harito service identifier",
				MinLength:   jsonschema.Ptr(1),
			},
		},
		Required: []string{"service_id"},
	}
}

var inputValidator = validator.New()

// validateInput re-checks decoded input before any upstream call. Failures
// are protocol-level invalid params, never tool results.
func validateInput(input any) error {
	if err := inputValidator.Struct(input); err != nil {
		return &jsonrpc.Error{
			Code:    jsonrpc.CodeInvalidParams,
			Message: "invalid params: " + err.Error(),
		}
	}
	return nil
}
