package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/harito-life/services-mcp/internal/services/mcp/catalog"
)

// SanitizedPackage is the only package shape that leaves the server. Values
// are copied verbatim from upstream; a field the API omitted stays omitted.
type SanitizedPackage struct {
	ID                    json.RawMessage `json:"id,omitempty"`
	Name                  json.RawMessage `json:"name,omitempty"`
	Price                 json.RawMessage `json:"price,omitempty"`
	Type                  json.RawMessage `json:"type,omitempty"`
	DurationSlots         json.RawMessage `json:"durationSlots,omitempty"`
	HasPotentialDiscounts bool            `json:"hasPotentialDiscounts"`
}

// SanitizePackage drops every package field except id, name, price, type and
// durationSlots, and flags the package as possibly discounted.
func SanitizePackage(pkg catalog.Package) SanitizedPackage {
	return SanitizedPackage{
		ID:                    pkg["id"],
		Name:                  pkg["name"],
		Price:                 pkg["price"],
		Type:                  pkg["type"],
		DurationSlots:         pkg["durationSlots"],
		HasPotentialDiscounts: true,
	}
}

// SanitizeSearchResponse rebuilds a search page with every package
// sanitized. Service fields and top-level pagination pass through untouched,
// and service and package order is preserved.
func SanitizeSearchResponse(resp *catalog.SearchResponse) map[string]any {
	out := make(map[string]any)
	if resp == nil {
		out["data"] = []map[string]any{}
		return out
	}
	for key, value := range resp.Meta {
		out[key] = value
	}

	services := make([]map[string]any, 0, len(resp.Services))
	for _, service := range resp.Services {
		sanitized := make(map[string]any, len(service.Fields)+1)
		for key, value := range service.Fields {
			sanitized[key] = value
		}
		packages := make([]SanitizedPackage, 0, len(service.Packages))
		for _, pkg := range service.Packages {
			packages = append(packages, SanitizePackage(pkg))
		}
		sanitized["packages"] = packages
		services = append(services, sanitized)
	}
	out["data"] = services
	return out
}

// formatJSON renders v with two-space indentation and without HTML escaping.
func formatJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
