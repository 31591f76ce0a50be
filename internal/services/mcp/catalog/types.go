package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Package is one package record of a service, exactly as the API sent it.
type Package map[string]json.RawMessage

// Service is a catalog service. Packages keeps upstream order; Fields holds
// every other attribute untouched.
type Service struct {
	Packages []Package
	Fields   map[string]json.RawMessage
}

// UnmarshalJSON requires a JSON object carrying a "packages" array.
func (s *Service) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: service is not an object", ErrMalformedResponse)
	}
	raw, ok := fields["packages"]
	if !ok || isNull(raw) {
		return fmt.Errorf("%w: service has no packages", ErrMalformedResponse)
	}
	var packages []Package
	if err := json.Unmarshal(raw, &packages); err != nil {
		return fmt.Errorf("%w: service packages: %v", ErrMalformedResponse, err)
	}
	for i, pkg := range packages {
		if pkg == nil {
			return fmt.Errorf("%w: package %d is null", ErrMalformedResponse, i)
		}
	}
	delete(fields, "packages")
	s.Packages = packages
	s.Fields = fields
	return nil
}

// SearchResponse is one page of search-full results. Meta holds every
// top-level field except "data", pagination included.
type SearchResponse struct {
	Services []Service
	Meta     map[string]json.RawMessage
}

// UnmarshalJSON requires a JSON object carrying a "data" array of services.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: search body is not an object", ErrMalformedResponse)
	}
	raw, ok := fields["data"]
	if !ok || isNull(raw) {
		return fmt.Errorf("%w: search body has no data", ErrMalformedResponse)
	}
	var services []Service
	if err := json.Unmarshal(raw, &services); err != nil {
		return fmt.Errorf("%w: search data: %v", ErrMalformedResponse, err)
	}
	delete(fields, "data")
	r.Services = services
	r.Meta = fields
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
