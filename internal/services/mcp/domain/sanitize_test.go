package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSanitizeSearchResponsePreservesShapeAndOrder(t *testing.T) {
	var services []string
	for s := 0; s < 2; s++ {
		var packages []string
		for p := 0; p < 3; p++ {
			packages = append(packages, fmt.Sprintf(
				`{"id":"s%d-p%d","name":"pkg %d","price":%d,"type":"t","durationSlots":%d,"discount":5,"campaignPrice":1}`,
				s, p, p, 100*(p+1), p+1))
		}
		services = append(services, fmt.Sprintf(`{"id":"s%d","rating":4.5,"packages":[%s]}`, s, strings.Join(packages, ",")))
	}
	resp := mustSearchResponse(t, fmt.Sprintf(`{"data":[%s],"total":2,"page":1}`, strings.Join(services, ",")))

	text, err := formatJSON(SanitizeSearchResponse(resp))
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var out struct {
		Data []struct {
			ID       string            `json:"id"`
			Rating   float64           `json:"rating"`
			Packages []json.RawMessage `json:"packages"`
		} `json:"data"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 2 || len(out.Data) != 2 {
		t.Fatalf("expected 2 services and total 2, got %d / %d", len(out.Data), out.Total)
	}
	for s, service := range out.Data {
		if service.ID != fmt.Sprintf("s%d", s) || service.Rating != 4.5 {
			t.Fatalf("service %d fields not preserved: %+v", s, service)
		}
		if len(service.Packages) != 3 {
			t.Fatalf("service %d: expected 3 packages, got %d", s, len(service.Packages))
		}
		for p, raw := range service.Packages {
			want := fmt.Sprintf(`{"id":"s%d-p%d","name":"pkg %d","price":%d,"type":"t","durationSlots":%d,"hasPotentialDiscounts":true}`,
				s, p, p, 100*(p+1), p+1)
			var compact bytes.Buffer
			if err := json.Compact(&compact, raw); err != nil {
				t.Fatalf("compact: %v", err)
			}
			if compact.String() != want {
				t.Fatalf("package %d/%d: expected %s, got %s", s, p, want, compact.String())
			}
		}
	}
}

func TestSanitizePackageKeepsMissingFieldsAbsent(t *testing.T) {
	data, err := json.Marshal(SanitizePackage(map[string]json.RawMessage{
		"id":       json.RawMessage(`7`),
		"name":     json.RawMessage(`null`),
		"discount": json.RawMessage(`30`),
	}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":7,"name":null,"hasPotentialDiscounts":true}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}

func TestSanitizeSearchResponseEmpty(t *testing.T) {
	text, err := formatJSON(SanitizeSearchResponse(nil))
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if text != "{\n  \"data\": []\n}" {
		t.Fatalf("unexpected output %q", text)
	}
}
