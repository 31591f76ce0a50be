package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/harito-life/services-mcp/internal/services/mcp/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const searchFixture = `{
	"data": [{
		"id": "svc-1",
		"title": "Deep tissue massage",
		"packages": [
			{"id": "p1", "name": "60 min", "price": 1200, "type": "single", "durationSlots": 2, "discountPrice": 900},
			{"id": "p2", "name": "90 min", "price": 1700, "type": "single", "durationSlots": 3, "promoCode": "SPRING"}
		]
	}],
	"page": 1,
	"totalPages": 1
}`

// fakeHarito stands in for the remote catalog API and records every call.
type fakeHarito struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (f *fakeHarito) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/service/search-full":
		_, _ = w.Write([]byte(searchFixture))
	case r.URL.Path == "/service/svc-1":
		_, _ = w.Write([]byte(`{"id":"svc-1","packages":[]}`))
	case strings.HasPrefix(r.URL.Path, "/service/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Service not found"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeHarito) calls() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func newTestServer(t *testing.T) (*Server, *fakeHarito) {
	t.Helper()
	upstream := &fakeHarito{}
	api := httptest.NewServer(upstream)
	t.Cleanup(api.Close)

	client, err := catalog.NewClient(api.URL)
	if err != nil {
		t.Fatalf("create catalog client: %v", err)
	}
	server, err := NewServer(client)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	return server, upstream
}

// connectInMemory attaches an SDK client to server without HTTP.
func connectInMemory(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("connect server: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) != 1 {
		t.Fatalf("expected one content block, got %+v", result)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func decodeSearchText(t *testing.T, text string) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("decode tool text: %v", err)
	}
	return payload
}
