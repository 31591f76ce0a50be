package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harito-life/services-mcp/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var listenTCP = net.Listen

// HTTPTransport serves the MCP tool table over streamable HTTP.
// Every request to /mcp gets its own stateless transport and server session;
// nothing but the read-only tool table is shared between requests.
type HTTPTransport struct {
	addr        string
	server      *mcp.Server
	rateLimiter *ipRateLimiter
	httpServer  *http.Server

	// onRelease observes per-request session release; tests use it to count
	// cleanups.
	onRelease func(reason string)
}

// NewHTTPTransport creates a transport for server listening on cfg's address.
func NewHTTPTransport(server *Server, cfg Config) *HTTPTransport {
	t := &HTTPTransport{addr: cfg.HTTPAddr()}
	if server != nil {
		t.server = server.mcpServer
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		t.rateLimiter = newIPRateLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return t
}

// Handler builds the HTTP routes: /mcp for GET and POST, plus health probes.
func (t *HTTPTransport) Handler() http.Handler {
	r := chi.NewRouter()
	if t.rateLimiter != nil {
		r.Use(t.rateLimiter.Limit)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/mcp", t.handleMCP)
	r.Post("/mcp", t.handleMCP)
	r.Get("/mcp/health", t.handleHealth)
	r.Get("/health", t.handleHealth)
	return r
}

// Start listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (t *HTTPTransport) Start(ctx context.Context) error {
	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	return t.serve(ctx, listener)
}

func (t *HTTPTransport) serve(ctx context.Context, listener net.Listener) error {
	if t.server == nil {
		_ = listener.Close()
		return fmt.Errorf("MCP server is not configured")
	}

	// Request contexts hang off baseCtx so open GET streams end at shutdown
	// instead of holding it until the deadline.
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()

	t.httpServer = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	t.httpServer.RegisterOnShutdown(cancelBase)

	log.Printf("Starting MCP HTTP server on %s", listener.Addr())
	log.Printf("MCP endpoint: http://%s/mcp", listener.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := t.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// handleHealth handles GET /mcp/health for health checks.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		log.Printf("Failed to write health response: %v", err)
	}
}
