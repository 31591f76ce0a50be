package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// maxRequestBodyBytes caps a single POST body.
	maxRequestBodyBytes = 1 << 20

	protocolVersionHeader  = "Mcp-Protocol-Version"
	defaultProtocolVersion = "2025-03-26"

	releaseConnectionClosed = "connection closed"
	releaseRequestFinished  = "request finished"
	releaseError            = "error"
)

// sessionCloser is the part of *mcp.ServerSession the release latch needs.
type sessionCloser interface {
	Close() error
}

// requestSession releases the per-request server session exactly once, no
// matter how many of connection close, handler end and error fire, or in
// which order.
type requestSession struct {
	released atomic.Bool

	mu      sync.Mutex
	session sessionCloser

	onRelease func(reason string)
}

func newRequestSession(onRelease func(string)) *requestSession {
	return &requestSession{onRelease: onRelease}
}

// attach hands the connected session to the latch. A session attached after
// release is closed immediately.
func (s *requestSession) attach(session sessionCloser) {
	s.mu.Lock()
	if s.released.Load() {
		s.mu.Unlock()
		closeSession(session)
		return
	}
	s.session = session
	s.mu.Unlock()
}

// release closes the session on the first call and reports whether this call
// was the one that did.
func (s *requestSession) release(reason string) bool {
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.mu.Unlock()

	if session != nil {
		closeSession(session)
	}
	if s.onRelease != nil {
		s.onRelease(reason)
	}
	return true
}

func closeSession(session sessionCloser) {
	if err := session.Close(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Failed to close MCP session: %v", err)
	}
}

// trackingResponseWriter records whether any part of the response has been
// sent, so a late failure never writes a second status line.
type trackingResponseWriter struct {
	http.ResponseWriter
	started atomic.Bool
}

func (w *trackingResponseWriter) WriteHeader(code int) {
	w.started.Store(true)
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingResponseWriter) Write(p []byte) (int, error) {
	w.started.Store(true)
	return w.ResponseWriter.Write(p)
}

// Flush keeps SSE delivery working through the wrapper.
func (w *trackingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.started.Store(true)
		f.Flush()
	}
}

func (w *trackingResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// handleMCP serves one /mcp request on a fresh stateless transport.
func (t *HTTPTransport) handleMCP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())
	lifecycle := newRequestSession(func(reason string) {
		log.Printf("MCP session released: request_id=%s reason=%s", requestID, reason)
		if t.onRelease != nil {
			t.onRelease(reason)
		}
	})
	tw := &trackingResponseWriter{ResponseWriter: w}

	stop := context.AfterFunc(r.Context(), func() {
		lifecycle.release(releaseConnectionClosed)
	})
	defer stop()
	defer lifecycle.release(releaseRequestFinished)
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("MCP request panicked: request_id=%s panic=%v", requestID, recovered)
			lifecycle.release(releaseError)
			writeInternalError(tw)
		}
	}()

	if err := t.serveMCP(tw, r, lifecycle); err != nil {
		log.Printf("MCP request failed: request_id=%s err=%v", requestID, err)
		lifecycle.release(releaseError)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) && !tw.started.Load() {
			http.Error(tw, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeInternalError(tw)
	}
}

// serveMCP connects a new transport to the shared server and hands it the
// request. It returns only setup failures; protocol errors are written by the
// transport itself.
func (t *HTTPTransport) serveMCP(w http.ResponseWriter, r *http.Request, lifecycle *requestSession) error {
	if t.server == nil {
		return fmt.Errorf("MCP server is not configured")
	}

	var body []byte
	if r.Method == http.MethodPost {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
		if err != nil {
			return fmt.Errorf("read request body: %w", err)
		}
		_ = r.Body.Close()
		if len(bytes.TrimSpace(body)) == 0 {
			body = []byte("{}")
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
	}

	transport := &mcp.StreamableServerTransport{Stateless: true}
	session, err := t.server.Connect(r.Context(), transport, &mcp.ServerSessionOptions{
		State: sessionState(r, body),
	})
	if err != nil {
		return fmt.Errorf("connect MCP transport: %w", err)
	}
	lifecycle.attach(session)

	transport.ServeHTTP(w, r)
	return nil
}

// sessionState pre-initializes the stateless session so tool calls are
// accepted without a handshake on the same transport. A body that carries the
// handshake itself keeps the matching step unset.
func sessionState(r *http.Request, body []byte) *mcp.ServerSessionState {
	hasInitialize, hasInitialized := handshakeMethods(body)

	state := &mcp.ServerSessionState{LogLevel: "info"}
	if !hasInitialize {
		version := r.Header.Get(protocolVersionHeader)
		if version == "" {
			version = defaultProtocolVersion
		}
		state.InitializeParams = &mcp.InitializeParams{ProtocolVersion: version}
	}
	if !hasInitialized {
		state.InitializedParams = new(mcp.InitializedParams)
	}
	return state
}

func handshakeMethods(body []byte) (hasInitialize, hasInitialized bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false, false
	}

	raws := []json.RawMessage{trimmed}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return false, false
		}
	}
	for _, raw := range raws {
		msg, err := jsonrpc.DecodeMessage(raw)
		if err != nil {
			continue
		}
		req, ok := msg.(*jsonrpc.Request)
		if !ok {
			continue
		}
		switch req.Method {
		case "initialize":
			hasInitialize = true
		case "notifications/initialized":
			hasInitialized = true
		}
	}
	return hasInitialize, hasInitialized
}

// writeInternalError emits the generic 500 unless the response has already
// begun.
func writeInternalError(w *trackingResponseWriter) {
	if w.started.Load() {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if _, err := w.Write([]byte(`{"error":"Internal server error"}`)); err != nil {
		log.Printf("Failed to write error response: %v", err)
	}
}
