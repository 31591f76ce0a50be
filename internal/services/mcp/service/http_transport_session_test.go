package service

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

type countingCloser struct {
	closes atomic.Int32
}

func (c *countingCloser) Close() error {
	c.closes.Add(1)
	return nil
}

func TestRequestSessionReleasesOnceUnderConcurrency(t *testing.T) {
	var notified atomic.Int32
	lifecycle := newRequestSession(func(string) { notified.Add(1) })
	closer := &countingCloser{}
	lifecycle.attach(closer)

	var wins atomic.Int32
	var wg sync.WaitGroup
	reasons := []string{releaseConnectionClosed, releaseRequestFinished, releaseError}
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(reason string) {
			defer wg.Done()
			if lifecycle.release(reason) {
				wins.Add(1)
			}
		}(reasons[i%len(reasons)])
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected one winning release, got %d", wins.Load())
	}
	if closer.closes.Load() != 1 {
		t.Fatalf("expected one close, got %d", closer.closes.Load())
	}
	if notified.Load() != 1 {
		t.Fatalf("expected one release notification, got %d", notified.Load())
	}
}

func TestRequestSessionAttachAfterRelease(t *testing.T) {
	lifecycle := newRequestSession(nil)
	if !lifecycle.release(releaseConnectionClosed) {
		t.Fatal("expected first release to win")
	}
	closer := &countingCloser{}
	lifecycle.attach(closer)
	if closer.closes.Load() != 1 {
		t.Fatalf("expected late session to be closed immediately, got %d closes", closer.closes.Load())
	}
	if lifecycle.release(releaseRequestFinished) {
		t.Fatal("expected second release to be a no-op")
	}
	if closer.closes.Load() != 1 {
		t.Fatal("expected no second close")
	}
}

func TestWriteInternalErrorOnlyBeforeResponseStarts(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeInternalError(&trackingResponseWriter{ResponseWriter: rec})
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if rec.Body.String() != `{"error":"Internal server error"}` {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("already started", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &trackingResponseWriter{ResponseWriter: rec}
		tw.WriteHeader(http.StatusOK)
		_, _ = tw.Write([]byte("event: message\n"))
		writeInternalError(tw)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected original status to stand, got %d", rec.Code)
		}
		if rec.Body.String() != "event: message\n" {
			t.Fatalf("expected no error body appended, got %q", rec.Body.String())
		}
	})

	t.Run("flush counts as started", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &trackingResponseWriter{ResponseWriter: rec}
		tw.Flush()
		if !tw.started.Load() {
			t.Fatal("expected flush to mark the response started")
		}
	})
}

func TestSessionState(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		header          string
		wantInitialize  bool
		wantInitialized bool
		wantVersion     string
	}{
		{name: "tool call", body: toolCallBody, wantInitialize: true, wantInitialized: true, wantVersion: defaultProtocolVersion},
		{name: "header version", body: toolCallBody, header: "2025-06-18", wantInitialize: true, wantInitialized: true, wantVersion: "2025-06-18"},
		{name: "initialize", body: `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`, wantInitialized: true},
		{name: "initialized", body: `{"jsonrpc":"2.0","method":"notifications/initialized"}`, wantInitialize: true, wantVersion: defaultProtocolVersion},
		{name: "batch", body: `[{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}},{"jsonrpc":"2.0","method":"notifications/initialized"}]`},
		{name: "garbage", body: `not json`, wantInitialize: true, wantInitialized: true, wantVersion: defaultProtocolVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set(protocolVersionHeader, tt.header)
			}
			state := sessionState(req, []byte(tt.body))
			if (state.InitializeParams != nil) != tt.wantInitialize {
				t.Fatalf("InitializeParams preset = %v, want %v", state.InitializeParams != nil, tt.wantInitialize)
			}
			if (state.InitializedParams != nil) != tt.wantInitialized {
				t.Fatalf("InitializedParams preset = %v, want %v", state.InitializedParams != nil, tt.wantInitialized)
			}
			if tt.wantInitialize && state.InitializeParams.ProtocolVersion != tt.wantVersion {
				t.Fatalf("expected protocol version %q, got %q", tt.wantVersion, state.InitializeParams.ProtocolVersion)
			}
			if state.LogLevel != "info" {
				t.Fatalf("expected info log level, got %q", state.LogLevel)
			}
		})
	}
}
