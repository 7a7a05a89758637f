package aiagent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ourstudio-se/ai-agent-backend/tools"
	"github.com/ourstudio-se/ai-agent-backend/tools/calc"
)

func newTestServer(t *testing.T, mocks *mockTools, opts ServerOptions) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agent, err := NewAgent(Options{
		Tools:  tools.NewRegistry(calc.New(), mocks.weather, mocks.general),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	srv := httptest.NewServer(NewHandler(agent, opts))
	t.Cleanup(srv.Close)
	return srv
}

func postQuery(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/query", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /query: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, decoded
}

func TestServer_Query(t *testing.T) {
	t.Run("math query", func(t *testing.T) {
		srv := newTestServer(t, newMockTools(), ServerOptions{})

		resp, body := postQuery(t, srv, `{"query": "What is 42 * 7?"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got: %d (%v)", resp.StatusCode, body)
		}
		if body["query"] != "What is 42 * 7?" {
			t.Errorf("unexpected query echo: %v", body["query"])
		}
		if body["tool_used"] != "math" {
			t.Errorf("expected tool_used math, got: %v", body["tool_used"])
		}
		if body["result"] != "The result of 42 * 7 is 294." {
			t.Errorf("unexpected result: %v", body["result"])
		}
		if resp.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", resp.Header.Get("Content-Type"))
		}
	})

	t.Run("general query", func(t *testing.T) {
		mocks := newMockTools()
		mocks.general.executeFn = func(context.Context, tools.Request) (string, error) {
			return "Why did the gopher cross the road?", nil
		}
		srv := newTestServer(t, mocks, ServerOptions{})

		resp, body := postQuery(t, srv, `{"query": "Tell me a joke"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got: %d", resp.StatusCode)
		}
		if body["tool_used"] != "general" || body["result"] != "Why did the gopher cross the road?" {
			t.Errorf("unexpected body: %v", body)
		}
	})

	t.Run("division by zero", func(t *testing.T) {
		srv := newTestServer(t, newMockTools(), ServerOptions{})

		resp, body := postQuery(t, srv, `{"query": "10 / 0"}`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got: %d", resp.StatusCode)
		}
		if body["error"] != "MathError: division by zero" {
			t.Errorf("unexpected error: %v", body["error"])
		}
	})

	t.Run("empty query", func(t *testing.T) {
		srv := newTestServer(t, newMockTools(), ServerOptions{})

		for _, payload := range []string{`{"query": ""}`, `{"query": "   "}`, `{}`} {
			resp, body := postQuery(t, srv, payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got: %d", payload, resp.StatusCode)
			}
			if msg, _ := body["error"].(string); !strings.HasPrefix(msg, "ValidationError:") {
				t.Errorf("%s: unexpected error: %v", payload, body["error"])
			}
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, newMockTools(), ServerOptions{})

		for _, payload := range []string{`not json`, `{"query": 42}`, `[]`} {
			resp, _ := postQuery(t, srv, payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got: %d", payload, resp.StatusCode)
			}
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		srv := newTestServer(t, newMockTools(), ServerOptions{MaxRequestBodySize: 32})

		resp, _ := postQuery(t, srv, `{"query": "`+strings.Repeat("a", 100)+`"}`)
		if resp.StatusCode != http.StatusRequestEntityTooLarge {
			t.Errorf("expected 413, got: %d", resp.StatusCode)
		}
	})

	t.Run("weather failures", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{tools.NewWeatherError(tools.ErrLocationNotFound, nil), http.StatusNotFound},
			{tools.NewWeatherError(tools.ErrNotConfigured, nil), http.StatusServiceUnavailable},
			{tools.NewWeatherError(tools.ErrUpstream, context.DeadlineExceeded), http.StatusGatewayTimeout},
			{tools.NewWeatherError(tools.ErrUpstream, nil), http.StatusBadGateway},
		}
		for _, tc := range tests {
			mocks := newMockTools()
			mocks.weather.executeFn = func(context.Context, tools.Request) (string, error) {
				return "", tc.err
			}
			srv := newTestServer(t, mocks, ServerOptions{})

			resp, body := postQuery(t, srv, `{"query": "weather in Atlantis"}`)
			if resp.StatusCode != tc.want {
				t.Errorf("%v: expected %d, got: %d", tc.err, tc.want, resp.StatusCode)
			}
			if body["error"] != tc.err.Error() {
				t.Errorf("expected error %q, got: %v", tc.err.Error(), body["error"])
			}
		}
	})

	t.Run("panics are hidden", func(t *testing.T) {
		mocks := newMockTools()
		mocks.general.executeFn = func(context.Context, tools.Request) (string, error) {
			panic("secret stack detail")
		}
		srv := newTestServer(t, mocks, ServerOptions{})

		resp, body := postQuery(t, srv, `{"query": "hello"}`)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got: %d", resp.StatusCode)
		}
		if body["error"] != "internal server error" {
			t.Errorf("unexpected error body: %v", body)
		}
	})

	t.Run("request timeout reaches the tool", func(t *testing.T) {
		mocks := newMockTools()
		mocks.general.executeFn = func(ctx context.Context, _ tools.Request) (string, error) {
			<-ctx.Done()
			return "", tools.NewLLMError(tools.ErrUpstream, ctx.Err())
		}
		srv := newTestServer(t, mocks, ServerOptions{RequestTimeout: 50 * time.Millisecond})

		resp, _ := postQuery(t, srv, `{"query": "hello"}`)
		if resp.StatusCode != http.StatusGatewayTimeout {
			t.Errorf("expected 504, got: %d", resp.StatusCode)
		}
	})
}

func TestServer_Health(t *testing.T) {
	mocks := newMockTools()
	srv := newTestServer(t, mocks, ServerOptions{})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "healthy" {
		t.Errorf("unexpected health response: %d %+v", resp.StatusCode, body)
	}
	if n := mocks.weather.callCount() + mocks.general.callCount(); n != 0 {
		t.Errorf("expected health not to touch tools, got %d calls", n)
	}
}

func TestServer_Info(t *testing.T) {
	srv := newTestServer(t, newMockTools(), ServerOptions{
		AppName:        "AI Agent Backend",
		AppVersion:     "1.0.0",
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	})

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	var info InfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if info.Name != "AI Agent Backend" || info.Version != "1.0.0" {
		t.Errorf("unexpected info: %+v", info)
	}
	if len(info.Tools) != 3 || info.Tools[0] != tools.KindMath {
		t.Errorf("unexpected tools: %v", info.Tools)
	}
	if info.Endpoints["metrics"] != "GET /metrics" {
		t.Errorf("expected metrics endpoint, got: %v", info.Endpoints)
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, newMockTools(), ServerOptions{
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("agent_tool_calls_total 1\n"))
		}),
	})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "agent_tool_calls_total") {
		t.Errorf("unexpected metrics body: %s", body)
	}
}

func TestServer_RequestID(t *testing.T) {
	srv := newTestServer(t, newMockTools(), ServerOptions{})

	t.Run("generated", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		resp.Body.Close()
		if resp.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		resp.Body.Close()
		if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("expected abc-123, got: %s", got)
		}
	})
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t, newMockTools(), ServerOptions{AllowedOrigins: []string{"https://app.example.com"}})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/query", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /query: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin, got: %q", got)
	}
}

// syncBuffer is a bytes.Buffer safe for the server goroutine to write
// while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_LogsRequests(t *testing.T) {
	var buf syncBuffer
	srv := newTestServer(t, newMockTools(), ServerOptions{
		Logger: slog.New(slog.NewJSONHandler(&buf, nil)),
	})

	resp, _ := postQuery(t, srv, `{"query": "1 + 1"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got: %d", resp.StatusCode)
	}
	if !strings.Contains(buf.String(), `"msg":"request completed"`) {
		t.Errorf("expected request log, got: %s", buf.String())
	}
}

func TestServer_LogsRecoveredPanics(t *testing.T) {
	var buf syncBuffer
	mocks := newMockTools()
	mocks.general.executeFn = func(context.Context, tools.Request) (string, error) {
		panic("boom")
	}
	srv := newTestServer(t, mocks, ServerOptions{
		Logger: slog.New(slog.NewJSONHandler(&buf, nil)),
	})

	resp, _ := postQuery(t, srv, `{"query": "hello"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got: %d", resp.StatusCode)
	}

	var completed map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["msg"] == "request completed" {
			completed = entry
		}
	}
	if completed == nil {
		t.Fatalf("expected request log after panic, got: %s", buf.String())
	}
	if completed["status"] != float64(http.StatusInternalServerError) {
		t.Errorf("expected logged status 500, got: %v", completed["status"])
	}
}
