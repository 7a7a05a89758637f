package aiagent

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ourstudio-se/ai-agent-backend/observe"
)

// ServerOptions configures the HTTP handler.
type ServerOptions struct {
	// AppName and AppVersion are reported by GET /.
	AppName    string
	AppVersion string

	// AllowedOrigins for CORS.
	// Defaults to allowing all origins.
	AllowedOrigins []string

	// RequestTimeout bounds each request.
	// Defaults to 35 seconds.
	RequestTimeout time.Duration

	// MaxRequestBodySize caps the request body in bytes.
	// Defaults to 64 KiB.
	MaxRequestBodySize int64

	// Metrics records request durations.
	// Optional.
	Metrics *observe.Metrics

	// MetricsHandler is mounted at GET /metrics when set.
	MetricsHandler http.Handler

	// Logger is the structured logger.
	// Optional - defaults to slog.Default().
	Logger *slog.Logger
}

func (o ServerOptions) withDefaults() ServerOptions {
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 35 * time.Second
	}
	if o.MaxRequestBodySize <= 0 {
		o.MaxRequestBodySize = 64 << 10
	}
	if o.Metrics == nil {
		o.Metrics = observe.Discard()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ServerOptionsFromConfig derives handler options from the application config.
func ServerOptionsFromConfig(cfg Config) ServerOptions {
	return ServerOptions{
		AppName:            cfg.AppName,
		AppVersion:         cfg.AppVersion,
		AllowedOrigins:     cfg.AllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}
}

// NewHandler returns the HTTP API: GET /, GET /health, POST /query and,
// when configured, GET /metrics. The handler is a pure pass-through to the
// agent.
func NewHandler(agent *Agent, opts ServerOptions) http.Handler {
	opts = opts.withDefaults()

	info := InfoResponse{
		Name:        opts.AppName,
		Version:     opts.AppVersion,
		Description: "Routes queries to a math, weather or general LLM tool",
		Tools:       agent.tools.Kinds(),
		Endpoints: map[string]string{
			"query":  "POST /query",
			"health": "GET /health",
		},
	}
	if opts.MetricsHandler != nil {
		info.Endpoints["metrics"] = "GET /metrics"
	}

	return newHTTPRouter(opts, info, agent.Route)
}

// newHTTPRouter creates and configures the Chi router with all middleware and routes.
func newHTTPRouter(opts ServerOptions, info InfoResponse, query QueryFn) *chi.Mux {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(opts.Logger, opts.Metrics))
	r.Use(recoveryMiddleware(opts.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(timeoutMiddleware(opts.RequestTimeout))
	r.Use(bodySizeLimitMiddleware(opts.MaxRequestBodySize))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300, // 5 minutes
	}))

	// Routes
	r.Get("/", newInfoHandler(info))
	r.Get("/health", newHealthHandler())
	r.Post("/query", newQueryHandler(query, opts.Logger))
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return r
}

// NewHTTPServer wraps handler in an http.Server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
