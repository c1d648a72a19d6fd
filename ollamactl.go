// Package ollamactl manages the lifecycle of a local inference server:
// it starts the server when absent, confirms liveness through HTTP
// health checks, reports status, and tears the server down on request.
package ollamactl

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/verlane/ollamactl/internal/config"
	"github.com/verlane/ollamactl/internal/history"
	histfactory "github.com/verlane/ollamactl/internal/history/factory"
	"github.com/verlane/ollamactl/internal/llm"
	"github.com/verlane/ollamactl/internal/logger"
	"github.com/verlane/ollamactl/internal/metrics"
	iapi "github.com/verlane/ollamactl/internal/server"
	"github.com/verlane/ollamactl/internal/service"
	"github.com/verlane/ollamactl/internal/store"
	storefactory "github.com/verlane/ollamactl/internal/store/factory"
	"github.com/verlane/ollamactl/internal/tools"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = service.Config

type HealthCheckConfig = service.HealthCheckConfig

type Status = service.Status

type State = service.State

const (
	StateStopped  = service.StateStopped
	StateStarting = service.StateStarting
	StateRunning  = service.StateRunning
	StateStopping = service.StateStopping
	StateError    = service.StateError
)

type LogConfig = logger.Config

type Logger = slog.Logger

type FileConfig = cfg.FileConfig

type HistorySink = history.Sink

type Store = store.Store

type LLMClient = llm.Client

type ChatMessage = llm.Message

type ToolDefinition = llm.ToolDefinition

type ToolCall = llm.ToolCall

type ToolRegistry = tools.Registry

// Manager is a thin facade over internal/service.Manager.
// It provides a stable public API for embedding.
type Manager struct{ inner *service.Manager }

// New builds a manager for the current operating system using the
// default logger. Use NewWithLogger to inject one.
func New(c Config) (*Manager, error) { return NewWithLogger(c, nil) }

func NewWithLogger(c Config, lg *Logger) (*Manager, error) {
	inner, err := service.NewManager(c, lg)
	if err != nil {
		return nil, err
	}
	return &Manager{inner: inner}, nil
}

func (m *Manager) Start(ctx context.Context) error         { return m.inner.StartService(ctx) }
func (m *Manager) Stop(ctx context.Context) error          { return m.inner.StopService(ctx) }
func (m *Manager) Status(ctx context.Context) Status       { return m.inner.Status(ctx) }
func (m *Manager) CheckHealth(ctx context.Context) bool    { return m.inner.CheckHealth(ctx) }
func (m *Manager) WaitForHealth(ctx context.Context) error { return m.inner.WaitForHealth(ctx) }
func (m *Manager) Config() Config                          { return m.inner.Config() }

// SetStore attaches a transition store created with NewStoreFromDSN.
func (m *Manager) SetStore(s Store) error { return m.inner.SetStore(s) }

// SetHistorySinks attaches external lifecycle-event sinks.
func (m *Manager) SetHistorySinks(sinks ...HistorySink) { m.inner.SetHistorySinks(sinks...) }

// LoadConfig parses a TOML configuration file.
func LoadConfig(path string) (*FileConfig, error) { return cfg.Load(path) }

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *FileConfig { return cfg.Default() }

// NewLogger builds a leveled logger writing colored text to stderr, or
// to a rotated file when file is non-empty.
func NewLogger(level, file string) *Logger {
	return logger.New(logger.ParseLevel(level), file)
}

// NewStoreFromDSN creates a transition store ("sqlite://...",
// "postgres://...", or a bare file path).
func NewStoreFromDSN(dsn string) (Store, error) { return storefactory.NewFromDSN(dsn) }

// NewHistorySinkFromDSN creates a lifecycle-event sink
// ("clickhouse://..." or "opensearch://...").
func NewHistorySinkFromDSN(dsn string) (HistorySink, error) {
	return histfactory.NewSinkFromDSN(dsn)
}

// NewLLMClient builds a chat/generate client for the managed server.
func NewLLMClient(baseURL, model string, timeout time.Duration) *LLMClient {
	return llm.New(baseURL, model, timeout)
}

// NewToolRegistry returns a registry preloaded with the lifecycle tools
// (status, start, stop, model listing) bound to this manager.
func (m *Manager) NewToolRegistry(client *LLMClient) (*ToolRegistry, error) {
	r := tools.NewRegistry()
	if err := tools.RegisterBuiltins(r, m.inner, client); err != nil {
		return nil, err
	}
	return r, nil
}

// NewHTTPServer starts an HTTP server exposing the admin API using the
// given manager. st may be nil to disable the history endpoint.
func NewHTTPServer(addr, basePath string, m *Manager, st Store) *http.Server {
	return iapi.NewServer(addr, basePath, m.inner, st)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It runs in the caller's goroutine.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
