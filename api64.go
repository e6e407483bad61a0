// Package api64 provides a high-level façade wiring the ingestion engine,
// the artifact store, logging, metrics and the HTTP transport into one
// Gateway. Most applications interact with this package by:
//  1. Loading a config.Config (config.Load)
//  2. Creating a Gateway via New(cfg), optionally overriding the store or logger
//  3. Serving Gateway.Handler() with net/http
//
// The façade delegates the pipeline to engine.Engine and the routing table to
// server.Server while keeping setup concise.
package api64

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/antmrlt/API64/artifact"
	"github.com/antmrlt/API64/config"
	"github.com/antmrlt/API64/core"
	"github.com/antmrlt/API64/engine"
	"github.com/antmrlt/API64/logging"
	"github.com/antmrlt/API64/metrics"
	"github.com/antmrlt/API64/mimetype"
	"github.com/antmrlt/API64/naming"
	"github.com/antmrlt/API64/server"
)

// Options configures the Gateway instance.
type Options struct {
	// Store overrides the store selected by cfg.Storage.Backend.
	Store core.ArtifactStore

	// Logger overrides the logger built from cfg.Log.
	Logger logging.Logger

	// LogOutput receives log lines of the logger built from cfg.Log.
	// Defaults to os.Stdout.
	LogOutput io.Writer

	// Names overrides the artifact name generator.
	Names *naming.Generator

	// DisableMetrics removes the Prometheus instrumentation and /metrics.
	DisableMetrics bool

	// Callbacks are registered with the engine in addition to the metrics
	// callback.
	Callbacks []engine.Callback
}

// Gateway is the assembled service.
type Gateway struct {
	cfg     config.Config
	engine  *engine.Engine
	server  *server.Server
	metrics *metrics.Metrics
	logger  logging.Logger
}

// New assembles a Gateway from cfg. Empty settings take their defaults and
// the storage directory is created when it does not exist yet.
func New(cfg config.Config, optFns ...func(o *Options)) (*Gateway, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{LogOutput: os.Stdout}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(cfg.Log, opts.LogOutput); err != nil {
			return nil, err
		}
	}

	store := opts.Store
	if store == nil {
		var err error
		if store, err = newStore(cfg.Storage); err != nil {
			return nil, err
		}
	}

	var m *metrics.Metrics
	callbacks := append([]engine.Callback(nil), opts.Callbacks...)
	if !opts.DisableMetrics {
		m = metrics.New()
		callbacks = append(callbacks, metricsCallback(m))
	}

	resolver := mimetype.NewResolver(mimetype.DefaultTable().Merge(cfg.ContentTypes))

	eng := engine.New(func(o *engine.Options) {
		o.Config = engine.Config{
			APIKey:    cfg.APIKey,
			IOTimeout: cfg.Storage.IOTimeout,
		}
		o.Store = store
		o.Resolver = resolver
		o.URLFor = cfg.FileURL
		o.Logger = logger
		o.Callbacks = callbacks
		if opts.Names != nil {
			o.Names = opts.Names
		}
	})

	srv := server.New(eng, func(o *server.Options) {
		o.Metrics = m
		o.Logger = logger
		o.AllowedOrigins = cfg.CORS.AllowedOrigins
	})

	return &Gateway{
		cfg:     cfg,
		engine:  eng,
		server:  srv,
		metrics: m,
		logger:  logger,
	}, nil
}

// Handler returns the HTTP handler serving every route.
func (g *Gateway) Handler() http.Handler {
	return g.server
}

// Engine returns the underlying engine.
func (g *Gateway) Engine() *engine.Engine {
	return g.engine
}

// Logger returns the logger the gateway writes to.
func (g *Gateway) Logger() logging.Logger {
	return g.logger
}

// Config returns the configuration the gateway was built from.
func (g *Gateway) Config() config.Config {
	return g.cfg
}

// Ingest runs one ingestion call without going through HTTP.
func (g *Gateway) Ingest(ctx context.Context, credential string, req core.IngestionRequest) (*core.IngestionResult, error) {
	return g.engine.Ingest(ctx, credential, req)
}

// NewLogger builds the logger selected by cfg. Empty settings take their
// defaults.
func NewLogger(cfg config.LogConfig, out io.Writer) (logging.Logger, error) {
	cfg = cfg.WithDefaults()
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "zap":
		return logging.NewZapLogger(level, cfg.Format, out), nil
	case "slog":
		return logging.NewLogger(&logging.LoggerConfig{
			Level:     level,
			Format:    cfg.Format,
			Output:    out,
			Component: "api64",
		}), nil
	}
	return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
}

func newStore(cfg config.StorageConfig) (core.ArtifactStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return artifact.NewInMemoryStore(), nil
	case config.BackendDisk:
		return artifact.NewDiskStore(cfg.Dir)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func metricsCallback(m *metrics.Metrics) engine.Callback {
	return engine.NewFunctionCallback(engine.CallbackAfterIngest, func(_ context.Context, cc *engine.CallbackContext) error {
		outcome := "ok"
		switch {
		case cc.Err == nil:
		case core.IsClientError(cc.Err):
			outcome = "client_error"
		default:
			outcome = "server_error"
		}
		m.ObserveIngestion(cc.Extension, outcome, cc.Size)
		return nil
	})
}
