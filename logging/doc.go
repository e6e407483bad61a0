// Package logging provides a minimal logging interface and adapters for API64.
//
// The Logger interface defines the standard leveled methods (Debug, Info,
// Warn, Error) that the engine, the stores and the HTTP server use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - StructuredLogger, slog based, with request scoping and domain helpers
//   - With and ForContext to scope any Logger to attributes or to the
//     request ID carried by a context
//   - ZapAdapter for deployments that standardise on zap
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	gw, err := api64.New(cfg, func(o *api64.Options) { o.Logger = logger })
//
// All adapters take their extra arguments as alternating key/value pairs, in
// the manner of log/slog.
package logging
