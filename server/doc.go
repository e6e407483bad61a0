// Package server exposes an engine.Engine over HTTP.
//
// Routes:
//
//	POST /upload               ingest a base64 payload (header API-Key)
//	GET  /uploads/{filename}   serve the raw bytes of a stored artifact
//	GET  /healthz              liveness probe
//	GET  /metrics              Prometheus exposition (when metrics are enabled)
//
// Every failure is rendered as a JSON ResponseError. Internal failures carry
// a generic message only; their detail goes to the log.
package server
