// Package api defines the request and response types of the WordCount HTTP API.
//
// # API Overview
//
// WordCount exposes a single-shot, stateless word frequency operation:
//   - POST /wordcount  {"text": "..."} → {"word": count, ...}
//   - GET  /health     → "OK" (plain text)
//   - GET  /healthz, /ready, /version (JSON)
//
// Metrics are served on a separate listener at /metrics.
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://127.0.0.1:8080
package api
