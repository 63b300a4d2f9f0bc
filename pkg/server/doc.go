// Package server provides an HTTP control-plane surface over an
// engine.Engine: it exposes
//
//	POST /api/v1/edit       - submit one edit command (§6.2), waits for the reply
//	GET  /api/v1/snapshot   - current topology as Graphviz DOT (§4.1, §6.4)
//	GET  /health, /health/live, /health/ready
//	GET  /metrics           - Prometheus metrics
//
// The server owns no audio-path state: Engine.Ring is handed to the host
// audio adapter directly (§6.1), bypassing this package entirely.
package server
