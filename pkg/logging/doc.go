// Package logging provides structured logging for the audio graph engine.
//
// It wraps log/slog with the contextual fields the engine attaches
// consistently across its lifecycle: graph_id identifies the running
// engine instance, connection_id identifies the control-plane connection
// an edit command arrived on (§5), and node_id/node_type identify the
// node an event concerns.
//
//	logger := logging.New(logging.DefaultConfig()).WithGraphID(graphID)
//	logger.WithConnectionID(connID).Info("edit applied")
//
// JSON output is the default (production); Pretty enables a human-readable
// text handler for local development.
package logging
