// Package config centralizes configuration for the audio graph engine:
// block size and sample rate for the signal path, ring and queue sizing
// for the real-time transport, and resource ceilings for the graph.
//
// Default, Development, Production and Testing return ready-to-use
// configurations; Validate checks field invariants and Clone deep-copies.
package config
