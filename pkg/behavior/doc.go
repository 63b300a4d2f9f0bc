// Package behavior holds the process-wide recipe registry and the
// reference unit generators (Waveform, Sum, Product, Sin,
// InterleavingOutput) that implement types.Behavior.
//
// The registry is populated once at startup via MustRegister and is
// read-only thereafter; AddNode resolves a node_type string against it
// to obtain a fresh behavior instance.
package behavior
