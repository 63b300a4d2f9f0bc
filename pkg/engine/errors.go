package engine

import "errors"

// Sentinel errors for engine construction and resource ceilings. These sit
// alongside, not inside, the wire error taxonomy of §7: MaxNodes/MaxEdges
// are an engine-level resource ceiling the spec's graph itself has no
// opinion on, surfaced through the same Err-reply machinery via
// editproto.Err, which falls back to "Internal" for anything types.Kind
// doesn't recognize.
var (
	ErrNilConfig       = errors.New("engine: config must not be nil")
	ErrNilRegistry     = errors.New("engine: registry must not be nil")
	ErrMaxNodesReached = errors.New("engine: maximum node count reached")
	ErrMaxEdgesReached = errors.New("engine: maximum edge count reached")
)
