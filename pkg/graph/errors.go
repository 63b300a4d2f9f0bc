package graph

import (
	"fmt"

	"github.com/nullwave/audiograph/pkg/types"
)

// errUnknownNode wraps the taxonomy's UnknownNode error with the offending id.
func errUnknownNode(id types.NodeID) error {
	return fmt.Errorf("node %d: %w", id, types.ErrUnknownNode)
}

// errPortOutOfRange wraps PortOutOfRange with the offending node/port.
func errPortOutOfRange(id types.NodeID, idx, count int) error {
	return fmt.Errorf("node %d port %d (of %d): %w", id, idx, count, types.ErrPortOutOfRange)
}

// errInputAlreadyConnected wraps InputAlreadyConnected with the offending input port.
func errInputAlreadyConnected(to types.NodeID, inIdx int) error {
	return fmt.Errorf("node %d input %d: %w", to, inIdx, types.ErrInputAlreadyConnected)
}

// errEdgeNotFound wraps EdgeNotFound with the endpoints that were searched for.
func errEdgeNotFound(from types.NodeID, outIdx int, to types.NodeID, inIdx int) error {
	return fmt.Errorf("edge %d:%d -> %d:%d: %w", from, outIdx, to, inIdx, types.ErrEdgeNotFound)
}
