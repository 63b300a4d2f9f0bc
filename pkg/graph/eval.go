package graph

import (
	"fmt"

	"github.com/nullwave/audiograph/pkg/types"
)

// Tick evaluates one block (§4.2). On entry, if the graph is dirty it is
// re-sorted first; tick and snapshot_dot are the only operations that
// observe a dirty graph and the sort's outcome (cycle or not) is returned
// to the caller rather than silently swallowed.
//
// For each node in sorted order: every connected input port is filled by
// copying B samples from the producer's output buffer (a value copy, never
// an alias, per the design's elimination of cross-node aliasing); every
// unconnected input port reads as silence. The node's behavior then fills
// every output buffer.
func (g *Graph) Tick() error {
	order, err := g.EnsureSorted()
	if err != nil {
		return err
	}

	for _, id := range order {
		n := g.nodes[id]
		for i, e := range n.InEdgeByPort {
			if e == nil {
				zero(n.Inputs[i])
				continue
			}
			producer := g.nodes[e.From]
			copy(n.Inputs[i], producer.Outputs[e.OutIdx])
		}
		n.Behavior.Evaluate(n.Inputs, n.Outputs)
		checkOutputLengths(n, g.blockSize)
	}
	return nil
}

func zero(buf []types.Sample) {
	for i := range buf {
		buf[i] = 0
	}
}

// checkOutputLengths enforces the programmer contract that a behavior's
// Evaluate writes exactly blockSize samples to every output buffer (§4.1's
// behavior descriptor, §7). A violation is not recoverable the way a
// rejected edit is: it means the behavior's code disagrees with its own
// descriptor, which cannot be diagnosed or repaired in real time, so it is
// fatal rather than returned as an error.
func checkOutputLengths(n *types.Node, blockSize int) {
	for i, out := range n.Outputs {
		if len(out) != blockSize {
			panic(fmt.Sprintf("graph: node %d (%s) output %d has length %d, want %d", n.ID, n.Name, i, len(out), blockSize))
		}
	}
}
