// Package types provides the shared data model for the audio graph engine.
// NodeID, Node, Edge and the Behavior contract are defined here to avoid a
// circular dependency between the graph and behavior packages.
package types

import "golang.org/x/text/unicode/norm"

// NodeID is an opaque, monotonically increasing integer unique for the
// lifetime of a graph. It is never reused, even after the node it named
// has been removed, and is the only stable handle exposed across
// subsystem boundaries.
type NodeID uint64

// Sample is a single 32-bit floating point audio sample.
type Sample = float32

// Descriptor is the fixed shape of a behavior: its type name and the
// number of input and output ports it declares. A node's port count is
// determined once, at creation, from its behavior's Descriptor and is
// immutable thereafter.
type Descriptor struct {
	TypeName   string
	NumInputs  int
	NumOutputs int
}

// Behavior is the polymorphic compute strategy of a node. Evaluate must
// write exactly len(outputs[i]) samples to every output buffer, reading
// only from inputs and its own internal state; it must never retain a
// reference to either slice beyond the call.
type Behavior interface {
	Descriptor() Descriptor
	Evaluate(inputs [][]Sample, outputs [][]Sample)
}

// Dropper is implemented by behaviors that hold resources which must be
// released when their node is removed from the graph.
type Dropper interface {
	BeforeDrop()
}

// Edge is a directed connection (From, OutIdx) -> (To, InIdx). It carries
// no data of its own: it is a routing record telling the engine to copy
// the producer's output buffer into the consumer's input buffer before
// the consumer evaluates.
type Edge struct {
	From   NodeID
	OutIdx int
	To     NodeID
	InIdx  int
}

// Node bundles identity, fixed port counts, per-port sample buffers and a
// behavior. Buffers are owned by the node and live exactly as long as it
// does; inputs are filled by copy, never by aliasing a producer's buffer.
type Node struct {
	ID       NodeID
	Name     string
	Behavior Behavior

	Inputs  [][]Sample // one buffer of length BlockSize per input port
	Outputs [][]Sample // one buffer of length BlockSize per output port

	// InEdgeByPort[i] is the edge feeding input port i, or nil if unconnected.
	InEdgeByPort []*Edge
	// OutEdges is the set of edges whose source is this node, in no
	// particular order; a single output port may appear more than once.
	OutEdges []Edge
}

// NewNode allocates a node's ports and buffers from a behavior's descriptor.
// name is normalized to Unicode NFC so that two names differing only in
// composed-vs-decomposed form compare equal byte-for-byte, which
// snapshot_dot's stability requirement (§8.5) depends on.
func NewNode(id NodeID, name string, behavior Behavior, blockSize int) *Node {
	desc := behavior.Descriptor()
	n := &Node{
		ID:           id,
		Name:         norm.NFC.String(name),
		Behavior:     behavior,
		Inputs:       make([][]Sample, desc.NumInputs),
		Outputs:      make([][]Sample, desc.NumOutputs),
		InEdgeByPort: make([]*Edge, desc.NumInputs),
	}
	for i := range n.Inputs {
		n.Inputs[i] = make([]Sample, blockSize)
	}
	for i := range n.Outputs {
		n.Outputs[i] = make([]Sample, blockSize)
	}
	return n
}

// NumInputs and NumOutputs report the node's fixed port counts.
func (n *Node) NumInputs() int  { return len(n.Inputs) }
func (n *Node) NumOutputs() int { return len(n.Outputs) }
