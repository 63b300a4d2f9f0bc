// Package graph is the arena and scheduler for the audio signal-flow graph:
// it owns every live node by stable NodeID, tracks incident edges, and
// produces the deterministic topological order that block evaluation
// follows.
package graph

import (
	"github.com/nullwave/audiograph/pkg/types"
)

// Graph is a collection of nodes keyed by NodeID, plus a cached topological
// order and a dirty flag (§3, §4.1). It is the arena that replaces the
// source's manually allocated, pointer-linked nodes: edges reference
// endpoints by NodeID only, and buffers are located through the arena at
// evaluation time.
type Graph struct {
	blockSize int
	nextID    types.NodeID
	nodes     map[types.NodeID]*types.Node
	edgeCount int

	dirty bool
	order []types.NodeID // valid only when !dirty
}

// New creates an empty Graph whose nodes carry buffers of the given block size.
func New(blockSize int) *Graph {
	return &Graph{
		blockSize: blockSize,
		nodes:     make(map[types.NodeID]*types.Node),
		dirty:     true,
	}
}

// Len reports the number of live nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount reports the number of live edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// Dirty reports whether the cached topological order is stale.
func (g *Graph) Dirty() bool { return g.dirty }

// AddNode allocates ports and buffers per the behavior's descriptor, assigns
// the next NodeID, and marks the graph dirty. Succeeds always (§4.1).
func (g *Graph) AddNode(name string, behavior types.Behavior) types.NodeID {
	id := g.nextID
	g.nextID++
	g.nodes[id] = types.NewNode(id, name, behavior, g.blockSize)
	g.dirty = true
	return id
}

// GetNode retrieves a node by id, or nil if it is not live.
func (g *Graph) GetNode(id types.NodeID) *types.Node {
	return g.nodes[id]
}

// Release removes every live node, invoking each behavior's before_drop
// hook as RemoveNode does, and leaves the graph empty. Used only during
// cooperative shutdown (§5), after the generator has stopped ticking.
func (g *Graph) Release() {
	ids := make([]types.NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	for _, id := range ids {
		g.RemoveNode(id)
	}
}

// RemoveNode removes every incident edge, invokes the behavior's optional
// before_drop hook, then drops the node. Fails with UnknownNode if absent.
func (g *Graph) RemoveNode(id types.NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return errUnknownNode(id)
	}

	for i, e := range n.InEdgeByPort {
		if e != nil {
			g.removeOutEdgeRecord(e.From, *e)
			n.InEdgeByPort[i] = nil
			g.edgeCount--
		}
	}
	for _, e := range n.OutEdges {
		if target := g.nodes[e.To]; target != nil {
			target.InEdgeByPort[e.InIdx] = nil
			g.edgeCount--
		}
	}

	if dropper, ok := n.Behavior.(types.Dropper); ok {
		dropper.BeforeDrop()
	}

	delete(g.nodes, id)
	g.dirty = true
	return nil
}

// Connect records the edge (from, outIdx) -> (to, inIdx) on both endpoints
// and marks the graph dirty. Fails with UnknownNode, PortOutOfRange,
// InputAlreadyConnected, or WouldCreateCycle.
func (g *Graph) Connect(from types.NodeID, outIdx int, to types.NodeID, inIdx int) error {
	src, ok := g.nodes[from]
	if !ok {
		return errUnknownNode(from)
	}
	dst, ok := g.nodes[to]
	if !ok {
		return errUnknownNode(to)
	}
	if outIdx < 0 || outIdx >= src.NumOutputs() {
		return errPortOutOfRange(from, outIdx, src.NumOutputs())
	}
	if inIdx < 0 || inIdx >= dst.NumInputs() {
		return errPortOutOfRange(to, inIdx, dst.NumInputs())
	}
	if dst.InEdgeByPort[inIdx] != nil {
		return errInputAlreadyConnected(to, inIdx)
	}

	edge := types.Edge{From: from, OutIdx: outIdx, To: to, InIdx: inIdx}
	if g.wouldCreateCycle(edge) {
		return types.ErrWouldCreateCycle
	}

	src.OutEdges = append(src.OutEdges, edge)
	dst.InEdgeByPort[inIdx] = &edge
	g.edgeCount++
	g.dirty = true
	return nil
}

// Disconnect removes the edge (from, outIdx) -> (to, inIdx) from both
// endpoints. Fails with EdgeNotFound if no such edge exists.
func (g *Graph) Disconnect(from types.NodeID, outIdx int, to types.NodeID, inIdx int) error {
	dst, ok := g.nodes[to]
	if !ok || inIdx < 0 || inIdx >= len(dst.InEdgeByPort) {
		return errEdgeNotFound(from, outIdx, to, inIdx)
	}
	e := dst.InEdgeByPort[inIdx]
	if e == nil || e.From != from || e.OutIdx != outIdx {
		return errEdgeNotFound(from, outIdx, to, inIdx)
	}

	dst.InEdgeByPort[inIdx] = nil
	g.removeOutEdgeRecord(from, *e)
	g.edgeCount--
	g.dirty = true
	return nil
}

// removeOutEdgeRecord deletes the single matching edge record from src's
// OutEdges slice, preserving the relative order of the rest.
func (g *Graph) removeOutEdgeRecord(src types.NodeID, edge types.Edge) {
	n, ok := g.nodes[src]
	if !ok {
		return
	}
	for i, e := range n.OutEdges {
		if e == edge {
			n.OutEdges = append(n.OutEdges[:i], n.OutEdges[i+1:]...)
			return
		}
	}
}

// wouldCreateCycle performs a cheap reachability check: does adding `edge`
// create a path from edge.To back to edge.From? Performed eagerly so
// Connect can reject it before the graph is ever left inconsistent.
func (g *Graph) wouldCreateCycle(edge types.Edge) bool {
	if edge.From == edge.To {
		return true
	}
	visited := make(map[types.NodeID]bool)
	stack := []types.NodeID{edge.To}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == edge.From {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if n := g.nodes[cur]; n != nil {
			for _, e := range n.OutEdges {
				stack = append(stack, e.To)
			}
		}
	}
	return false
}

// EnsureSorted returns the cached topological order, recomputing it if the
// graph is dirty, and transitions the graph to Clean.
func (g *Graph) EnsureSorted() ([]types.NodeID, error) {
	if !g.dirty {
		return g.order, nil
	}
	order, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}
	g.order = order
	g.dirty = false
	return order, nil
}

// topologicalSort performs Kahn's algorithm with deterministic ascending
// NodeID tie-breaking (§4.2): a given graph has exactly one legal schedule.
//
// Optimizations carried over from the teacher's string-keyed version:
// pre-sized maps, a queue slice pre-sized to the node count to avoid
// reallocation, and
// insertion sort for the (typically small) zero-in-degree seed set.
func (g *Graph) topologicalSort() ([]types.NodeID, error) {
	numNodes := len(g.nodes)
	if numNodes == 0 {
		return []types.NodeID{}, nil
	}

	inDegree := make(map[types.NodeID]int, numNodes)
	adjacency := make(map[types.NodeID][]types.NodeID, numNodes)

	for id := range g.nodes {
		inDegree[id] = 0
	}
	for id, n := range g.nodes {
		for _, e := range n.OutEdges {
			adjacency[id] = append(adjacency[id], e.To)
			inDegree[e.To]++
		}
	}

	seed := make([]types.NodeID, 0, numNodes)
	for id, degree := range inDegree {
		if degree == 0 {
			seed = append(seed, id)
		}
	}
	insertionSort(seed)

	queue := make([]types.NodeID, numNodes)
	queueStart, queueEnd := 0, len(seed)
	copy(queue, seed)

	order := make([]types.NodeID, 0, numNodes)

	for queueStart < queueEnd {
		current := queue[queueStart]
		queueStart++
		order = append(order, current)

		neighbors := append([]types.NodeID(nil), adjacency[current]...)
		insertionSort(neighbors)
		for _, neighbor := range neighbors {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue[queueEnd] = neighbor
				queueEnd++
			}
		}
	}

	if len(order) != numNodes {
		return nil, types.ErrCycleDetected
	}
	return order, nil
}

// insertionSort sorts a slice of NodeIDs in place. Faster than the standard
// library sort for the small n typical of a node's fan-out or the seed set.
func insertionSort(ids []types.NodeID) {
	for i := 1; i < len(ids); i++ {
		key := ids[i]
		j := i - 1
		for j >= 0 && ids[j] > key {
			ids[j+1] = ids[j]
			j--
		}
		ids[j+1] = key
	}
}
