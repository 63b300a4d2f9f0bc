// Package graph is the node arena and block scheduler for the signal-flow
// graph. It owns nodes by stable NodeID, applies the structural mutations
// (AddNode, RemoveNode, Connect, Disconnect), and evaluates one block per
// node in the deterministic order produced by Kahn's algorithm.
//
// The graph is a Clean/Dirty state machine: any structural mutation marks
// it Dirty; Tick and SnapshotDot re-sort on entry if Dirty and transition
// to Clean. Evaluation itself never changes the state.
//
// A Graph is not safe for concurrent use; it is owned exclusively by the
// generator goroutine (see package engine).
package graph
