// Package types provides the data model shared by the graph and behavior
// packages: NodeID, Node, Edge, the Behavior contract, and the engine's
// error taxonomy. Defined separately to avoid a circular dependency
// between the packages that build nodes and the packages that schedule
// them.
package types
