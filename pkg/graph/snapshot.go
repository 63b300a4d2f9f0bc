package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nullwave/audiograph/pkg/types"
)

// SnapshotDot returns a stable textual description of the current topology
// for diagnostic use (§4.1, §6.4). Node lines are emitted in topological
// order with the label format "<index>) <name>"; edge lines follow, sorted
// by endpoint so that two graphs with identical node and edge sets produce
// byte-identical output regardless of the order mutations were applied in
// (§8 property 5).
func (g *Graph) SnapshotDot() (string, error) {
	order, err := g.EnsureSorted()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("digraph G {\n")

	indexOf := make(map[types.NodeID]int, len(order))
	for i, id := range order {
		indexOf[id] = i
		n := g.nodes[id]
		fmt.Fprintf(&b, "  %d [label=%q];\n", i, fmt.Sprintf("%d) %s", i, n.Name))
	}

	var edges []types.Edge
	for _, id := range order {
		edges = append(edges, g.nodes[id].OutEdges...)
	}
	sort.Slice(edges, func(i, j int) bool {
		a, c := edges[i], edges[j]
		if a.From != c.From {
			return a.From < c.From
		}
		if a.OutIdx != c.OutIdx {
			return a.OutIdx < c.OutIdx
		}
		if a.To != c.To {
			return a.To < c.To
		}
		return a.InIdx < c.InIdx
	})
	for _, e := range edges {
		fmt.Fprintf(&b, "  %d -> %d [label=\"%d->%d\"];\n", indexOf[e.From], indexOf[e.To], e.OutIdx, e.InIdx)
	}

	b.WriteString("}\n")
	return b.String(), nil
}
