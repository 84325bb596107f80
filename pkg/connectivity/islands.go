package connectivity

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
)

// Island is one connected component of a net graph.
type Island struct {
	Nodes  []NodeID       `json:"nodes"`
	Pads   []board.PadKey `json:"pads"`
	Vias   int            `json:"vias"`
	Edges  int            `json:"edges"`
	Length float64        `json:"length_mils"`
}

// Islands splits g into its connected components, ordered by lowest node id.
// A net that resolves into one island is fully connected under g's strategy.
func Islands(g *Graph) []Island {
	ug := simple.NewUndirectedGraph()
	for _, n := range g.Nodes {
		ug.AddNode(simple.Node(n.ID))
	}
	for _, e := range g.Edges {
		if ug.HasEdgeBetween(int64(e.From), int64(e.To)) {
			continue
		}
		ug.SetEdge(ug.NewEdge(simple.Node(e.From), simple.Node(e.To)))
	}

	components := topo.ConnectedComponents(ug)
	islandOf := make(map[NodeID]int, len(g.Nodes))
	islands := make([]Island, len(components))
	for i, comp := range components {
		for _, n := range comp {
			id := NodeID(n.ID())
			islands[i].Nodes = append(islands[i].Nodes, id)
			islandOf[id] = i
		}
		sort.Slice(islands[i].Nodes, func(a, b int) bool {
			return islands[i].Nodes[a] < islands[i].Nodes[b]
		})
	}

	for _, e := range g.Edges {
		is := &islands[islandOf[e.From]]
		is.Edges++
		is.Length += e.Weight
	}
	listed := make([]map[board.PadKey]bool, len(islands))
	for _, n := range g.Nodes {
		i := islandOf[n.ID]
		is := &islands[i]
		is.Length += n.AbsorbedLength()
		for _, a := range n.Anchors {
			switch p := a.(type) {
			case *board.Pad:
				if listed[i] == nil {
					listed[i] = make(map[board.PadKey]bool)
				}
				if listed[i][p.Key()] {
					continue
				}
				listed[i][p.Key()] = true
				is.Pads = append(is.Pads, p.Key())
			case *board.Via:
				is.Vias++
			}
		}
	}

	sort.Slice(islands, func(i, j int) bool {
		return islands[i].Nodes[0] < islands[j].Nodes[0]
	})
	return islands
}
