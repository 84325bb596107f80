// Package connectivity turns the primitives of one net into a weighted
// connectivity graph. Nodes are merged endpoint locations, edges are the
// tracks and arcs between them, weighted by length in mils.
package connectivity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// ErrEmptyNet is returned when a net has fewer than two primitives.
var ErrEmptyNet = errors.New("empty net")

// MinEdgeLength is the length in mils below which a track or arc is treated
// as degenerate and left out of the graph.
const MinEdgeLength = 1e-6

// NodeID indexes Graph.Nodes.
type NodeID int

// Node is one electrical junction.
type Node struct {
	ID    NodeID
	Point geom.Point // location of the first endpoint merged into the node
	// Anchors are the pads and vias sitting on the node, in load order.
	Anchors []board.Primitive
	// Absorbed are tracks and arcs whose two ends merged into this node.
	// A path passing through the node traverses their copper.
	Absorbed []board.Primitive
}

// AbsorbedLength returns the summed length of the absorbed copper in mils.
func (n *Node) AbsorbedLength() float64 {
	total := 0.0
	for _, p := range n.Absorbed {
		total += p.Length()
	}
	return total
}

// Edge is a track or arc joining two nodes.
type Edge struct {
	Prim   board.Primitive
	From   NodeID // node of the primitive's first terminal
	To     NodeID
	Weight float64 // mils
}

// Other returns the endpoint of e that is not n.
func (e *Edge) Other(n NodeID) NodeID {
	if e.From == n {
		return e.To
	}
	return e.From
}

// Graph is the immutable connectivity graph of one net under one strategy.
type Graph struct {
	Net      string
	Strategy string
	Nodes    []*Node
	Edges    []*Edge
	// Pruned holds tracks and arcs left out as degenerate or because both
	// ends merged into one node.
	Pruned []board.Primitive

	adj      [][]*Edge
	padNodes map[board.PadKey][]NodeID
}

// Build constructs the graph for net from its primitives under s.
// Output is deterministic for a fixed primitive order.
func Build(net string, prims []board.Primitive, s Strategy) (*Graph, error) {
	if len(prims) < 2 {
		return nil, fmt.Errorf("%w: %q has %d primitive(s)", ErrEmptyNet, net, len(prims))
	}

	g := &Graph{
		Net:      net,
		Strategy: s.Name(),
		padNodes: make(map[board.PadKey][]NodeID),
	}

	var endpoints []Endpoint
	for _, p := range prims {
		if p.Net() != net {
			return nil, fmt.Errorf("connectivity: %s #%d is on net %q, not %q", p.Kind(), p.Ref(), p.Net(), net)
		}
		if isEdge(p) && p.Length() <= MinEdgeLength {
			g.Pruned = append(g.Pruned, p)
			continue
		}
		for _, t := range p.Terminals() {
			endpoints = append(endpoints, Endpoint{Prim: p, Terminal: t})
		}
	}

	labels := s.Merge(endpoints)
	if len(labels) != len(endpoints) {
		return nil, fmt.Errorf("connectivity: strategy %s returned %d labels for %d endpoints", s.Name(), len(labels), len(endpoints))
	}

	// Renumber labels densely in order of first appearance.
	nodeOf := make(map[int]NodeID)
	ids := make([]NodeID, len(labels))
	for i, l := range labels {
		id, ok := nodeOf[l]
		if !ok {
			id = NodeID(len(g.Nodes))
			nodeOf[l] = id
			g.Nodes = append(g.Nodes, &Node{ID: id, Point: endpoints[i].Point})
		}
		ids[i] = id
	}

	for i := 0; i < len(endpoints); {
		p := endpoints[i].Prim
		switch p.Kind() {
		case board.KindPad, board.KindVia:
			g.Nodes[ids[i]].Anchors = append(g.Nodes[ids[i]].Anchors, p)
			if pad, ok := p.(*board.Pad); ok {
				g.addPadNode(pad.Key(), ids[i])
			}
			i++
		default:
			from, to := ids[i], ids[i+1]
			if from == to {
				g.Pruned = append(g.Pruned, p)
				g.Nodes[from].Absorbed = append(g.Nodes[from].Absorbed, p)
			} else {
				g.Edges = append(g.Edges, &Edge{Prim: p, From: from, To: to, Weight: p.Length()})
			}
			i += 2
		}
	}

	g.adj = make([][]*Edge, len(g.Nodes))
	for _, e := range g.Edges {
		g.adj[e.From] = append(g.adj[e.From], e)
		g.adj[e.To] = append(g.adj[e.To], e)
	}
	for _, list := range g.adj {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Prim.Ref() < list[j].Prim.Ref()
		})
	}

	return g, nil
}

func isEdge(p board.Primitive) bool {
	k := p.Kind()
	return k == board.KindTrack || k == board.KindArc
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) *Node {
	return g.Nodes[id]
}

// Adjacent returns the edges incident to n, ordered by primitive ID.
func (g *Graph) Adjacent(n NodeID) []*Edge {
	return g.adj[n]
}

func (g *Graph) addPadNode(k board.PadKey, id NodeID) {
	for _, n := range g.padNodes[k] {
		if n == id {
			return
		}
	}
	g.padNodes[k] = append(g.padNodes[k], id)
}

// PadNode returns the node a pad is anchored on. For a key repeated on the
// board (split pads) it is the node of the first copy.
func (g *Graph) PadNode(k board.PadKey) (NodeID, bool) {
	nodes := g.padNodes[k]
	if len(nodes) == 0 {
		return 0, false
	}
	return nodes[0], true
}

// PadNodes returns every node a pad key is anchored on, in load order.
func (g *Graph) PadNodes(k board.PadKey) []NodeID {
	return g.padNodes[k]
}

// PadKeys returns the anchored pads, sorted.
func (g *Graph) PadKeys() []board.PadKey {
	keys := make([]board.PadKey, 0, len(g.padNodes))
	for k := range g.padNodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// TotalLength returns the summed edge weight and absorbed copper in mils.
func (g *Graph) TotalLength() float64 {
	total := 0.0
	for _, e := range g.Edges {
		total += e.Weight
	}
	for _, n := range g.Nodes {
		total += n.AbsorbedLength()
	}
	return total
}
