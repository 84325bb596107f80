package trace

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// Step is one edge of a path, traversed From -> To.
type Step struct {
	Edge *connectivity.Edge
	From connectivity.NodeID
	To   connectivity.NodeID
}

// Path is a shortest copper path between two pads.
type Path struct {
	Net        string
	Strategy   string
	Start      board.PadKey
	End        board.PadKey
	Steps      []Step
	LengthMils float64

	graph    *connectivity.Graph
	from, to connectivity.NodeID
}

// LengthMM returns the path length in millimetres.
func (p *Path) LengthMM() float64 {
	return geom.MilsToMillimeters(p.LengthMils)
}

// Primitives returns the tracks and arcs traversed, in order, including
// copper absorbed into the junctions the path passes through.
func (p *Path) Primitives() []board.Primitive {
	var out []board.Primitive
	for i, s := range p.Steps {
		out = append(out, s.Edge.Prim)
		if i < len(p.Steps)-1 {
			out = append(out, p.graph.Node(s.To).Absorbed...)
		}
	}
	return out
}

// pathItem is a priority queue entry.
type pathItem struct {
	node connectivity.NodeID
	dist float64
}

// pathQueue is a min-heap on (dist, node).
type pathQueue []pathItem

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].node < pq[j].node
}

func (pq pathQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *pathQueue) Push(x any) {
	*pq = append(*pq, x.(pathItem))
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// FindPath returns the shortest path between two pads of g using Dijkstra's
// algorithm. Among equal-length routes into a node the edge with the lowest
// primitive ID is kept, so results are reproducible. A pad key anchored on
// several nodes (split pads) may start or end the path at any of them.
// Passing through a node costs the length of the copper absorbed into it.
func FindPath(g *connectivity.Graph, start, end board.PadKey) (*Path, error) {
	sources := g.PadNodes(start)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, start)
	}
	targets := g.PadNodes(end)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, end)
	}

	path := &Path{Net: g.Net, Strategy: g.Strategy, Start: start, End: end, graph: g}

	n := len(g.Nodes)
	isTarget := make([]bool, n)
	for _, t := range targets {
		isTarget[t] = true
	}
	for _, src := range sources {
		if isTarget[src] {
			path.from, path.to = src, src
			return path, nil
		}
	}

	dist := make([]float64, n)
	prev := make([]*connectivity.Edge, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}

	pq := &pathQueue{}
	for _, src := range sources {
		dist[src] = 0
		heap.Push(pq, pathItem{node: src})
	}

	dst := connectivity.NodeID(-1)
	for pq.Len() > 0 {
		item := heap.Pop(pq).(pathItem)
		u := item.node
		if done[u] {
			continue
		}
		done[u] = true
		if isTarget[u] {
			dst = u
			break
		}

		for _, e := range g.Adjacent(u) {
			v := e.Other(u)
			if done[v] {
				continue
			}
			nd := dist[u] + e.Weight
			if !isTarget[v] {
				nd += g.Node(v).AbsorbedLength()
			}
			switch {
			case nd < dist[v]:
			case nd == dist[v] && prev[v] != nil && e.Prim.Ref() < prev[v].Prim.Ref():
			default:
				continue
			}
			dist[v] = nd
			prev[v] = e
			heap.Push(pq, pathItem{node: v, dist: nd})
		}
	}

	if dst < 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPathFound, start, end)
	}

	// Walk predecessors back to the source the path left from.
	var steps []Step
	at := dst
	for prev[at] != nil {
		e := prev[at]
		from := e.Other(at)
		steps = append(steps, Step{Edge: e, From: from, To: at})
		at = from
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	path.from, path.to = at, dst
	path.Steps = steps
	path.LengthMils = dist[dst]
	return path, nil
}
