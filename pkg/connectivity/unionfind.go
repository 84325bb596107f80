package connectivity

// unionFind tracks merged endpoint groups with union by rank and path
// compression.
type unionFind struct {
	parent []int
	rank   []int
}

// newUnionFind creates n singleton sets.
func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// find returns the representative of the set containing i.
func (uf *unionFind) find(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}

	// Path compression
	for i != root {
		next := uf.parent[i]
		uf.parent[i] = root
		i = next
	}
	return root
}

// union merges the sets containing a and b.
func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}

	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

// labels returns a dense label per element, numbered in order of first
// appearance.
func (uf *unionFind) labels() []int {
	out := make([]int, len(uf.parent))
	seen := make(map[int]int)
	for i := range out {
		root := uf.find(i)
		id, ok := seen[root]
		if !ok {
			id = len(seen)
			seen[root] = id
		}
		out[i] = id
	}
	return out
}
