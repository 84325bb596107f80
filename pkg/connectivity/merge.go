package connectivity

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

// DefaultTolerance is the tolerant merge radius in mils. It sits above the
// sub-mil rounding drift seen in board exports and well below the smallest
// practical pad pitch.
const DefaultTolerance = 2.0

// DefaultEpsilon is the exact strategy's coordinate quantum in mils.
const DefaultEpsilon = 1e-6

// pointSize is the half-width of the rectangle an indexed point occupies.
// rtreego rejects zero-size rectangles and treats touching as disjoint.
const pointSize = 1e-9

type indexedPoint struct {
	i    int
	rect rtreego.Rect
}

func (p *indexedPoint) Bounds() rtreego.Rect {
	return p.rect
}

// pointIndex is an R-tree over a fixed point set.
type pointIndex struct {
	points []geom.Point
	tree   *rtreego.Rtree
}

func newPointIndex(points []geom.Point) *pointIndex {
	items := make([]rtreego.Spatial, len(points))
	for i, p := range points {
		items[i] = &indexedPoint{i: i, rect: rtreego.Point{p.X, p.Y}.ToRect(pointSize)}
	}
	return &pointIndex{points: points, tree: rtreego.NewTree(2, 25, 50, items...)}
}

// within returns the indices of points no further than r from c, ascending.
func (x *pointIndex) within(c geom.Point, r float64) []int {
	hits := x.tree.SearchIntersect(rtreego.Point{c.X, c.Y}.ToRect(r))
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		i := h.(*indexedPoint).i
		if x.points[i].Distance(c) <= r {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// MergeNodes assigns a node id to every point. Points within tolerance
// share a node, transitively. Ids are numbered in order of first appearance.
// A tolerance of zero or less merges only identical points.
func MergeNodes(points []geom.Point, tolerance float64) []int {
	return MergeNodesFunc(points, tolerance, nil)
}

// MergeNodesFunc is MergeNodes with an extra predicate; i and j are only
// merged directly when compatible(i, j) is true. A nil predicate accepts
// every pair.
func MergeNodesFunc(points []geom.Point, tolerance float64, compatible func(i, j int) bool) []int {
	if len(points) == 0 {
		return nil
	}
	uf := newUnionFind(len(points))

	if tolerance <= 0 {
		mergeQuantized(points, 0, compatible, uf)
		return uf.labels()
	}

	mergeWithin(newPointIndex(points), tolerance, compatible, uf)
	return uf.labels()
}

// mergeWithin unions every compatible pair of indexed points within
// tolerance.
func mergeWithin(idx *pointIndex, tolerance float64, compatible func(i, j int) bool, uf *unionFind) {
	for i, p := range idx.points {
		for _, j := range idx.within(p, tolerance) {
			if j <= i {
				continue
			}
			if compatible == nil || compatible(i, j) {
				uf.union(i, j)
			}
		}
	}
}

type quantKey [2]int64

func quantize(p geom.Point, epsilon float64) quantKey {
	if epsilon <= 0 {
		// +0 folds negative zero into zero.
		return quantKey{int64(math.Float64bits(p.X + 0)), int64(math.Float64bits(p.Y + 0))}
	}
	return quantKey{int64(math.Round(p.X / epsilon)), int64(math.Round(p.Y / epsilon))}
}

// mergeQuantized unions compatible points no further than epsilon apart.
// Points are bucketed into epsilon cells and each point is compared with the
// points of its own and the eight neighbouring cells, so two points straddling
// a cell boundary still meet. With epsilon <= 0 only identical points merge.
func mergeQuantized(points []geom.Point, epsilon float64, compatible func(i, j int) bool, uf *unionFind) {
	cells := make(map[quantKey][]int)
	for i, p := range points {
		k := quantize(p, epsilon)
		if epsilon <= 0 {
			for _, j := range cells[k] {
				if compatible == nil || compatible(j, i) {
					uf.union(j, i)
				}
			}
			cells[k] = append(cells[k], i)
			continue
		}

		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, j := range cells[quantKey{k[0] + dx, k[1] + dy}] {
					if points[j].Distance(p) > epsilon {
						continue
					}
					if compatible == nil || compatible(j, i) {
						uf.union(j, i)
					}
				}
			}
		}
		cells[k] = append(cells[k], i)
	}
}
