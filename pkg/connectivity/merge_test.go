package connectivity

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMergeNodes(t *testing.T) {
	tests := []struct {
		name      string
		points    []geom.Point
		tolerance float64
		want      []int
	}{
		{
			name:      "empty",
			points:    nil,
			tolerance: 2,
			want:      nil,
		},
		{
			name:      "identical points",
			points:    []geom.Point{geom.Pt(1, 1), geom.Pt(1, 1)},
			tolerance: 2,
			want:      []int{0, 0},
		},
		{
			name:      "sub-mil drift merges",
			points:    []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(0.4, 0.3)},
			tolerance: 2,
			want:      []int{0, 1, 0},
		},
		{
			name:      "exactly on tolerance merges",
			points:    []geom.Point{geom.Pt(0, 0), geom.Pt(2, 0)},
			tolerance: 2,
			want:      []int{0, 0},
		},
		{
			name:      "beyond tolerance stays apart",
			points:    []geom.Point{geom.Pt(0, 0), geom.Pt(2.1, 0)},
			tolerance: 2,
			want:      []int{0, 1},
		},
		{
			name:      "transitive chain",
			points:    []geom.Point{geom.Pt(0, 0), geom.Pt(3, 0), geom.Pt(1.5, 0)},
			tolerance: 2,
			want:      []int{0, 0, 0},
		},
		{
			name:      "ids in first appearance order",
			points:    []geom.Point{geom.Pt(50, 50), geom.Pt(0, 0), geom.Pt(50.5, 50), geom.Pt(0, 1)},
			tolerance: 2,
			want:      []int{0, 1, 0, 1},
		},
		{
			name:      "zero tolerance merges identical only",
			points:    []geom.Point{geom.Pt(0, 0), geom.Pt(0, 1e-9), geom.Pt(0, 0)},
			tolerance: 0,
			want:      []int{0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeNodes(tt.points, tt.tolerance)
			if !sameInts(got, tt.want) {
				t.Errorf("MergeNodes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeNodesFuncRespectsPredicate(t *testing.T) {
	points := []geom.Point{geom.Pt(0, 0), geom.Pt(0.5, 0), geom.Pt(1, 0)}
	// 0 and 1 are incompatible, but both touch 2.
	compatible := func(i, j int) bool {
		return !(i == 0 && j == 1)
	}

	got := MergeNodesFunc(points, 2, compatible)
	if !sameInts(got, []int{0, 0, 0}) {
		t.Errorf("MergeNodesFunc() = %v, want all merged through point 2", got)
	}

	never := func(i, j int) bool { return false }
	got = MergeNodesFunc(points, 2, never)
	if !sameInts(got, []int{0, 1, 2}) {
		t.Errorf("MergeNodesFunc(never) = %v, want [0 1 2]", got)
	}
}

func TestMergeNodesScales(t *testing.T) {
	// A long chain of points 1 mil apart collapses into a single node.
	points := make([]geom.Point, 2000)
	for i := range points {
		points[i] = geom.Pt(float64(i), 0)
	}

	got := MergeNodes(points, 2)
	for i, id := range got {
		if id != 0 {
			t.Fatalf("MergeNodes()[%d] = %d, want 0", i, id)
		}
	}
}

func TestExactMergesAcrossCellBoundary(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want []int
	}{
		{"same cell", 1000, 1000.0000003, []int{0, 0}},
		{"straddling a cell boundary", 1000.0000004999, 1000.0000005001, []int{0, 0}},
		{"neighbouring cells within epsilon", 1000.0000001, 1000.0000009, []int{0, 0}},
		{"neighbouring cells beyond epsilon", 1000.00000001, 1000.0000014, []int{0, 1}},
		{"far apart", 1000, 1000.01, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoints := []Endpoint{
				{Terminal: board.Terminal{Point: geom.Pt(tt.a, 50), Layer: "F.Cu"}},
				{Terminal: board.Terminal{Point: geom.Pt(tt.b, 50), Layer: "F.Cu"}},
			}
			if got := NewExact().Merge(endpoints); !sameInts(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(3, 4)
	uf.union(1, 4)

	if uf.find(0) != uf.find(3) {
		t.Error("0 and 3 should share a root")
	}
	if uf.find(2) == uf.find(0) {
		t.Error("2 should be isolated")
	}
	if got := uf.labels(); !sameInts(got, []int{0, 0, 1, 0, 0}) {
		t.Errorf("labels() = %v, want [0 0 1 0 0]", got)
	}
}
