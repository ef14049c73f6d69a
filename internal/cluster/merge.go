// Package cluster merges fragmented boundaries that belong to one cell.
//
// Merging is single-linkage agglomerative clustering over point sets: two
// clusters join when any point of one lies within the distance threshold of
// any point of the other. Joining is repeated until a full scan over all
// pairs finds nothing left to join.
package cluster

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/ironsheep/blast-cropper/internal/contour"
)

// DefaultThreshold is the reference join distance in pixels.
const DefaultThreshold = 100.0

// arena holds the clusters of one Merge call, addressed by integer id.
// Retired ids keep their slot with alive[id] == false.
type arena struct {
	points [][]image.Point
	boxes  []image.Rectangle // inclusive min, inclusive max
	trees  []*kdtree.Tree    // built lazily, dropped on union
	alive  []bool
}

func newArena(bs []contour.Boundary) *arena {
	a := &arena{
		points: make([][]image.Point, len(bs)),
		boxes:  make([]image.Rectangle, len(bs)),
		trees:  make([]*kdtree.Tree, len(bs)),
		alive:  make([]bool, len(bs)),
	}
	for id, b := range bs {
		pts := make([]image.Point, len(b))
		copy(pts, b)
		a.points[id] = pts
		a.boxes[id] = box(pts)
		a.alive[id] = len(pts) > 0
	}
	return a
}

// box returns the inclusive bounding box of pts.
func box(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}

// boxGap2 is the squared distance between two inclusive boxes, 0 if they overlap.
func boxGap2(a, b image.Rectangle) float64 {
	dx := max(0, b.Min.X-a.Max.X, a.Min.X-b.Max.X)
	dy := max(0, b.Min.Y-a.Max.Y, a.Min.Y-b.Max.Y)
	return float64(dx*dx + dy*dy)
}

func (a *arena) tree(id int) *kdtree.Tree {
	if a.trees[id] == nil {
		pts := make(kdtree.Points, len(a.points[id]))
		for i, p := range a.points[id] {
			pts[i] = kdtree.Point{float64(p.X), float64(p.Y)}
		}
		a.trees[id] = kdtree.New(pts, false)
	}
	return a.trees[id]
}

// linked reports whether clusters i and j have a point pair within
// sqrt(limit2) of each other.
func (a *arena) linked(i, j int, limit2 float64) bool {
	if boxGap2(a.boxes[i], a.boxes[j]) > limit2 {
		return false
	}

	// query the smaller cluster against the larger one's tree
	q, t := i, j
	if len(a.points[q]) > len(a.points[t]) {
		q, t = t, q
	}
	tr := a.tree(t)
	for _, p := range a.points[q] {
		_, d2 := tr.Nearest(kdtree.Point{float64(p.X), float64(p.Y)})
		if d2 <= limit2 {
			return true
		}
	}
	return false
}

// union appends cluster j's points to cluster i and retires j.
func (a *arena) union(i, j int) {
	a.points[i] = append(a.points[i], a.points[j]...)
	a.boxes[i] = a.boxes[i].Union(a.boxes[j])
	a.trees[i] = nil
	a.points[j] = nil
	a.trees[j] = nil
	a.alive[j] = false
}

// Merge groups boundaries whose nearest points are within threshold pixels.
//
// Parameters:
//   - bs: boundaries to merge. Not modified.
//   - threshold: maximum Euclidean distance, in pixels, between the closest
//     points of two clusters for them to join. Values <= 0 disable merging.
//
// Returns one boundary per final cluster. Each is the concatenation of its
// members' points in input order; nothing is re-simplified. Clusters are
// returned in order of their lowest-index member. Empty input boundaries are
// dropped.
//
// # Algorithm
//
// Every boundary starts as its own cluster. A pass visits each unordered pair
// of live clusters (i < j) in id order and unions j into i whenever they are
// linked. Passes repeat until one makes no union. The final partition is the
// connected components of the "within threshold" relation, so it does not
// depend on the visiting order.
//
// Pairs whose bounding boxes are already farther apart than threshold are
// skipped without looking at points. Otherwise the smaller cluster's points
// query a k-d tree over the larger cluster, stopping at the first hit.
func Merge(bs []contour.Boundary, threshold float64) []contour.Boundary {
	if threshold <= 0 || math.IsNaN(threshold) {
		out := make([]contour.Boundary, 0, len(bs))
		for _, b := range bs {
			if len(b) == 0 {
				continue
			}
			cp := make(contour.Boundary, len(b))
			copy(cp, b)
			out = append(out, cp)
		}
		return out
	}

	a := newArena(bs)
	limit2 := threshold * threshold

	for merged := true; merged; {
		merged = false
		for i := range a.alive {
			if !a.alive[i] {
				continue
			}
			for j := i + 1; j < len(a.alive); j++ {
				if !a.alive[j] {
					continue
				}
				if a.linked(i, j, limit2) {
					a.union(i, j)
					merged = true
				}
			}
		}
	}

	out := make([]contour.Boundary, 0, len(bs))
	for id, alive := range a.alive {
		if alive {
			out = append(out, contour.Boundary(a.points[id]))
		}
	}
	return out
}

// MinDistance returns the smallest Euclidean distance between any point of a
// and any point of b by exhaustive comparison. It returns +Inf when either is
// empty.
func MinDistance(a, b contour.Boundary) float64 {
	best := math.Inf(1)
	for _, p := range a {
		for _, q := range b {
			dx := float64(p.X - q.X)
			dy := float64(p.Y - q.Y)
			if d := dx*dx + dy*dy; d < best {
				best = d
			}
		}
	}
	return math.Sqrt(best)
}
