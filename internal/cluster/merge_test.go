package cluster

import (
	"image"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/ironsheep/blast-cropper/internal/contour"
)

// circle returns the midpoint-circle outline of the given center and radius
func circle(cx, cy, r int) contour.Boundary {
	var pts contour.Boundary
	x, y, err := r, 0, 0
	for x >= y {
		pts = append(pts,
			image.Point{cx + x, cy + y}, image.Point{cx + y, cy + x},
			image.Point{cx - y, cy + x}, image.Point{cx - x, cy + y},
			image.Point{cx - x, cy - y}, image.Point{cx - y, cy - x},
			image.Point{cx + y, cy - x}, image.Point{cx + x, cy - y},
		)
		if err <= 0 {
			y++
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
	return pts
}

// square returns the four corners of an axis-aligned square
func square(x, y, size int) contour.Boundary {
	return contour.Boundary{{x, y}, {x, y + size}, {x + size, y + size}, {x + size, y}}
}

func totalPoints(bs []contour.Boundary) int {
	n := 0
	for _, b := range bs {
		n += len(b)
	}
	return n
}

// referencePartition groups boundary indices by exhaustive pairwise
// distance and transitive closure; returns a canonical form
func referencePartition(bs []contour.Boundary, threshold float64) [][]int {
	parent := make([]int, len(bs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			i = parent[i]
		}
		return i
	}
	for i := range bs {
		for j := i + 1; j < len(bs); j++ {
			if threshold > 0 && MinDistance(bs[i], bs[j]) <= threshold {
				parent[find(j)] = find(i)
			}
		}
	}
	groups := map[int][]int{}
	for i := range bs {
		r := find(i)
		groups[r] = append(groups[r], i)
	}
	return canonical(groups)
}

func canonical(groups map[int][]int) [][]int {
	out := make([][]int, 0, len(groups))
	for _, g := range groups {
		sort.Ints(g)
		out = append(out, g)
	}
	sort.Slice(out, func(a, b int) bool { return out[a][0] < out[b][0] })
	return out
}

// partitionOf recovers which inputs ended up in each merged boundary.
// Inputs must have pairwise disjoint point sets.
func partitionOf(inputs, merged []contour.Boundary) [][]int {
	owner := map[image.Point]int{}
	for i, b := range inputs {
		for _, p := range b {
			owner[p] = i
		}
	}
	groups := map[int][]int{}
	for k, b := range merged {
		seen := map[int]bool{}
		for _, p := range b {
			i := owner[p]
			if !seen[i] {
				seen[i] = true
				groups[k] = append(groups[k], i)
			}
		}
	}
	return canonical(groups)
}

func TestMerge_CirclesWithinThreshold(t *testing.T) {
	bs := []contour.Boundary{circle(0, 0, 5), circle(8, 0, 5)}

	out := Merge(bs, 10)
	if len(out) != 1 {
		t.Fatalf("got %d clusters, want 1", len(out))
	}

	r := box(out[0])
	if r.Min != (image.Point{-5, -5}) || r.Max != (image.Point{13, 5}) {
		t.Errorf("merged extent: got %v-%v, want (-5,-5)-(13,5)", r.Min, r.Max)
	}
	if len(out[0]) != len(bs[0])+len(bs[1]) {
		t.Errorf("merged point count: got %d, want %d", len(out[0]), len(bs[0])+len(bs[1]))
	}
}

func TestMerge_CirclesWithGap(t *testing.T) {
	// Outer edges 6 px apart.
	bs := []contour.Boundary{circle(0, 0, 5), circle(16, 0, 5)}

	if d := MinDistance(bs[0], bs[1]); d != 6 {
		t.Fatalf("test setup: gap is %v, want 6", d)
	}

	if out := Merge(bs, 2); len(out) != 2 {
		t.Errorf("threshold 2: got %d clusters, want 2", len(out))
	}
	if out := Merge(bs, 6); len(out) != 1 {
		t.Errorf("threshold 6 (inclusive): got %d clusters, want 1", len(out))
	}
	if out := Merge(bs, 10); len(out) != 1 {
		t.Errorf("threshold 10: got %d clusters, want 1", len(out))
	}
}

func TestMerge_TransitiveChain(t *testing.T) {
	// 0-2 and 2-1 are close, 0-1 are not: all three must end up together
	// even though the first pass visits 0-1 before 0-2.
	bs := []contour.Boundary{square(0, 0, 10), square(100, 0, 10), square(50, 0, 10)}

	out := Merge(bs, 45)
	if len(out) != 1 {
		t.Fatalf("got %d clusters, want 1", len(out))
	}
	if totalPoints(out) != 12 {
		t.Errorf("points: got %d, want 12", totalPoints(out))
	}
}

func TestMerge_ZeroThresholdUnchanged(t *testing.T) {
	bs := []contour.Boundary{square(0, 0, 5), square(5, 0, 5), square(40, 40, 3)}

	for _, thr := range []float64{0, -1, -100} {
		out := Merge(bs, thr)
		if len(out) != len(bs) {
			t.Fatalf("threshold %v: got %d clusters, want %d", thr, len(out), len(bs))
		}
		for i := range bs {
			if len(out[i]) != len(bs[i]) {
				t.Fatalf("threshold %v: boundary %d changed", thr, i)
			}
			for k := range bs[i] {
				if out[i][k] != bs[i][k] {
					t.Errorf("threshold %v: boundary %d point %d changed", thr, i, k)
				}
			}
		}
	}
}

func TestMerge_EmptyAndSingle(t *testing.T) {
	if out := Merge(nil, 100); len(out) != 0 {
		t.Errorf("nil input: got %d clusters", len(out))
	}
	if out := Merge([]contour.Boundary{}, 100); len(out) != 0 {
		t.Errorf("empty input: got %d clusters", len(out))
	}

	one := []contour.Boundary{square(3, 3, 4)}
	out := Merge(one, 1000)
	if len(out) != 1 || len(out[0]) != 4 {
		t.Errorf("single boundary must come back alone and unchanged, got %v", out)
	}
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	bs := []contour.Boundary{square(0, 0, 5), square(7, 0, 5)}
	before := []contour.Boundary{append(contour.Boundary{}, bs[0]...), append(contour.Boundary{}, bs[1]...)}

	Merge(bs, 50)

	for i := range bs {
		if len(bs[i]) != len(before[i]) {
			t.Fatalf("input boundary %d length changed", i)
		}
		for k := range bs[i] {
			if bs[i][k] != before[i][k] {
				t.Fatalf("input boundary %d modified", i)
			}
		}
	}
}

func TestMerge_PreservesPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bs := randomBoundaries(rng, 25)

	for _, thr := range []float64{5, 30, 80, 500} {
		out := Merge(bs, thr)
		if totalPoints(out) != totalPoints(bs) {
			t.Errorf("threshold %v: point count %d, want %d", thr, totalPoints(out), totalPoints(bs))
		}
	}
}

func TestMerge_MatchesReferencePartition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		bs := randomBoundaries(rng, 5+rng.Intn(20))
		thr := float64(rng.Intn(90) + 1)

		want := referencePartition(bs, thr)
		got := partitionOf(bs, Merge(bs, thr))

		if len(got) != len(want) {
			t.Fatalf("trial %d threshold %v: got %d clusters, want %d", trial, thr, len(got), len(want))
		}
		for k := range want {
			if len(got[k]) != len(want[k]) {
				t.Fatalf("trial %d: cluster %d got %v, want %v", trial, k, got[k], want[k])
			}
			for m := range want[k] {
				if got[k][m] != want[k][m] {
					t.Fatalf("trial %d: cluster %d got %v, want %v", trial, k, got[k], want[k])
				}
			}
		}
	}
}

func TestMerge_MonotoneInThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	bs := randomBoundaries(rng, 30)

	prev := math.MaxInt
	for thr := 0.0; thr <= 200; thr += 10 {
		n := len(Merge(bs, thr))
		if n > prev {
			t.Errorf("threshold %v produced %d clusters, more than %d at a smaller threshold", thr, n, prev)
		}
		prev = n
	}
}

func TestMinDistance(t *testing.T) {
	a := contour.Boundary{{0, 0}, {1, 0}}
	b := contour.Boundary{{4, 4}, {1, 4}}
	if d := MinDistance(a, b); d != 4 {
		t.Errorf("MinDistance: got %v, want 4", d)
	}
	if d := MinDistance(a, nil); !math.IsInf(d, 1) {
		t.Errorf("MinDistance with empty side: got %v, want +Inf", d)
	}
}

func TestBoxGap2(t *testing.T) {
	a := image.Rect(0, 0, 10, 10)
	tests := []struct {
		name string
		b    image.Rectangle
		want float64
	}{
		{"overlap", image.Rect(5, 5, 15, 15), 0},
		{"right", image.Rect(13, 0, 20, 10), 9},
		{"diagonal", image.Rect(13, 14, 20, 20), 9 + 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boxGap2(a, tt.b); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// randomBoundaries scatters n small closed outlines with disjoint point sets
// over a 1000x1000 field
func randomBoundaries(rng *rand.Rand, n int) []contour.Boundary {
	used := map[image.Point]bool{}
	bs := make([]contour.Boundary, 0, n)
	for len(bs) < n {
		cx, cy := rng.Intn(1000), rng.Intn(1000)
		var b contour.Boundary
		for _, p := range circle(cx, cy, 2+rng.Intn(12)) {
			if !used[p] {
				b = append(b, p)
			}
		}
		if len(b) < 3 {
			continue
		}
		for _, p := range b {
			used[p] = true
		}
		bs = append(bs, b)
	}
	return bs
}
