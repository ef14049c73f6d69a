package contour

import (
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/blast-cropper/internal/stain"
)

// Mode selects which borders Extract reports.
type Mode int

const (
	// ModeTree reports outer and hole borders with parent links.
	ModeTree Mode = iota
	// ModeExternal reports only outer borders that have no enclosing region.
	ModeExternal
)

// String returns "tree" or "external".
func (m Mode) String() string {
	if m == ModeExternal {
		return "external"
	}
	return "tree"
}

// ParseMode converts "tree" or "external" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "tree", "":
		return ModeTree, nil
	case "external":
		return ModeExternal, nil
	default:
		return ModeTree, fmt.Errorf("unknown contour mode: %s", s)
	}
}

// Contour is a filtered, compressed boundary with its place in the hierarchy.
type Contour struct {
	// Points is the compressed outline.
	Points Boundary `json:"points"`

	// Hole is true for the inner border of a background pocket.
	Hole bool `json:"hole"`

	// Parent is the index of the nearest enclosing contour in the same
	// result slice, or -1 for top-level contours.
	Parent int `json:"parent"`
}

// neighbors lists the 8-neighborhood counterclockwise on screen, starting east.
var neighbors = [8]image.Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: -1},  // NE
	{X: 0, Y: -1},  // N
	{X: -1, Y: -1}, // NW
	{X: -1, Y: 0},  // W
	{X: -1, Y: 1},  // SW
	{X: 0, Y: 1},   // S
	{X: 1, Y: 1},   // SE
}

const (
	dirEast = 0
	dirWest = 4
)

// border is one traced border before compression and filtering.
type border struct {
	points []image.Point
	hole   bool
	parent int32 // label of the parent border, 1 for the frame
}

// follow runs the Suzuki-Abe raster scan over m and returns every border,
// indexed so that borders[label-2] is the border with that label.
func follow(m *stain.Mask) []border {
	w, h := m.Width+2, m.Height+2
	f := make([]int32, w*h)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			f[(y+1)*w+x+1] = int32(m.Pix[y*m.Width+x])
		}
	}

	var offsets [8]int
	for d, n := range neighbors {
		offsets[d] = n.Y*w + n.X
	}

	// holeOf and parentOf describe the border with a given label; label 1 is
	// the frame, which behaves as a hole border with no parent.
	var borders []border
	holeOf := func(label int32) bool {
		if label <= 1 {
			return true
		}
		return borders[label-2].hole
	}
	parentOf := func(label int32) int32 {
		if label <= 1 {
			return 0
		}
		return borders[label-2].parent
	}

	nbd := int32(1)
	for y := 1; y < h-1; y++ {
		lnbd := int32(1)
		for x := 1; x < w-1; x++ {
			i := y*w + x
			v := f[i]
			if v == 0 {
				continue
			}

			from := -1
			hole := false
			if v == 1 && f[i-1] == 0 {
				from = dirWest
			} else if v >= 1 && f[i+1] == 0 {
				from = dirEast
				hole = true
				if v > 1 {
					lnbd = v
				}
			}

			if from >= 0 {
				nbd++
				parent := lnbd
				if hole == holeOf(lnbd) {
					parent = parentOf(lnbd)
				}
				pts := traceBorder(f, offsets, w, i, from, nbd)
				borders = append(borders, border{points: pts, hole: hole, parent: parent})
			}

			if f[i] != 1 {
				lnbd = abs32(f[i])
			}
		}
	}
	return borders
}

// traceBorder follows one border starting at buffer index start. from is the
// direction of the background pixel that triggered the start. Pixels on the
// border are relabelled with nbd (or -nbd where the east neighbor is
// background) so the scan does not start the same border twice.
func traceBorder(f []int32, offsets [8]int, w, start, from int, nbd int32) []image.Point {
	toPoint := func(i int) image.Point {
		return image.Point{X: i%w - 1, Y: i/w - 1}
	}

	first := -1
	for k := 0; k < 8; k++ {
		d := (from - k + 8) % 8
		if f[start+offsets[d]] != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		f[start] = -nbd
		return []image.Point{toPoint(start)}
	}

	p1 := start + offsets[first]
	p3 := start
	back := first // direction from p3 to the previous border pixel
	pts := []image.Point{toPoint(start)}

	for {
		eastZero := false
		next, step := -1, 0
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			q := p3 + offsets[d]
			if f[q] != 0 {
				next, step = q, d
				break
			}
			if d == dirEast {
				eastZero = true
			}
		}

		if eastZero {
			f[p3] = -nbd
		} else if f[p3] == 1 {
			f[p3] = nbd
		}

		if next == start && p3 == p1 {
			return pts
		}
		p3 = next
		back = (step + 4) % 8
		pts = append(pts, toPoint(p3))
	}
}

// compress drops points lying inside straight runs, keeping the first point
// and every turning point.
func compress(pts []image.Point) Boundary {
	n := len(pts)
	out := make(Boundary, 0, n)
	if n < 3 {
		return append(out, pts...)
	}
	out = append(out, pts[0])
	for k := 1; k < n; k++ {
		prev, cur, next := pts[k-1], pts[k], pts[(k+1)%n]
		if cur.Sub(prev) != next.Sub(cur) {
			out = append(out, cur)
		}
	}
	return out
}

// Extract finds the boundaries of every connected foreground region in m.
//
// Parameters:
//   - m: binary stain mask. Not modified.
//   - mode: ModeTree for outer and hole borders, ModeExternal for outermost
//     outer borders only.
//
// Returns the surviving contours in raster order of their starting pixel.
// Borders with fewer than three distinct points or a degenerate moment are
// dropped. An empty mask returns an empty slice.
func Extract(m *stain.Mask, mode Mode) []Contour {
	if m == nil || m.Width == 0 || m.Height == 0 {
		return []Contour{}
	}

	borders := follow(m)

	// index maps a border label to its position in the output, -1 if dropped
	index := make(map[int32]int, len(borders))
	out := make([]Contour, 0, len(borders))

	for k, b := range borders {
		label := int32(k + 2)
		index[label] = -1

		if mode == ModeExternal && (b.hole || b.parent > 1) {
			continue
		}

		pts := compress(b.points)
		if pts.Distinct() < 3 || PolygonMoments(pts).Degenerate() {
			continue
		}

		parent := -1
		for up := b.parent; up > 1; up = borders[up-2].parent {
			if idx := index[up]; idx >= 0 {
				parent = idx
				break
			}
		}

		index[label] = len(out)
		out = append(out, Contour{Points: pts, Hole: b.hole, Parent: parent})
	}
	return out
}

// Boundaries strips hierarchy information from contours.
func Boundaries(cs []Contour) []Boundary {
	out := make([]Boundary, len(cs))
	for i, c := range cs {
		out[i] = c.Points
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
