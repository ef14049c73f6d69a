package contour

import "image"

// Boundary is an ordered, implicitly closed outline of one region.
type Boundary []image.Point

// Bounds returns the smallest image.Rectangle containing every point,
// with Max exclusive. An empty boundary returns the zero rectangle.
func (b Boundary) Bounds() image.Rectangle {
	if len(b) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: b[0], Max: b[0]}
	for _, p := range b[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	r.Max.X++
	r.Max.Y++
	return r
}

// Distinct returns the number of distinct points in the boundary.
func (b Boundary) Distinct() int {
	seen := make(map[image.Point]struct{}, len(b))
	for _, p := range b {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// Moments holds the raw spatial moments of a closed polygon.
type Moments struct {
	M00 float64 `json:"m00"` // enclosed area
	M10 float64 `json:"m10"` // first moment about the y axis
	M01 float64 `json:"m01"` // first moment about the x axis
}

// Degenerate reports whether any moment truncates to zero. Such outlines are
// lines, single pixels, or slivers hugging the image origin, never regions.
func (m Moments) Degenerate() bool {
	return int(m.M00) == 0 || int(m.M10) == 0 || int(m.M01) == 0
}

// PolygonMoments computes area moments of b treated as a closed polygon
// through the point centers, using Green's theorem. The sign is normalized so
// M00 is never negative regardless of the tracing direction.
func PolygonMoments(b Boundary) Moments {
	n := len(b)
	if n < 3 {
		return Moments{}
	}

	var a, mx, my float64
	for i := 0; i < n; i++ {
		p := b[i]
		q := b[(i+1)%n]
		xi, yi := float64(p.X), float64(p.Y)
		xj, yj := float64(q.X), float64(q.Y)
		cross := xi*yj - xj*yi
		a += cross
		mx += (xi + xj) * cross
		my += (yi + yj) * cross
	}

	m := Moments{M00: a / 2, M10: mx / 6, M01: my / 6}
	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}
