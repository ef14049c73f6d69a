// Package region computes bounding rectangles for merged boundaries and
// labels each one keep or discard by a minimum-size rule.
package region

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/blast-cropper/internal/contour"
)

// DefaultMinSize is the reference minimum width and height, in pixels, of a
// region worth keeping. It is tuned to one imaging resolution.
const DefaultMinSize = 260

var (
	// ErrNegativeSize is returned for a negative minimum size.
	ErrNegativeSize = errors.New("minimum size must not be negative")

	// ErrEmptyBoundary is returned when a boundary has no points.
	ErrEmptyBoundary = errors.New("boundary has no points")
)

// Rect is an axis-aligned rectangle in image pixel coordinates.
// Width and Height count pixels, so a single pixel has Width == Height == 1.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image converts r to an image.Rectangle with exclusive Max.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns Width * Height.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// BoundingRect returns the minimal rectangle containing every point of b.
// An empty boundary returns the zero Rect.
func BoundingRect(b contour.Boundary) Rect {
	if len(b) == 0 {
		return Rect{}
	}
	r := b.Bounds()
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Keep reports whether r is at least minSize in both dimensions.
func Keep(r Rect, minSize int) bool {
	return r.Width >= minSize && r.Height >= minSize
}

// Classify computes one bounding rectangle and one keep flag per boundary.
//
// Parameters:
//   - bs: merged boundaries, each with at least one point.
//   - minSize: a rectangle narrower or shorter than this is discarded.
//
// Returns two slices of equal length, aligned with bs. An empty bs yields two
// empty slices.
//
// # Errors
//
//   - ErrNegativeSize if minSize < 0
//   - ErrEmptyBoundary if any boundary has no points
func Classify(bs []contour.Boundary, minSize int) ([]Rect, []bool, error) {
	if minSize < 0 {
		return nil, nil, fmt.Errorf("classify: %d: %w", minSize, ErrNegativeSize)
	}

	rects := make([]Rect, 0, len(bs))
	for i, b := range bs {
		if len(b) == 0 {
			return nil, nil, fmt.Errorf("classify: boundary %d: %w", i, ErrEmptyBoundary)
		}
		rects = append(rects, BoundingRect(b))
	}

	keep, err := ClassifyRects(rects, minSize)
	if err != nil {
		return nil, nil, err
	}
	return rects, keep, nil
}

// ClassifyRects recomputes keep flags for existing rectangles. Applying it
// twice with the same minSize yields the same flags.
func ClassifyRects(rs []Rect, minSize int) ([]bool, error) {
	if minSize < 0 {
		return nil, fmt.Errorf("classify: %d: %w", minSize, ErrNegativeSize)
	}
	keep := make([]bool, len(rs))
	for i, r := range rs {
		keep[i] = Keep(r, minSize)
	}
	return keep, nil
}
