// Package projection turns classified regions into crop and draw
// instructions for external renderers, and names their output files.
package projection

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/blast-cropper/internal/region"
)

// ErrMisaligned is returned when the rectangle and keep-flag slices differ in length.
var ErrMisaligned = errors.New("rectangles and keep flags are not aligned")

// DefaultStrokeWidth is the reference overlay line thickness in pixels.
const DefaultStrokeWidth = 20

// Default overlay colors.
const (
	DefaultKeepColor    = "#00FF00"
	DefaultDiscardColor = "#FF0000"
)

// Crop names the sub-image of one kept region.
type Crop struct {
	// Index is the region's position in the full rectangle list, including
	// discarded regions, so file names stay stable across min-size changes.
	Index int         `json:"index"`
	Rect  region.Rect `json:"rect"`
}

// Draw is one rectangle outline to paint onto the overview image.
// (X1, Y1) is the top-left corner and (X2, Y2) = (X+Width, Y+Height).
type Draw struct {
	X1    int         `json:"x1"`
	Y1    int         `json:"y1"`
	X2    int         `json:"x2"`
	Y2    int         `json:"y2"`
	Color color.NRGBA `json:"-"`
	Hex   string      `json:"color"`
	Width int         `json:"stroke_width"`
	Keep  bool        `json:"keep"`
}

// Style sets overlay colors and stroke width.
type Style struct {
	KeepColor    colorful.Color
	DiscardColor colorful.Color
	StrokeWidth  int
}

// DefaultStyle returns green for keep, red for discard, 20 px strokes.
func DefaultStyle() Style {
	s, _ := ParseStyle(DefaultKeepColor, DefaultDiscardColor, DefaultStrokeWidth)
	return s
}

// ParseStyle builds a Style from "#RRGGBB" colors.
func ParseStyle(keepHex, discardHex string, strokeWidth int) (Style, error) {
	keep, err := colorful.Hex(keepHex)
	if err != nil {
		return Style{}, fmt.Errorf("invalid keep color %q: %w", keepHex, err)
	}
	discard, err := colorful.Hex(discardHex)
	if err != nil {
		return Style{}, fmt.Errorf("invalid discard color %q: %w", discardHex, err)
	}
	if strokeWidth < 1 {
		return Style{}, fmt.Errorf("stroke width must be at least 1, got %d", strokeWidth)
	}
	return Style{KeepColor: keep, DiscardColor: discard, StrokeWidth: strokeWidth}, nil
}

func nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Crops returns one crop instruction per kept rectangle, in list order.
func Crops(rs []region.Rect, keep []bool) ([]Crop, error) {
	if len(rs) != len(keep) {
		return nil, fmt.Errorf("%d rectangles, %d flags: %w", len(rs), len(keep), ErrMisaligned)
	}
	crops := make([]Crop, 0, len(rs))
	for i, r := range rs {
		if keep[i] {
			crops = append(crops, Crop{Index: i, Rect: r})
		}
	}
	return crops, nil
}

// Overlay returns one draw instruction per rectangle, kept or not.
func Overlay(rs []region.Rect, keep []bool, style Style) ([]Draw, error) {
	if len(rs) != len(keep) {
		return nil, fmt.Errorf("%d rectangles, %d flags: %w", len(rs), len(keep), ErrMisaligned)
	}
	draws := make([]Draw, len(rs))
	for i, r := range rs {
		c := style.DiscardColor
		if keep[i] {
			c = style.KeepColor
		}
		draws[i] = Draw{
			X1:    r.X,
			Y1:    r.Y,
			X2:    r.X + r.Width,
			Y2:    r.Y + r.Height,
			Color: nrgba(c),
			Hex:   c.Clamped().Hex(),
			Width: style.StrokeWidth,
			Keep:  keep[i],
		}
	}
	return draws, nil
}

// CropName returns "{base}[{index}]{ext}".
func CropName(base string, index int, ext string) string {
	return base + "[" + strconv.Itoa(index) + "]" + ext
}

// OverlayName returns "{base}r{ext}".
func OverlayName(base, ext string) string {
	return base + "r" + ext
}
