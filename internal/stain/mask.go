package stain

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/clone"
)

// ErrChannels is returned when an image does not carry three color channels.
var ErrChannels = errors.New("image must have three color channels")

// ChannelOrder names the order in which Bounds components are applied.
type ChannelOrder int

const (
	// OrderBGR applies Lower[0]/Upper[0] to blue, [1] to green, [2] to red.
	OrderBGR ChannelOrder = iota
	// OrderRGB applies Lower[0]/Upper[0] to red, [1] to green, [2] to blue.
	OrderRGB
)

// String returns "bgr" or "rgb".
func (o ChannelOrder) String() string {
	if o == OrderRGB {
		return "rgb"
	}
	return "bgr"
}

// ParseOrder converts "bgr" or "rgb" (case-insensitive) to a ChannelOrder.
func ParseOrder(s string) (ChannelOrder, error) {
	switch strings.ToLower(s) {
	case "bgr", "":
		return OrderBGR, nil
	case "rgb":
		return OrderRGB, nil
	default:
		return OrderBGR, fmt.Errorf("unknown channel order: %s", s)
	}
}

// Bounds is an inclusive per-channel range predicate.
type Bounds struct {
	Lower [3]uint8
	Upper [3]uint8
	Order ChannelOrder
}

// DefaultBounds is the reference tuning: green restricted to 0-45,
// blue and red unrestricted.
var DefaultBounds = Bounds{
	Lower: [3]uint8{0, 0, 0},
	Upper: [3]uint8{255, 45, 255},
	Order: OrderBGR,
}

// Contains reports whether an 8-bit RGB color satisfies the predicate.
func (b Bounds) Contains(r, g, bl uint8) bool {
	s := [3]uint8{bl, g, r}
	if b.Order == OrderRGB {
		s = [3]uint8{r, g, bl}
	}
	for i := 0; i < 3; i++ {
		if s[i] < b.Lower[i] || s[i] > b.Upper[i] {
			return false
		}
	}
	return true
}

// Validate rejects ranges whose lower end exceeds the upper end.
// Such a range can never match, which is almost always a configuration slip.
func (b Bounds) Validate() error {
	for i := 0; i < 3; i++ {
		if b.Lower[i] > b.Upper[i] {
			return fmt.Errorf("channel %d: lower bound %d exceeds upper bound %d", i, b.Lower[i], b.Upper[i])
		}
	}
	return nil
}

// Mask is a binary image with the same extent as its source.
// Pix holds one byte per pixel, row-major, 1 for stain and 0 otherwise.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an all-zero mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At reports whether (x, y) is foreground. Out-of-range coordinates are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks (x, y) as foreground or background. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	var v uint8
	if on {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Mask{Width: m.Width, Height: m.Height, Pix: pix}
}

// Gray renders the mask as a grayscale image with stain at 255.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v != 0 {
			g.Pix[i] = 255
		}
	}
	return g
}

// CheckChannels rejects images that cannot be read as three color channels.
func CheckChannels(img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image: %w", ErrChannels)
	}
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model:
		return fmt.Errorf("single-channel color model %T: %w", img, ErrChannels)
	}
	return nil
}

// Build thresholds img into a stain mask using b.
//
// The image is first normalized to 8-bit RGBA in a separate buffer; the
// caller's image is only read. An image with no pixels produces an empty mask.
//
// Returns ErrChannels (wrapped) for nil or single-channel images.
func Build(img image.Image, b Bounds) (*Mask, error) {
	if err := CheckChannels(img); err != nil {
		return nil, err
	}

	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	m := NewMask(w, h)

	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			if b.Contains(p[0], p[1], p[2]) {
				m.Pix[y*w+x] = 1
			}
		}
	}
	return m, nil
}
