package stain

import (
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// FillHoles returns a copy of m in which every background region that is not
// connected to the image border is set to foreground.
//
// Background connectivity is 4-neighbor, the dual of the 8-neighbor stain
// connectivity used for tracing, so every pocket reported as a hole border by
// contour.Extract is filled, including pockets that touch the outside only at
// a corner. The fill starts from a one pixel background frame around the
// mask, so stain touching the border does not shield the background behind
// it.
func FillHoles(m *Mask) *Mask {
	out := m.Clone()
	if m.Width == 0 || m.Height == 0 {
		return out
	}

	w, h := m.Width+2, m.Height+2
	reached := make([]bool, w*h)
	stack := make([]int, 0, 2*(w+h))
	push := func(i int) {
		if reached[i] {
			return
		}
		x, y := i%w-1, i/w-1
		if x >= 0 && y >= 0 && x < m.Width && y < m.Height && m.Pix[y*m.Width+x] != 0 {
			return
		}
		reached[i] = true
		stack = append(stack, i)
	}

	push(0)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		if x > 0 {
			push(i - 1)
		}
		if x < w-1 {
			push(i + 1)
		}
		if y > 0 {
			push(i - w)
		}
		if y < h-1 {
			push(i + w)
		}
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !reached[(y+1)*w+x+1] {
				out.Pix[y*m.Width+x] = 1
			}
		}
	}
	return out
}

// Close applies a morphological closing of the given radius: dilation
// followed by erosion. Small gaps between stain fragments are bridged while
// the overall outline is preserved. A radius <= 0 returns an unchanged copy.
func Close(m *Mask, radius float64) *Mask {
	if radius <= 0 || m.Width == 0 || m.Height == 0 {
		return m.Clone()
	}

	dilated := effect.Dilate(m.Gray(), radius)
	eroded := effect.Erode(dilated, radius)
	bin := segment.Threshold(eroded, 128)

	out := NewMask(m.Width, m.Height)
	b := bin.Bounds()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if bin.GrayAt(b.Min.X+x, b.Min.Y+y).Y != 0 {
				out.Pix[y*m.Width+x] = 1
			}
		}
	}
	return out
}
