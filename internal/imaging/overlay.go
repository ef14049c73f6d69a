package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/blast-cropper/internal/projection"
)

// DrawOverlay returns a copy of img with every draw instruction painted as a
// rectangle outline. Strokes are centered on the rectangle edges and clipped
// to the image; img itself is not modified.
func DrawOverlay(img image.Image, draws []projection.Draw) *image.NRGBA {
	out := imaging.Clone(img)
	for _, d := range draws {
		drawRect(out, d)
	}
	return out
}

func drawRect(img *image.NRGBA, d projection.Draw) {
	stroke := d.Width
	if stroke < 1 {
		stroke = 1
	}
	lo := stroke / 2
	hi := stroke - lo - 1

	left, right := d.X1-lo, d.X2+hi
	top, bottom := d.Y1-lo, d.Y2+hi

	fillRect(img, image.Rect(left, top, right+1, d.Y1+hi+1), d.Color)
	fillRect(img, image.Rect(left, d.Y2-lo, right+1, bottom+1), d.Color)
	fillRect(img, image.Rect(left, top, d.X1+hi+1, bottom+1), d.Color)
	fillRect(img, image.Rect(d.X2-lo, top, right+1, bottom+1), d.Color)
}

// fillRect paints r (in coordinates relative to the image's top-left) clipped to img.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	b := img.Bounds()
	r = r.Add(b.Min).Intersect(b)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
