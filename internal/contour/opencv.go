//go:build opencv

package contour

import (
	"gocv.io/x/gocv"

	"github.com/ironsheep/blast-cropper/internal/stain"
)

func init() {
	Register("opencv", ExtractOpenCV)
}

// ExtractOpenCV runs OpenCV's findContours over the mask. Hierarchy is not
// reported: every contour comes back with Parent -1 and Hole false.
//
// Requires OpenCV 4 and building with -tags opencv.
func ExtractOpenCV(m *stain.Mask, mode Mode) []Contour {
	if m == nil || m.Width == 0 || m.Height == 0 {
		return []Contour{}
	}

	g := m.Gray()
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, g.Pix)
	if err != nil {
		return []Contour{}
	}
	defer mat.Close()

	retrieval := gocv.RetrievalTree
	if mode == ModeExternal {
		retrieval = gocv.RetrievalExternal
	}

	pv := gocv.FindContours(mat, retrieval, gocv.ChainApproxSimple)
	defer pv.Close()

	raw := pv.ToPoints()
	outlines := make([]Boundary, len(raw))
	for i, pts := range raw {
		outlines[i] = Boundary(pts)
	}

	kept := filter(outlines)
	out := make([]Contour, len(kept))
	for i, b := range kept {
		out[i] = Contour{Points: b, Parent: -1}
	}
	return out
}
