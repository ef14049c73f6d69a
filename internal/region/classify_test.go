package region

import (
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/blast-cropper/internal/contour"
)

// outline returns the four corners of a w x h pixel block at (x, y)
func outline(x, y, w, h int) contour.Boundary {
	return contour.Boundary{{x, y}, {x, y + h - 1}, {x + w - 1, y + h - 1}, {x + w - 1, y}}
}

func TestBoundingRect(t *testing.T) {
	tests := []struct {
		name string
		b    contour.Boundary
		want Rect
	}{
		{"single point", contour.Boundary{{4, 7}}, Rect{4, 7, 1, 1}},
		{"block", outline(10, 20, 300, 200), Rect{10, 20, 300, 200}},
		{"negative coords", contour.Boundary{{-5, -5}, {13, 5}, {0, 0}}, Rect{-5, -5, 19, 11}},
		{"empty", nil, Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundingRect(tt.b); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKeep(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"300x300 kept", Rect{0, 0, 300, 300}, true},
		{"200x300 discarded (width)", Rect{0, 0, 200, 300}, false},
		{"300x200 discarded (height)", Rect{0, 0, 300, 200}, false},
		{"exactly min kept", Rect{0, 0, 260, 260}, true},
		{"one below discarded", Rect{0, 0, 259, 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keep(tt.r, DefaultMinSize); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	bs := []contour.Boundary{
		outline(0, 0, 300, 300),
		outline(500, 0, 200, 300),
		outline(0, 500, 260, 261),
	}

	rects, keep, err := Classify(bs, 260)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(rects) != len(bs) || len(keep) != len(bs) {
		t.Fatalf("alignment: %d rects, %d flags, %d boundaries", len(rects), len(keep), len(bs))
	}

	want := []bool{true, false, true}
	for i := range want {
		if keep[i] != want[i] {
			t.Errorf("keep[%d]: got %v, want %v (rect %+v)", i, keep[i], want[i], rects[i])
		}
	}
	if rects[1] != (Rect{500, 0, 200, 300}) {
		t.Errorf("rects[1]: got %+v", rects[1])
	}
}

func TestClassify_Idempotent(t *testing.T) {
	bs := []contour.Boundary{outline(0, 0, 300, 300), outline(9, 9, 100, 400), outline(3, 3, 1, 1)}

	rects, keep, err := Classify(bs, 260)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	again, err := ClassifyRects(rects, 260)
	if err != nil {
		t.Fatalf("ClassifyRects failed: %v", err)
	}
	for i := range keep {
		if keep[i] != again[i] {
			t.Errorf("flag %d changed on re-classification", i)
		}
	}
}

func TestClassify_Empty(t *testing.T) {
	rects, keep, err := Classify(nil, 260)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(rects) != 0 || len(keep) != 0 {
		t.Errorf("empty input: got %d rects, %d flags", len(rects), len(keep))
	}
}

func TestClassify_Errors(t *testing.T) {
	if _, _, err := Classify([]contour.Boundary{outline(0, 0, 5, 5)}, -1); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("negative min size: got %v, want ErrNegativeSize", err)
	}
	if _, _, err := Classify([]contour.Boundary{outline(0, 0, 5, 5), {}}, 10); !errors.Is(err, ErrEmptyBoundary) {
		t.Errorf("empty boundary: got %v, want ErrEmptyBoundary", err)
	}
	if _, err := ClassifyRects([]Rect{{0, 0, 1, 1}}, -5); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("ClassifyRects negative: got %v, want ErrNegativeSize", err)
	}
}

func TestClassify_ZeroMinKeepsAll(t *testing.T) {
	_, keep, err := Classify([]contour.Boundary{{{1, 1}}, outline(0, 0, 3, 3)}, 0)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	for i, k := range keep {
		if !k {
			t.Errorf("keep[%d] should be true with min size 0", i)
		}
	}
}

func TestRect_Image(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 4, Height: 5}
	if got := r.Image(); got != image.Rect(2, 3, 6, 8) {
		t.Errorf("Image: got %v", got)
	}
	if r.Area() != 20 {
		t.Errorf("Area: got %d, want 20", r.Area())
	}
}
