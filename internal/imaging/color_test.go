package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestSampleColor(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name    string
		x, y    int
		wantHex string
		wantHSL HSLColor
	}{
		{"red quadrant", 10, 10, "#FF0000", HSLColor{0, 100, 50}},
		{"green quadrant", 75, 10, "#00FF00", HSLColor{120, 100, 50}},
		{"blue quadrant", 10, 75, "#0000FF", HSLColor{240, 100, 50}},
		{"white quadrant", 75, 75, "#FFFFFF", HSLColor{0, 0, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := SampleColor(img, tt.x, tt.y)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if c.Hex != tt.wantHex {
				t.Errorf("hex: got %s, want %s", c.Hex, tt.wantHex)
			}
			if c.HSL != tt.wantHSL {
				t.Errorf("hsl: got %+v, want %+v", c.HSL, tt.wantHSL)
			}
			if c.Alpha != 255 {
				t.Errorf("alpha: got %d", c.Alpha)
			}
		})
	}
}

func TestSampleColor_OffsetBounds(t *testing.T) {
	sub := createPatternImage(100, 100).SubImage(image.Rect(50, 0, 100, 50))

	c, err := SampleColor(sub, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if c.Hex != "#00FF00" {
		t.Errorf("expected green at sub-image origin, got %s", c.Hex)
	}
	if _, err := SampleColor(sub, 50, 0); err == nil {
		t.Error("expected error past sub-image width")
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if _, err := SampleColor(img, p[0], p[1]); err == nil {
			t.Errorf("expected error for (%d,%d)", p[0], p[1])
		}
	}
}
