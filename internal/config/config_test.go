package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/blast-cropper/internal/contour"
	"github.com/ironsheep/blast-cropper/internal/detection"
	"github.com/ironsheep/blast-cropper/internal/stain"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	opts, err := c.DetectionOptions()
	if err != nil {
		t.Fatalf("DetectionOptions failed: %v", err)
	}
	if opts != detection.DefaultOptions() {
		t.Errorf("default config options differ from detection defaults:\n got %+v\nwant %+v", opts, detection.DefaultOptions())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"lower out of range", func(c *Config) { c.Stain.Lower[0] = -1 }},
		{"upper out of range", func(c *Config) { c.Stain.Upper[2] = 300 }},
		{"inverted bounds", func(c *Config) { c.Stain.Lower[1] = 100 }},
		{"bad order", func(c *Config) { c.Stain.Order = "hsv" }},
		{"bad mode", func(c *Config) { c.Contour.Mode = "list" }},
		{"unknown backend", func(c *Config) { c.Contour.Backend = "magic" }},
		{"negative threshold", func(c *Config) { c.Merge.DistanceThreshold = -1 }},
		{"negative min size", func(c *Config) { c.Classify.MinSize = -10 }},
		{"bad keep color", func(c *Config) { c.Overlay.KeepColor = "green" }},
		{"zero stroke", func(c *Config) { c.Overlay.StrokeWidth = 0 }},
		{"quality too high", func(c *Config) { c.Output.JPEGQuality = 101 }},
		{"extension without dot", func(c *Config) { c.Output.Extension = "JPG" }},
		{"negative workers", func(c *Config) { c.Batch.Workers = -2 }},
		{"no extensions", func(c *Config) { c.Batch.Extensions = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_WrapsDetectionError(t *testing.T) {
	c := Default()
	c.Classify.MinSize = -1
	if err := c.Validate(); !errors.Is(err, detection.ErrInvalidOptions) {
		t.Errorf("got %v, want ErrInvalidOptions", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	c := Default()
	c.Stain.Order = "rgb"
	c.Stain.FillHoles = true
	c.Contour.Mode = "external"
	c.Merge.DistanceThreshold = 42
	c.Classify.MinSize = 128

	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	opts, err := loaded.DetectionOptions()
	if err != nil {
		t.Fatalf("DetectionOptions failed: %v", err)
	}
	if opts.Stain.Order != stain.OrderRGB || !opts.FillHoles || opts.Mode != contour.ModeExternal {
		t.Errorf("round trip lost fields: %+v", opts)
	}
	if opts.DistanceThreshold != 42 || opts.MinSize != 128 {
		t.Errorf("numbers: threshold=%v min=%d", opts.DistanceThreshold, opts.MinSize)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"classify": {"min_size": 300}}`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if c.Classify.MinSize != 300 {
		t.Errorf("min size: got %d, want 300", c.Classify.MinSize)
	}
	if c.Merge.DistanceThreshold != 100 {
		t.Errorf("distance threshold should keep default, got %v", c.Merge.DistanceThreshold)
	}
	if c.Output.Extension != ".JPG" {
		t.Errorf("extension should keep default, got %s", c.Output.Extension)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestStyle(t *testing.T) {
	c := Default()
	c.Overlay.StrokeWidth = 5
	s, err := c.Style()
	if err != nil {
		t.Fatalf("Style failed: %v", err)
	}
	if s.StrokeWidth != 5 {
		t.Errorf("stroke width: got %d", s.StrokeWidth)
	}
}
