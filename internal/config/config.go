// Package config holds the JSON configuration document for blast-cropper.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/blast-cropper/internal/cluster"
	"github.com/ironsheep/blast-cropper/internal/contour"
	"github.com/ironsheep/blast-cropper/internal/detection"
	"github.com/ironsheep/blast-cropper/internal/projection"
	"github.com/ironsheep/blast-cropper/internal/region"
	"github.com/ironsheep/blast-cropper/internal/stain"
)

// Config holds the application configuration
type Config struct {
	Stain    StainConfig    `json:"stain"`
	Contour  ContourConfig  `json:"contour"`
	Merge    MergeConfig    `json:"merge"`
	Classify ClassifyConfig `json:"classify"`
	Overlay  OverlayConfig  `json:"overlay"`
	Output   OutputConfig   `json:"output"`
	Batch    BatchConfig    `json:"batch"`
}

// StainConfig holds the stain color predicate and mask cleanup passes
type StainConfig struct {
	Lower       [3]int  `json:"lower"`
	Upper       [3]int  `json:"upper"`
	Order       string  `json:"order"`
	FillHoles   bool    `json:"fill_holes"`
	CloseRadius float64 `json:"close_radius"`
}

// ContourConfig selects the extraction mode and backend
type ContourConfig struct {
	Mode    string `json:"mode"`
	Backend string `json:"backend"`
}

// MergeConfig holds the boundary join distance
type MergeConfig struct {
	DistanceThreshold float64 `json:"distance_threshold"`
}

// ClassifyConfig holds the keep threshold
type ClassifyConfig struct {
	MinSize int `json:"min_size"`
}

// OverlayConfig holds overlay drawing options
type OverlayConfig struct {
	KeepColor    string `json:"keep_color"`
	DiscardColor string `json:"discard_color"`
	StrokeWidth  int    `json:"stroke_width"`
}

// OutputConfig holds configuration for output files
type OutputConfig struct {
	Extension   string `json:"extension"`
	JPEGQuality int    `json:"jpeg_quality"`
	CropDir     string `json:"crop_dir"`
	BoxDir      string `json:"box_dir"`
}

// BatchConfig holds configuration for directory processing
type BatchConfig struct {
	// Workers is the number of images processed at once; 0 means one per CPU.
	Workers    int      `json:"workers"`
	Extensions []string `json:"extensions"`
}

// Default returns a configuration with default values
func Default() *Config {
	b := stain.DefaultBounds
	return &Config{
		Stain: StainConfig{
			Lower: [3]int{int(b.Lower[0]), int(b.Lower[1]), int(b.Lower[2])},
			Upper: [3]int{int(b.Upper[0]), int(b.Upper[1]), int(b.Upper[2])},
			Order: b.Order.String(),
		},
		Contour: ContourConfig{
			Mode:    contour.ModeTree.String(),
			Backend: contour.DefaultBackend,
		},
		Merge: MergeConfig{
			DistanceThreshold: cluster.DefaultThreshold,
		},
		Classify: ClassifyConfig{
			MinSize: region.DefaultMinSize,
		},
		Overlay: OverlayConfig{
			KeepColor:    projection.DefaultKeepColor,
			DiscardColor: projection.DefaultDiscardColor,
			StrokeWidth:  projection.DefaultStrokeWidth,
		},
		Output: OutputConfig{
			Extension:   ".JPG",
			JPEGQuality: 95,
			CropDir:     "./crop",
			BoxDir:      "./box",
		},
		Batch: BatchConfig{
			Workers:    0,
			Extensions: []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp", ".webp"},
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for i := 0; i < 3; i++ {
		if c.Stain.Lower[i] < 0 || c.Stain.Lower[i] > 255 {
			return fmt.Errorf("stain.lower[%d] must be between 0 and 255", i)
		}
		if c.Stain.Upper[i] < 0 || c.Stain.Upper[i] > 255 {
			return fmt.Errorf("stain.upper[%d] must be between 0 and 255", i)
		}
	}

	if _, err := stain.ParseOrder(c.Stain.Order); err != nil {
		return fmt.Errorf("stain.order: %w", err)
	}

	if _, err := contour.ParseMode(c.Contour.Mode); err != nil {
		return fmt.Errorf("contour.mode: %w", err)
	}

	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100")
	}

	if !strings.HasPrefix(c.Output.Extension, ".") {
		return fmt.Errorf("output.extension must start with a dot")
	}

	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative")
	}

	if len(c.Batch.Extensions) == 0 {
		return fmt.Errorf("batch.extensions cannot be empty")
	}

	if _, err := c.Style(); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}

	opts, err := c.DetectionOptions()
	if err != nil {
		return err
	}
	return opts.Validate()
}

// DetectionOptions converts the stain, contour, merge and classify sections
// into detector options.
func (c *Config) DetectionOptions() (detection.Options, error) {
	order, err := stain.ParseOrder(c.Stain.Order)
	if err != nil {
		return detection.Options{}, err
	}
	mode, err := contour.ParseMode(c.Contour.Mode)
	if err != nil {
		return detection.Options{}, err
	}

	var bounds stain.Bounds
	for i := 0; i < 3; i++ {
		bounds.Lower[i] = clampByte(c.Stain.Lower[i])
		bounds.Upper[i] = clampByte(c.Stain.Upper[i])
	}
	bounds.Order = order

	return detection.Options{
		Stain:             bounds,
		FillHoles:         c.Stain.FillHoles,
		CloseRadius:       c.Stain.CloseRadius,
		Mode:              mode,
		Backend:           c.Contour.Backend,
		DistanceThreshold: c.Merge.DistanceThreshold,
		MinSize:           c.Classify.MinSize,
	}, nil
}

// Style converts the overlay section into a projection style.
func (c *Config) Style() (projection.Style, error) {
	return projection.ParseStyle(c.Overlay.KeepColor, c.Overlay.DiscardColor, c.Overlay.StrokeWidth)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "blast-cropper", "config.json")
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
