package detection

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/blast-cropper/internal/cluster"
	"github.com/ironsheep/blast-cropper/internal/contour"
	"github.com/ironsheep/blast-cropper/internal/projection"
	"github.com/ironsheep/blast-cropper/internal/region"
	"github.com/ironsheep/blast-cropper/internal/stain"
)

// ErrInvalidOptions is wrapped by every Options validation failure.
var ErrInvalidOptions = errors.New("invalid detection options")

// Options configures a Detector.
type Options struct {
	// Stain is the per-channel color predicate for stained pixels.
	Stain stain.Bounds

	// FillHoles fills background pockets enclosed by stain before tracing.
	FillHoles bool

	// CloseRadius, when positive, closes gaps up to about this radius in
	// pixels before tracing.
	CloseRadius float64

	// Mode selects tree (outer and hole borders) or external extraction.
	Mode contour.Mode

	// Backend names the contour extractor; empty selects the pure Go one.
	Backend string

	// DistanceThreshold is the join distance in pixels. Zero disables merging.
	DistanceThreshold float64

	// MinSize is the minimum width and height of a kept region.
	MinSize int
}

// DefaultOptions returns the reference tuning.
func DefaultOptions() Options {
	return Options{
		Stain:             stain.DefaultBounds,
		Mode:              contour.ModeTree,
		Backend:           contour.DefaultBackend,
		DistanceThreshold: cluster.DefaultThreshold,
		MinSize:           region.DefaultMinSize,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if err := o.Stain.Validate(); err != nil {
		return fmt.Errorf("%w: stain bounds: %v", ErrInvalidOptions, err)
	}
	if o.DistanceThreshold < 0 {
		return fmt.Errorf("%w: distance threshold must not be negative, got %v", ErrInvalidOptions, o.DistanceThreshold)
	}
	if o.MinSize < 0 {
		return fmt.Errorf("%w: min size must not be negative, got %d", ErrInvalidOptions, o.MinSize)
	}
	if o.CloseRadius < 0 {
		return fmt.Errorf("%w: close radius must not be negative, got %v", ErrInvalidOptions, o.CloseRadius)
	}
	if _, err := contour.Lookup(o.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// Result is the outcome of detecting cells in one image.
type Result struct {
	// Width and Height are the source image dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Rects holds one bounding rectangle per merged region.
	Rects []region.Rect `json:"rectangles"`

	// Keep is aligned with Rects.
	Keep []bool `json:"keep"`

	// Foreground is the number of stain pixels in the mask.
	Foreground int `json:"foreground_pixels"`

	// Boundaries is the number of boundaries that survived noise filtering.
	Boundaries int `json:"boundaries"`

	// Clusters is the number of boundaries after merging (== len(Rects)).
	Clusters int `json:"clusters"`
}

// Kept returns the number of regions flagged keep.
func (r *Result) Kept() int {
	n := 0
	for _, k := range r.Keep {
		if k {
			n++
		}
	}
	return n
}

// Crops returns the crop instructions for kept regions.
func (r *Result) Crops() ([]projection.Crop, error) {
	return projection.Crops(r.Rects, r.Keep)
}

// Overlay returns draw instructions for every region.
func (r *Result) Overlay(style projection.Style) ([]projection.Draw, error) {
	return projection.Overlay(r.Rects, r.Keep, style)
}

// Detector runs the region pipeline with fixed options.
type Detector struct {
	opts    Options
	extract contour.Func
	logger  *slog.Logger
}

// New validates opts and returns a Detector. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) (*Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	extract, err := contour.Lookup(opts.Backend)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{opts: opts, extract: extract, logger: logger}, nil
}

// Mask runs the masking stage only, including the optional closing and hole
// filling passes.
func (d *Detector) Mask(img image.Image) (*stain.Mask, error) {
	m, err := stain.Build(img, d.opts.Stain)
	if err != nil {
		return nil, err
	}
	if d.opts.CloseRadius > 0 {
		m = stain.Close(m, d.opts.CloseRadius)
	}
	if d.opts.FillHoles {
		m = stain.FillHoles(m)
	}
	return m, nil
}

// Detect finds cell regions in img.
//
// Returns an error only for precondition violations (see stain.Build). An
// image without stain yields a Result with empty Rects and Keep.
func (d *Detector) Detect(img image.Image) (*Result, error) {
	start := time.Now()

	m, err := d.Mask(img)
	if err != nil {
		return nil, fmt.Errorf("failed to build mask: %w", err)
	}
	masked := time.Now()

	boundaries := contour.Boundaries(d.extract(m, d.opts.Mode))
	traced := time.Now()

	merged := cluster.Merge(boundaries, d.opts.DistanceThreshold)
	joined := time.Now()

	rects, keep, err := region.Classify(merged, d.opts.MinSize)
	if err != nil {
		return nil, fmt.Errorf("failed to classify regions: %w", err)
	}

	res := &Result{
		Width:      m.Width,
		Height:     m.Height,
		Rects:      rects,
		Keep:       keep,
		Foreground: m.Count(),
		Boundaries: len(boundaries),
		Clusters:   len(merged),
	}

	d.logger.Debug("detected regions",
		"width", res.Width,
		"height", res.Height,
		"foreground", res.Foreground,
		"boundaries", res.Boundaries,
		"clusters", res.Clusters,
		"kept", res.Kept(),
		"mask", masked.Sub(start),
		"contours", traced.Sub(masked),
		"merge", joined.Sub(traced),
		"total", time.Since(start),
	)
	return res, nil
}
