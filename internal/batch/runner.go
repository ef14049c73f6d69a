// Package batch runs cell detection over a directory of micrographs and
// writes the cropped cells and annotated overviews.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/blast-cropper/internal/config"
	"github.com/ironsheep/blast-cropper/internal/detection"
	"github.com/ironsheep/blast-cropper/internal/imaging"
	"github.com/ironsheep/blast-cropper/internal/projection"
)

// DefaultExtensions are the input file extensions processed when none are configured.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp", ".webp"}

// Options configures a Runner.
type Options struct {
	InDir   string
	CropDir string
	BoxDir  string

	// Extension is appended to every output file name, e.g. ".JPG".
	Extension string

	// Quality is the JPEG/WebP quality for outputs.
	Quality int

	// Workers is the number of images processed at once; <= 0 means one per CPU.
	Workers int

	// Extensions filters input files (case-insensitive). Empty uses DefaultExtensions.
	Extensions []string

	Style projection.Style
}

// OptionsFromConfig fills Options from the output, batch and overlay
// sections of cfg. inDir is taken as given.
func OptionsFromConfig(cfg *config.Config, inDir string) (Options, error) {
	style, err := cfg.Style()
	if err != nil {
		return Options{}, err
	}
	return Options{
		InDir:      inDir,
		CropDir:    cfg.Output.CropDir,
		BoxDir:     cfg.Output.BoxDir,
		Extension:  cfg.Output.Extension,
		Quality:    cfg.Output.JPEGQuality,
		Workers:    cfg.Batch.Workers,
		Extensions: cfg.Batch.Extensions,
		Style:      style,
	}, nil
}

// FileResult records the outcome for one input image.
type FileResult struct {
	Path    string   `json:"path"`
	Regions int      `json:"regions"`
	Kept    int      `json:"kept"`
	Crops   []string `json:"crops,omitempty"`
	Overlay string   `json:"overlay,omitempty"`
	Error   string   `json:"error,omitempty"`

	Err error `json:"-"`
}

// Summary is the outcome of a Run.
type Summary struct {
	Files    []FileResult  `json:"files"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration_ns"`
}

// Err joins the per-file errors, or returns nil if every file succeeded.
func (s *Summary) Err() error {
	var errs []error
	for _, f := range s.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}
	return errors.Join(errs...)
}

// Runner processes directories with one Detector.
type Runner struct {
	detector *detection.Detector
	opts     Options
	logger   *slog.Logger
}

// NewRunner returns a Runner. A nil logger uses slog.Default().
func NewRunner(d *detection.Detector, opts Options, logger *slog.Logger) (*Runner, error) {
	if d == nil {
		return nil, errors.New("detector is required")
	}
	if opts.InDir == "" {
		return nil, errors.New("input directory is required")
	}
	if opts.CropDir == "" || opts.BoxDir == "" {
		return nil, errors.New("crop and box directories are required")
	}
	if opts.Extension == "" {
		opts.Extension = ".JPG"
	}
	if !strings.HasPrefix(opts.Extension, ".") {
		opts.Extension = "." + opts.Extension
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Style.StrokeWidth < 1 {
		opts.Style = projection.DefaultStyle()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{detector: d, opts: opts, logger: logger}, nil
}

// ListImages returns the regular files in dir whose extension matches exts
// (case-insensitive), in directory order. Subdirectories are not entered.
func ListImages(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = true
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Run processes every image in the input directory.
//
// A failing image is recorded in the Summary and the others continue. When
// ctx is cancelled no new images are started, in-flight ones finish, and the
// rest are counted as skipped; Run then returns ctx.Err() alongside the
// partial Summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	files, err := ListImages(r.opts.InDir, r.opts.Extensions)
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{r.opts.CropDir, r.opts.BoxDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	r.logger.Info("processing directory", "dir", r.opts.InDir, "images", len(files), "workers", r.opts.Workers)

	results := make([]*FileResult, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := r.ProcessFile(files[i])
				results[i] = &res
			}
		}()
	}

	var runErr error
dispatch:
	for i := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{Files: make([]FileResult, 0, len(files))}
	for _, res := range results {
		if res == nil {
			summary.Skipped++
			continue
		}
		if res.Err != nil {
			summary.Failed++
		}
		summary.Files = append(summary.Files, *res)
	}
	summary.Duration = time.Since(start)

	r.logger.Info("directory done",
		"processed", len(summary.Files),
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return summary, runErr
}

// ProcessFile detects cells in one image and writes its crops and overlay.
func (r *Runner) ProcessFile(path string) FileResult {
	res := FileResult{Path: path}
	fail := func(err error) FileResult {
		res.Err = err
		res.Error = err.Error()
		r.logger.Warn("image failed", "path", path, "error", err)
		return res
	}

	r.logger.Debug("processing image", "path", path)

	img, err := imaging.Open(path)
	if err != nil {
		return fail(err)
	}

	det, err := r.detector.Detect(img)
	if err != nil {
		return fail(err)
	}
	res.Regions = len(det.Rects)
	res.Kept = det.Kept()

	crops, err := det.Crops()
	if err != nil {
		return fail(err)
	}
	subs, err := imaging.CropAll(img, crops)
	if err != nil {
		return fail(err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, c := range crops {
		out := filepath.Join(r.opts.CropDir, projection.CropName(base, c.Index, r.opts.Extension))
		if err := imaging.Save(subs[i], out, r.opts.Quality); err != nil {
			return fail(err)
		}
		res.Crops = append(res.Crops, out)
	}

	draws, err := det.Overlay(r.opts.Style)
	if err != nil {
		return fail(err)
	}
	out := filepath.Join(r.opts.BoxDir, projection.OverlayName(base, r.opts.Extension))
	if err := imaging.Save(imaging.DrawOverlay(img, draws), out, r.opts.Quality); err != nil {
		return fail(err)
	}
	res.Overlay = out

	r.logger.Debug("image done", "path", path, "regions", res.Regions, "kept", res.Kept)
	return res
}
