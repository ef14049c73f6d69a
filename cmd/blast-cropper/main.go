package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/blast-cropper/internal/batch"
	"github.com/ironsheep/blast-cropper/internal/config"
	"github.com/ironsheep/blast-cropper/internal/detection"
	"github.com/ironsheep/blast-cropper/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	logger := NewLogger(os.Stderr, parseLevel(os.Getenv("BLAST_CROPPER_LOG_LEVEL")))
	slog.SetDefault(logger)

	os.Exit(run(os.Args[1:], os.Stdout, logger))
}

func run(args []string, stdout io.Writer, logger *slog.Logger) int {
	cmd := "help"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "blast-cropper %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		printHelp(stdout)
		return 0
	case "run":
		return runBatch(args, stdout, logger)
	case "serve":
		return runServe(args, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printHelp(os.Stderr)
		return 2
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "blast-cropper - find stained cells in micrographs and crop them out")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  blast-cropper run -in DIR -crop DIR -box DIR [options]")
	fmt.Fprintln(w, "  blast-cropper serve [-config FILE]")
	fmt.Fprintln(w, "  blast-cropper version")
	fmt.Fprintln(w, "  blast-cropper help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run      Process every image in a directory, writing crops and overviews")
	fmt.Fprintln(w, "  serve    Run as an MCP server over stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run options:")
	fmt.Fprintln(w, "  -in DIR        Input image directory")
	fmt.Fprintln(w, "  -crop DIR      Output directory for cropped cells")
	fmt.Fprintln(w, "  -box DIR       Output directory for annotated overviews")
	fmt.Fprintln(w, "  -config FILE   JSON configuration file (default ~/.config/blast-cropper/config.json)")
	fmt.Fprintln(w, "  -ext EXT       Output extension (default .JPG)")
	fmt.Fprintln(w, "  -join PX       Join distance between fragments (default 100)")
	fmt.Fprintln(w, "  -keep PX       Minimum kept width and height (default 260)")
	fmt.Fprintln(w, "  -workers N     Images processed in parallel (default one per CPU)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  BLAST_CROPPER_LOG_LEVEL=debug    Log level: debug, info, warn, error")
}

// loadConfig returns the file's config. An empty path falls back to the
// per-user config file when it exists, and to defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.GetConfigPath()
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	return config.LoadFromFile(path)
}

func runBatch(args []string, stdout io.Writer, logger *slog.Logger) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	in := fs.String("in", "", "input image directory")
	cropDir := fs.String("crop", "", "output directory for cropped cells")
	boxDir := fs.String("box", "", "output directory for annotated overviews")
	cfgPath := fs.String("config", "", "JSON configuration file")
	ext := fs.String("ext", "", "output extension")
	join := fs.Float64("join", -1, "join distance in pixels")
	keep := fs.Int("keep", -1, "minimum kept width and height in pixels")
	workers := fs.Int("workers", 0, "images processed in parallel")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	// Flags override the file only when set.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "crop":
			cfg.Output.CropDir = *cropDir
		case "box":
			cfg.Output.BoxDir = *boxDir
		case "ext":
			cfg.Output.Extension = *ext
		case "join":
			cfg.Merge.DistanceThreshold = *join
		case "keep":
			cfg.Classify.MinSize = *keep
		case "workers":
			cfg.Batch.Workers = *workers
		}
	})

	if *in == "" {
		fmt.Fprintln(os.Stderr, "run: -in is required")
		return 2
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	detOpts, err := cfg.DetectionOptions()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	d, err := detection.New(detOpts, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	opts, err := batch.OptionsFromConfig(cfg, *in)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	runner, err := batch.NewRunner(d, opts, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	if summary != nil {
		for _, f := range summary.Files {
			if f.Err != nil {
				fmt.Fprintf(stdout, "FAIL  %s: %v\n", f.Path, f.Err)
				continue
			}
			fmt.Fprintf(stdout, "ok    %s: %d regions, %d kept\n", f.Path, f.Regions, f.Kept)
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && summary != nil {
			logger.Warn("interrupted", "skipped", summary.Skipped)
		} else {
			logger.Error("run failed", "error", err)
		}
		return 1
	}
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

func runServe(args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := fs.String("config", "", "JSON configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	logger.Debug("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	server.Version = Version
	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}
