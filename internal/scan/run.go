package scan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/laser-lines/internal/config"
	"github.com/ironsheep/laser-lines/internal/imaging"
	"github.com/ironsheep/laser-lines/internal/lines"
)

// Options configures a batch run.
type Options struct {
	Params lines.Params

	// ROI is applied to every image; see imaging.ResolveROI. Empty means
	// the whole image.
	ROI string

	// Workers is the number of images processed at once.
	Workers int

	// OutputDir receives the CSV files and overlays. Empty disables
	// writing; results are still returned.
	OutputDir string

	Overlay        bool
	OverlayFormat  string
	OverlayOptions imaging.OverlayOptions
	Quality        int

	// Logger receives one line per image. Nil uses the standard logger.
	Logger *log.Logger
}

// OptionsFromConfig builds run options from a validated configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	p, err := cfg.Params()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Params:        p,
		ROI:           cfg.Extraction.ROI,
		Workers:       cfg.Scan.Workers,
		OutputDir:     cfg.Output.Dir,
		Overlay:       cfg.Output.Overlay,
		OverlayFormat: cfg.Output.OverlayFormat,
		OverlayOptions: imaging.OverlayOptions{
			MaxSide: cfg.Output.OverlayMaxSide,
			Radius:  cfg.Output.OverlayRadius,
			ShowROI: cfg.Extraction.ROI != "",
		},
		Quality: cfg.Output.Quality,
	}, nil
}

// ImageResult is the outcome for one image.
type ImageResult struct {
	Path        string        `json:"path"`
	CSVPath     string        `json:"csv_path,omitempty"`
	OverlayPath string        `json:"overlay_path,omitempty"`
	Rows        int           `json:"rows"`
	Cols        int           `json:"cols"`
	ROI         lines.ROI     `json:"roi"`
	Stats       lines.Stats   `json:"stats"`
	Candidates  int           `json:"candidates"`
	Duration    time.Duration `json:"duration_ns"`
	Err         error         `json:"-"`
	Error       string        `json:"error,omitempty"`
}

// Summary collects the outcome of a batch run in input order.
type Summary struct {
	Images    int           `json:"images"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Points    int           `json:"points"`
	Results   []ImageResult `json:"results"`
}

// Run extracts lines from every image in paths. Images are processed
// concurrently, up to opts.Workers at a time, sharing ex's row pool. A
// failing image is recorded in its ImageResult and does not stop the
// others. Cancelling ctx stops images that have not started; Run then
// returns the partial summary together with ctx.Err().
func Run(ctx context.Context, paths []string, ex *lines.Extractor, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	stems := outputStems(paths)
	results := make([]ImageResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			results[i] = ImageResult{Path: path, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = ImageResult{Path: path, Err: err}
				return nil
			}
			start := time.Now()
			r := processImage(path, stems[i], ex, opts)
			r.Duration = time.Since(start)
			if r.Err != nil {
				logger.Printf("%s: failed: %v", path, r.Err)
			} else {
				logger.Printf("%s: %d contours, %d points in %v", path, r.Stats.Contours, r.Stats.Points, r.Duration.Round(time.Millisecond))
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	s := &Summary{Images: len(paths), Results: results}
	for i := range results {
		if results[i].Err != nil {
			results[i].Error = results[i].Err.Error()
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Points += results[i].Stats.Points
	}
	logger.Printf("processed %d images: %d ok, %d failed, %d points", s.Images, s.Succeeded, s.Failed, s.Points)

	return s, ctx.Err()
}

func processImage(path, stem string, ex *lines.Extractor, opts Options) ImageResult {
	r := ImageResult{Path: path}

	img, err := imaging.LoadImage(path)
	if err != nil {
		r.Err = err
		return r
	}
	raster := imaging.ToRaster(img)
	r.Rows, r.Cols = raster.Rows, raster.Cols

	var roi lines.ROI
	if opts.ROI != "" {
		if roi, err = imaging.ResolveROI(opts.ROI, raster.Rows, raster.Cols); err != nil {
			r.Err = err
			return r
		}
	}

	res, err := ex.Extract(raster, roi, opts.Params)
	if err != nil {
		r.Err = err
		return r
	}
	r.ROI = res.ROI
	r.Stats = res.Stats()
	r.Candidates = res.Candidates

	if opts.OutputDir == "" {
		return r
	}

	r.CSVPath = filepath.Join(opts.OutputDir, stem+"_contour.csv")
	if err := WriteCSV(r.CSVPath, res); err != nil {
		r.Err = err
		return r
	}

	if opts.Overlay {
		format := opts.OverlayFormat
		if format == "" {
			format = "png"
		}
		overlay, err := imaging.RenderOverlay(img, res, opts.OverlayOptions)
		if err != nil {
			r.Err = fmt.Errorf("overlay: %w", err)
			return r
		}
		quality := opts.Quality
		if quality <= 0 {
			quality = 90
		}
		r.OverlayPath = filepath.Join(opts.OutputDir, stem+"_overlay."+format)
		if err := imaging.SaveImage(overlay, r.OverlayPath, quality); err != nil {
			r.Err = fmt.Errorf("overlay: %w", err)
			return r
		}
	}
	return r
}

// FailedResults returns the results that carry an error.
func (s *Summary) FailedResults() []ImageResult {
	var out []ImageResult
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
