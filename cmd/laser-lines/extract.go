package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/laser-lines/internal/lines"
	"github.com/ironsheep/laser-lines/internal/scan"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [flags] <image|dir>...",
		Short: "Extract line centers and write one CSV per image",
		Long: `extract runs the line detector on every image named on the command
line or found in the named directories. For each image it writes
<stem>_contour.csv to the output directory, one col,row record per point,
where <stem> is the file name up to its first underscore. With --overlay
a preview image is saved next to it.

An image that cannot be read or processed is reported and skipped; the
command exits non-zero if any image failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	flags := cmd.Flags()
	addExtractionFlags(flags)
	flags.StringP("output", "o", "", "output directory (default from config, ./output)")
	flags.Int("workers", 0, "images processed at once")
	flags.Int("row-workers", 0, "row workers per pass, 0 for GOMAXPROCS")
	flags.Bool("recursive", true, "descend into subdirectories")
	flags.Bool("overlay", false, "save an overlay preview per image")
	flags.String("overlay-format", "", "overlay format: png, jpg or webp")
	flags.Int("overlay-max-side", 0, "downscale overlays so neither side exceeds this")
	flags.Int("quality", 0, "JPEG/WebP overlay quality (1-100)")
	flags.String("summary", "", "write the batch summary as JSON to this file")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := scan.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	paths, err := scan.CollectInputs(args, cfg.Scan.Extensions, cfg.Scan.Recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %v", args)
	}

	if debugEnabled() {
		scale, _ := lines.DeriveScale(opts.Params)
		log.Printf("params: %+v", opts.Params)
		log.Printf("sigma=%.4f low=%.4f high=%.4f, %d images", scale.Sigma, scale.Low, scale.High, len(paths))
	}

	ex := lines.NewExtractor(cfg.Scan.RowWorkers)
	defer ex.Close()

	summary, runErr := scan.Run(cmd.Context(), paths, ex, opts)

	if path, _ := cmd.Flags().GetString("summary"); path != "" {
		if err := writeSummary(path, summary); err != nil {
			return err
		}
	}

	if runErr != nil {
		if scan.IsCanceled(runErr) {
			return fmt.Errorf("interrupted after %d of %d images", summary.Images-countCanceled(summary), summary.Images)
		}
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d images failed", summary.Failed, summary.Images)
	}
	return nil
}

// countCanceled returns how many results were never processed because
// the run was interrupted.
func countCanceled(s *scan.Summary) int {
	n := 0
	for _, r := range s.FailedResults() {
		if scan.IsCanceled(r.Err) {
			n++
		}
	}
	return n
}

func writeSummary(path string, s *scan.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
