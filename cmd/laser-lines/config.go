package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/laser-lines/internal/config"
)

func defaultConfigHint() string {
	return config.GetConfigPath() + " when present"
}

// addExtractionFlags registers the flags that override the extraction
// section of the configuration.
func addExtractionFlags(flags *pflag.FlagSet) {
	flags.Float64("max-line-width", 0, "widest expected line in pixels")
	flags.Float64("contrast-low", 0, "minimum gray-value contrast considered")
	flags.Float64("contrast-high", 0, "gray-value contrast a line point must reach")
	flags.String("polarity", "", "light or dark")
	flags.Float64("min-length", 0, "shortest contour kept, in pixels")
	flags.Float64("max-length", 0, "longest contour kept, in pixels")
	flags.Float64("max-angle", 0, "largest direction change between points, in degrees")
	flags.String("roi", "", "region name or row0,col0,row1,col1")
}

// loadConfig reads the configuration named by --config, or the default
// file if it exists, then applies any extraction and scan flags the
// command defines and the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadFromFile(path)
	switch {
	case err == nil:
		if debugEnabled() {
			log.Printf("loaded config from %s", path)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, err
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg. Flags a command
// does not define are skipped.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	float := func(name string, dst *float64) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetFloat64(name)
		}
	}
	str := func(name string, dst *string) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	integer := func(name string, dst *int) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetInt(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if err == nil && flags.Changed(name) {
			*dst, err = flags.GetBool(name)
		}
	}

	e := &cfg.Extraction
	float("max-line-width", &e.MaxLineWidth)
	float("contrast-low", &e.ContrastLow)
	float("contrast-high", &e.ContrastHigh)
	str("polarity", &e.Polarity)
	float("min-length", &e.MinLength)
	float("max-length", &e.MaxLength)
	float("max-angle", &e.MaxAngleChangeDeg)
	str("roi", &e.ROI)

	integer("workers", &cfg.Scan.Workers)
	integer("row-workers", &cfg.Scan.RowWorkers)
	boolean("recursive", &cfg.Scan.Recursive)

	str("output", &cfg.Output.Dir)
	boolean("overlay", &cfg.Output.Overlay)
	str("overlay-format", &cfg.Output.OverlayFormat)
	integer("overlay-max-side", &cfg.Output.OverlayMaxSide)
	integer("quality", &cfg.Output.Quality)

	return err
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `config prints the configuration after applying the config file and
flags, as YAML. With --save the result is also written to a file, as
YAML for .yaml/.yml names and JSON otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format config: %w", err)
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}

			if save, _ := cmd.Flags().GetString("save"); save != "" {
				if err := cfg.SaveToFile(save); err != nil {
					return err
				}
				log.Printf("wrote %s", save)
			}
			return nil
		},
	}
	addExtractionFlags(cmd.Flags())
	cmd.Flags().String("save", "", "write the effective configuration to this file")
	return cmd
}
