package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/laser-lines/internal/imaging"
	"github.com/ironsheep/laser-lines/internal/lines"
)

// Config holds the application configuration
type Config struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Scan       ScanConfig       `json:"scan" yaml:"scan"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}

// ExtractionConfig holds the line extraction parameters
type ExtractionConfig struct {
	MaxLineWidth      float64 `json:"max_line_width" yaml:"max_line_width"`
	ContrastLow       float64 `json:"contrast_low" yaml:"contrast_low"`
	ContrastHigh      float64 `json:"contrast_high" yaml:"contrast_high"`
	Polarity          string  `json:"polarity" yaml:"polarity"`
	MinLength         float64 `json:"min_length" yaml:"min_length"`
	MaxLength         float64 `json:"max_length" yaml:"max_length"`
	MaxAngleChangeDeg float64 `json:"max_angle_change_deg" yaml:"max_angle_change_deg"`

	// ROI is empty for the whole image, a region name such as "top-half",
	// or "row0,col0,row1,col1".
	ROI string `json:"roi" yaml:"roi"`
}

// ScanConfig holds configuration for folder scanning
type ScanConfig struct {
	Extensions []string `json:"extensions" yaml:"extensions"`
	Recursive  bool     `json:"recursive" yaml:"recursive"`

	// Workers is the number of images processed at once.
	Workers int `json:"workers" yaml:"workers"`

	// RowWorkers is the size of the shared row pool. Zero uses GOMAXPROCS.
	RowWorkers int `json:"row_workers" yaml:"row_workers"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir            string `json:"dir" yaml:"dir"`
	Overlay        bool   `json:"overlay" yaml:"overlay"`
	OverlayFormat  string `json:"overlay_format" yaml:"overlay_format"`
	OverlayMaxSide int    `json:"overlay_max_side" yaml:"overlay_max_side"`
	OverlayRadius  int    `json:"overlay_radius" yaml:"overlay_radius"`
	Quality        int    `json:"quality" yaml:"quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	p := lines.DefaultParams()
	return &Config{
		Extraction: ExtractionConfig{
			MaxLineWidth:      p.MaxLineWidth,
			ContrastLow:       p.ContrastLow,
			ContrastHigh:      p.ContrastHigh,
			Polarity:          p.Polarity.String(),
			MinLength:         p.MinLength,
			MaxLength:         p.MaxLength,
			MaxAngleChangeDeg: p.MaxAngleChange * 180 / math.Pi,
		},
		Scan: ScanConfig{
			Extensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp"},
			Recursive:  true,
			Workers:    4,
		},
		Output: OutputConfig{
			Dir:            "./output",
			OverlayFormat:  "png",
			OverlayMaxSide: imaging.DefaultOverlayMaxSide,
			OverlayRadius:  1,
			Quality:        90,
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file. Fields the
// file leaves out keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml names and JSON
// otherwise.
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	if c.Extraction.ROI != "" && strings.Contains(c.Extraction.ROI, ",") {
		if _, err := imaging.ParseROI(c.Extraction.ROI); err != nil {
			return fmt.Errorf("extraction.roi: %w", err)
		}
	}

	if len(c.Scan.Extensions) == 0 {
		return fmt.Errorf("scan.extensions cannot be empty")
	}

	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be positive")
	}

	if c.Scan.RowWorkers < 0 {
		return fmt.Errorf("scan.row_workers cannot be negative")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}

	switch c.Output.OverlayFormat {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.overlay_format must be png, jpg or webp")
	}

	if c.Output.OverlayMaxSide < 0 || c.Output.OverlayRadius < 0 {
		return fmt.Errorf("output.overlay_max_side and output.overlay_radius cannot be negative")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// Params converts the extraction section to validated line parameters.
func (c *Config) Params() (lines.Params, error) {
	e := c.Extraction
	polarity, err := lines.ParsePolarity(e.Polarity)
	if err != nil {
		return lines.Params{}, err
	}
	p := lines.Params{
		MaxLineWidth:   e.MaxLineWidth,
		ContrastLow:    e.ContrastLow,
		ContrastHigh:   e.ContrastHigh,
		Polarity:       polarity,
		MinLength:      e.MinLength,
		MaxLength:      e.MaxLength,
		MaxAngleChange: e.MaxAngleChangeDeg * math.Pi / 180,
	}
	if err := p.Validate(); err != nil {
		return lines.Params{}, err
	}
	return p, nil
}

// ROI resolves the configured region for a rows x cols image.
func (c *Config) ROI(rows, cols int) (lines.ROI, error) {
	if c.Extraction.ROI == "" {
		return lines.FullROI(rows, cols), nil
	}
	return imaging.ResolveROI(c.Extraction.ROI, rows, cols)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "laser-lines", "config.json")
}
