package server

import (
	"strings"

	"github.com/ironsheep/laser-lines/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func roiProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "string",
		"description": "Region to search: " + strings.Join(imaging.RegionNames, ", ") +
			", or \"row0,col0,row1,col1\" with row1 and col1 exclusive. Empty searches the configured region or the whole image.",
	}
}

// paramProperties describes the extraction settings accepted by every
// line tool. Unset values come from the server configuration.
func paramProperties() map[string]interface{} {
	return map[string]interface{}{
		"max_line_width": map[string]interface{}{
			"type":        "number",
			"description": "Widest expected line in pixels. Sets the Gaussian scale.",
			"default":     50.0,
		},
		"contrast_low": map[string]interface{}{
			"type":        "number",
			"description": "Minimum gray-value contrast for a pixel to be considered",
			"default":     3.0,
		},
		"contrast_high": map[string]interface{}{
			"type":        "number",
			"description": "Gray-value contrast a line point must reach to be accepted",
			"default":     10.0,
		},
		"polarity": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"light", "dark"},
			"description": "light for bright lines on a dark background, dark for the reverse",
			"default":     "light",
		},
		"min_length": map[string]interface{}{
			"type":        "number",
			"description": "Shortest contour kept, in pixels",
			"default":     15.0,
		},
		"max_length": map[string]interface{}{
			"type":        "number",
			"description": "Longest contour kept, in pixels",
			"default":     5000.0,
		},
		"max_angle_change_deg": map[string]interface{}{
			"type":        "number",
			"description": "Largest direction change between consecutive contour points, in degrees",
			"default":     45.0,
		},
	}
}

// withProperties merges extra properties into base and returns base.
func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color depth. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file, also reported as rows and columns.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop_roi",
			Description: "Crop a region of interest from an image and return it as base64-encoded PNG. Use this to check a region before extracting lines from it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  roiProperty(),
				},
				"required": []string{"path", "roi"},
			},
		},

		// Line Extraction
		{
			Name:        "lines_derive_params",
			Description: "Compute the Gaussian sigma and the low and high second-derivative thresholds for a line width and contrast window.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": paramProperties(),
			},
		},
		{
			Name: "lines_extract",
			Description: "Extract sub-pixel line centers from an image. Returns per-contour summaries and statistics; set include_points " +
				"for every point. Coordinates are in full image pixels with (0,0) at the center of the top-left pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(paramProperties(), map[string]interface{}{
					"path": pathProperty(),
					"roi":  roiProperty(),
					"invert": map[string]interface{}{
						"type":        "boolean",
						"description": "Search the negative of the image",
						"default":     false,
					},
					"include_points": map[string]interface{}{
						"type":        "boolean",
						"description": "Return every contour point in the response",
						"default":     false,
					},
					"csv_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for a col,row CSV of all points",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "lines_overlay",
			Description: "Extract lines and draw them over the image. Returns the overlay as base64-encoded PNG unless output_path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(paramProperties(), map[string]interface{}{
					"path": pathProperty(),
					"roi":  roiProperty(),
					"invert": map[string]interface{}{
						"type":        "boolean",
						"description": "Search the negative of the image",
						"default":     false,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color (#RRGGBB) for every contour. Empty gives each contour its own hue.",
					},
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Dot radius in output pixels",
						"default":     1,
					},
					"max_side": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale so neither side exceeds this many pixels. 0 keeps the source size.",
						"default":     1500,
					},
					"show_roi": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline the searched region. Defaults to true when a region is set.",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Save the overlay here (png, jpg or webp) instead of returning it",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "lines_scan_folder",
			Description: "Extract lines from every image in the given files and directories, writing one <stem>_contour.csv per image. Failed images are reported and do not stop the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(paramProperties(), map[string]interface{}{
					"inputs": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Image files or directories",
					},
					"roi": roiProperty(),
					"recursive": map[string]interface{}{
						"type":        "boolean",
						"description": "Descend into subdirectories",
						"default":     true,
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for CSV files and overlays. Defaults to the configured output directory.",
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Also save an overlay per image",
						"default":     false,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Images processed at once",
						"default":     4,
					},
				}),
				"required": []string{"inputs"},
			},
		},
	}
}
