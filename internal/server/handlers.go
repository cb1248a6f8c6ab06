package server

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/laser-lines/internal/imaging"
	"github.com/ironsheep/laser-lines/internal/lines"
	"github.com/ironsheep/laser-lines/internal/scan"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "lines_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler unmarshals its arguments, fills optional extraction
// settings from the server configuration, loads images through the cache
// and returns a JSON-serializable result.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop_roi":
		return s.handleImageCropROI(args)

	// Line Extraction
	case "lines_derive_params":
		return s.handleDeriveParams(args)
	case "lines_extract":
		return s.handleExtract(args)
	case "lines_overlay":
		return s.handleOverlay(args)
	case "lines_scan_folder":
		return s.handleScanFolder(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. A missing argument object is
// treated as empty.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropROIArgs struct {
	Path string `json:"path"`
	ROI  string `json:"roi"`
}

type cropROIResult struct {
	ROI lines.ROI `json:"roi"`
	*imaging.EncodedImage
}

func (s *Server) handleImageCropROI(args json.RawMessage) (interface{}, error) {
	var a imageCropROIArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.ROI == "" {
		return nil, fmt.Errorf("roi is required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	roi, err := imaging.ResolveROI(a.ROI, b.Dy(), b.Dx())
	if err != nil {
		return nil, err
	}
	cropped, err := imaging.CropROI(img, roi)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(cropped)
	if err != nil {
		return nil, err
	}
	return cropROIResult{ROI: roi, EncodedImage: enc}, nil
}

// === Line Extraction Handlers ===

// paramArgs are the optional extraction settings shared by the line
// tools. Unset fields fall back to the server configuration.
type paramArgs struct {
	MaxLineWidth      *float64 `json:"max_line_width"`
	ContrastLow       *float64 `json:"contrast_low"`
	ContrastHigh      *float64 `json:"contrast_high"`
	Polarity          string   `json:"polarity"`
	MinLength         *float64 `json:"min_length"`
	MaxLength         *float64 `json:"max_length"`
	MaxAngleChangeDeg *float64 `json:"max_angle_change_deg"`
}

func (s *Server) resolveParams(a paramArgs) (lines.Params, error) {
	p, err := s.cfg.Params()
	if err != nil {
		return lines.Params{}, err
	}
	if a.MaxLineWidth != nil {
		p.MaxLineWidth = *a.MaxLineWidth
	}
	if a.ContrastLow != nil {
		p.ContrastLow = *a.ContrastLow
	}
	if a.ContrastHigh != nil {
		p.ContrastHigh = *a.ContrastHigh
	}
	if a.Polarity != "" {
		if p.Polarity, err = lines.ParsePolarity(a.Polarity); err != nil {
			return lines.Params{}, err
		}
	}
	if a.MinLength != nil {
		p.MinLength = *a.MinLength
	}
	if a.MaxLength != nil {
		p.MaxLength = *a.MaxLength
	}
	if a.MaxAngleChangeDeg != nil {
		p.MaxAngleChange = *a.MaxAngleChangeDeg * math.Pi / 180
	}
	if err := p.Validate(); err != nil {
		return lines.Params{}, err
	}
	return p, nil
}

type deriveParamsResult struct {
	Params lines.Params          `json:"params"`
	Scale  lines.ScaleParameters `json:"scale"`
}

func (s *Server) handleDeriveParams(args json.RawMessage) (interface{}, error) {
	var a paramArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := s.resolveParams(a)
	if err != nil {
		return nil, err
	}
	scale, err := lines.DeriveScale(p)
	if err != nil {
		return nil, err
	}
	return deriveParamsResult{Params: p, Scale: scale}, nil
}

type extractArgs struct {
	paramArgs
	Path string `json:"path"`

	// ROI is a region name or "row0,col0,row1,col1". Empty uses the
	// configured ROI, then the whole image.
	ROI string `json:"roi"`

	// Invert searches the negative of the image.
	Invert bool `json:"invert"`
}

// runExtract loads the image named by a and extracts lines from it.
func (s *Server) runExtract(a extractArgs) (image.Image, *lines.Result, error) {
	if a.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}
	p, err := s.resolveParams(a.paramArgs)
	if err != nil {
		return nil, nil, err
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}
	var raster *lines.Raster
	if a.Invert {
		raster = imaging.NegativeRaster(img)
	} else {
		raster = imaging.ToRaster(img)
	}

	roiSpec := a.ROI
	if roiSpec == "" {
		roiSpec = s.cfg.Extraction.ROI
	}
	var roi lines.ROI
	if roiSpec != "" {
		if roi, err = imaging.ResolveROI(roiSpec, raster.Rows, raster.Cols); err != nil {
			return nil, nil, err
		}
	}

	res, err := s.extractor.Extract(raster, roi, p)
	if err != nil {
		return nil, nil, err
	}
	return img, res, nil
}

type linesExtractArgs struct {
	extractArgs

	// IncludePoints returns every contour point in the response.
	IncludePoints bool `json:"include_points"`

	// CSVPath, when set, also writes the points as col,row records.
	CSVPath string `json:"csv_path"`
}

type contourSummary struct {
	Index  int              `json:"index"`
	Points int              `json:"points"`
	Length float64          `json:"length"`
	Start  lines.RidgePoint `json:"start"`
	End    lines.RidgePoint `json:"end"`
}

type extractResult struct {
	Path       string                `json:"path"`
	ROI        lines.ROI             `json:"roi"`
	Scale      lines.ScaleParameters `json:"scale"`
	Stats      lines.Stats           `json:"stats"`
	Candidates int                   `json:"candidates"`
	Degenerate int                   `json:"degenerate"`
	Discarded  int                   `json:"discarded"`
	Summary    []contourSummary      `json:"summary"`
	Contours   []lines.Contour       `json:"contours,omitempty"`
	CSVPath    string                `json:"csv_path,omitempty"`
}

func (s *Server) handleExtract(args json.RawMessage) (interface{}, error) {
	var a linesExtractArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	_, res, err := s.runExtract(a.extractArgs)
	if err != nil {
		return nil, err
	}

	out := extractResult{
		Path:       a.Path,
		ROI:        res.ROI,
		Scale:      res.Scale,
		Stats:      res.Stats(),
		Candidates: res.Candidates,
		Degenerate: res.Degenerate,
		Discarded:  res.Discarded,
		Summary:    make([]contourSummary, len(res.Contours)),
	}
	for i, c := range res.Contours {
		out.Summary[i] = contourSummary{
			Index:  i,
			Points: len(c.Points),
			Length: c.Length(),
			Start:  c.Points[0],
			End:    c.Points[len(c.Points)-1],
		}
	}
	if a.IncludePoints {
		out.Contours = res.Contours
	}
	if a.CSVPath != "" {
		if err := scan.WriteCSV(a.CSVPath, res); err != nil {
			return nil, err
		}
		out.CSVPath = a.CSVPath
	}
	return out, nil
}

type linesOverlayArgs struct {
	extractArgs
	Color   string `json:"color"`
	Radius  *int   `json:"radius"`
	MaxSide *int   `json:"max_side"`
	ShowROI *bool  `json:"show_roi"`

	// OutputPath, when set, saves the overlay there instead of returning
	// it inline.
	OutputPath string `json:"output_path"`
}

type overlayResult struct {
	Stats      lines.Stats `json:"stats"`
	OutputPath string      `json:"output_path,omitempty"`
	*imaging.EncodedImage
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a linesOverlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, res, err := s.runExtract(a.extractArgs)
	if err != nil {
		return nil, err
	}

	opts := imaging.OverlayOptions{
		MaxSide: s.cfg.Output.OverlayMaxSide,
		Radius:  s.cfg.Output.OverlayRadius,
		Color:   a.Color,
		ShowROI: a.ROI != "" || s.cfg.Extraction.ROI != "",
	}
	if a.Radius != nil {
		opts.Radius = *a.Radius
	}
	if a.MaxSide != nil {
		opts.MaxSide = *a.MaxSide
	}
	if a.ShowROI != nil {
		opts.ShowROI = *a.ShowROI
	}

	overlay, err := imaging.RenderOverlay(img, res, opts)
	if err != nil {
		return nil, err
	}

	out := overlayResult{Stats: res.Stats()}
	if a.OutputPath != "" {
		if err := imaging.SaveImage(overlay, a.OutputPath, s.cfg.Output.Quality); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}
	if out.EncodedImage, err = imaging.EncodePNG(overlay); err != nil {
		return nil, err
	}
	return out, nil
}

type scanFolderArgs struct {
	paramArgs

	// Inputs are image files or directories.
	Inputs    []string `json:"inputs"`
	ROI       string   `json:"roi"`
	Recursive *bool    `json:"recursive"`
	OutputDir string   `json:"output_dir"`
	Overlay   *bool    `json:"overlay"`
	Workers   *int     `json:"workers"`
}

func (s *Server) handleScanFolder(args json.RawMessage) (interface{}, error) {
	var a scanFolderArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Inputs) == 0 {
		return nil, fmt.Errorf("inputs is required")
	}

	opts, err := scan.OptionsFromConfig(s.cfg)
	if err != nil {
		return nil, err
	}
	if opts.Params, err = s.resolveParams(a.paramArgs); err != nil {
		return nil, err
	}
	if a.ROI != "" {
		opts.ROI = a.ROI
		opts.OverlayOptions.ShowROI = true
	}
	if a.OutputDir != "" {
		opts.OutputDir = a.OutputDir
	}
	if a.Overlay != nil {
		opts.Overlay = *a.Overlay
	}
	if a.Workers != nil {
		opts.Workers = *a.Workers
	}
	recursive := s.cfg.Scan.Recursive
	if a.Recursive != nil {
		recursive = *a.Recursive
	}

	paths, err := scan.CollectInputs(a.Inputs, s.cfg.Scan.Extensions, recursive)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found")
	}

	return scan.Run(s.ctx, paths, s.extractor, opts)
}
