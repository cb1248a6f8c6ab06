package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/laser-lines/internal/lines"
)

// DefaultOverlayMaxSide is the preview size used by the command line tool.
const DefaultOverlayMaxSide = 1500

// OverlayOptions controls RenderOverlay.
type OverlayOptions struct {
	// MaxSide downscales the preview so neither side exceeds it. Zero keeps
	// the source size.
	MaxSide int `json:"max_side"`

	// Radius of the dot drawn at each point, in output pixels.
	Radius int `json:"radius"`

	// Color is a "#RRGGBB" used for every contour. Empty gives each contour
	// its own hue.
	Color string `json:"color"`

	// ShowROI outlines the searched region.
	ShowROI bool `json:"show_roi"`
}

// RenderOverlay draws the contour points of res over img.
func RenderOverlay(img image.Image, res *lines.Result, opts OverlayOptions) (*image.NRGBA, error) {
	var fixed *color.NRGBA
	if opts.Color != "" {
		c, err := parseHexColor(opts.Color)
		if err != nil {
			return nil, err
		}
		fixed = &c
	}

	out := imaging.Clone(img)
	scale := 1.0
	if w, h := out.Bounds().Dx(), out.Bounds().Dy(); opts.MaxSide > 0 && max(w, h) > opts.MaxSide {
		out = imaging.Fit(out, opts.MaxSide, opts.MaxSide, imaging.Lanczos)
		scale = float64(out.Bounds().Dx()) / float64(w)
	}

	if opts.ShowROI {
		roiColor := color.NRGBA{255, 255, 0, 255}
		drawRect(out,
			int(float64(res.ROI.Col0)*scale), int(float64(res.ROI.Row0)*scale),
			int(float64(res.ROI.Col1)*scale)-1, int(float64(res.ROI.Row1)*scale)-1,
			roiColor)
	}

	for i, c := range res.Contours {
		col := contourColor(i)
		if fixed != nil {
			col = *fixed
		}
		for _, p := range c.Points {
			x := int(math.Round(p.Col * scale))
			y := int(math.Round(p.Row * scale))
			drawDot(out, x, y, opts.Radius, col)
		}
	}
	return out, nil
}

// contourColor spreads hues by the golden angle so neighboring contours
// stay distinguishable.
func contourColor(i int) color.NRGBA {
	hue := math.Mod(float64(i)*137.508, 360)
	r, g, b := colorful.Hsv(hue, 0.9, 1).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// parseHexColor parses "#RRGGBB" or "#RGB".
func parseHexColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func drawDot(img *image.NRGBA, x, y, radius int, c color.NRGBA) {
	bounds := img.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.SetNRGBA(px, py, c)
			}
		}
	}
}

func drawRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetNRGBA(x, y, c)
		}
	}
	for x := x0; x <= x1; x++ {
		set(x, y0)
		set(x, y1)
	}
	for y := y0; y <= y1; y++ {
		set(x0, y)
		set(x1, y)
	}
}

// EncodedImage is an image returned inline by the tool server.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// SaveImage writes img to path in the format named by its extension:
// PNG, JPEG or WebP. quality applies to JPEG and lossy WebP.
func SaveImage(img image.Image, path string, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imgio.Save(path, img, imgio.PNGEncoder())
	case ".jpg", ".jpeg":
		return imgio.Save(path, img, imgio.JPEGEncoder(quality))
	case ".webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Quality: float32(quality)})
	}
	return fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
}
