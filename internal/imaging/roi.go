package imaging

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/laser-lines/internal/lines"
)

// RegionNames lists the names accepted by NamedROI.
var RegionNames = []string{
	"full",
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half",
	"center",
}

// NamedROI returns the ROI for a named region of a rows x cols image.
// Halves split at rows/2 and cols/2; "center" is the middle 50% on both
// axes.
func NamedROI(region string, rows, cols int) (lines.ROI, error) {
	midR := rows / 2
	midC := cols / 2

	var r0, c0, r1, c1 int
	switch region {
	case "full", "":
		r0, c0, r1, c1 = 0, 0, rows, cols
	case "top-left":
		r0, c0, r1, c1 = 0, 0, midR, midC
	case "top-right":
		r0, c0, r1, c1 = 0, midC, midR, cols
	case "bottom-left":
		r0, c0, r1, c1 = midR, 0, rows, midC
	case "bottom-right":
		r0, c0, r1, c1 = midR, midC, rows, cols
	case "top-half":
		r0, c0, r1, c1 = 0, 0, midR, cols
	case "bottom-half":
		r0, c0, r1, c1 = midR, 0, rows, cols
	case "left-half":
		r0, c0, r1, c1 = 0, 0, rows, midC
	case "right-half":
		r0, c0, r1, c1 = 0, midC, rows, cols
	case "center":
		qR := rows / 4
		qC := cols / 4
		r0, c0, r1, c1 = qR, qC, rows-qR, cols-qC
	default:
		return lines.ROI{}, fmt.Errorf("%w: unknown region: %s", lines.ErrInvalidROI, region)
	}

	roi := lines.ROI{Row0: r0, Col0: c0, Row1: r1, Col1: c1}
	if err := roi.Validate(rows, cols); err != nil {
		return lines.ROI{}, err
	}
	return roi, nil
}

// ParseROI parses "row0,col0,row1,col1". Bounds are not checked against an
// image; use ROI.Validate for that.
func ParseROI(s string) (lines.ROI, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return lines.ROI{}, fmt.Errorf("%w: %q: want row0,col0,row1,col1", lines.ErrInvalidROI, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return lines.ROI{}, fmt.Errorf("%w: %q: %v", lines.ErrInvalidROI, s, err)
		}
		v[i] = n
	}
	return lines.ROI{Row0: v[0], Col0: v[1], Row1: v[2], Col1: v[3]}, nil
}

// ResolveROI accepts either a region name or an explicit rectangle and
// validates the result against the image size.
func ResolveROI(region string, rows, cols int) (lines.ROI, error) {
	region = strings.TrimSpace(region)
	if !strings.Contains(region, ",") {
		return NamedROI(region, rows, cols)
	}
	roi, err := ParseROI(region)
	if err != nil {
		return lines.ROI{}, err
	}
	if err := roi.Validate(rows, cols); err != nil {
		return lines.ROI{}, err
	}
	return roi, nil
}

// CropROI extracts the ROI from img. The returned image's bounds start at
// (0, 0).
func CropROI(img image.Image, roi lines.ROI) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if err := roi.Validate(bounds.Dy(), bounds.Dx()); err != nil {
		return nil, err
	}
	rect := image.Rect(
		bounds.Min.X+roi.Col0, bounds.Min.Y+roi.Row0,
		bounds.Min.X+roi.Col1, bounds.Min.Y+roi.Row1,
	)
	return imaging.Crop(img, rect), nil
}
