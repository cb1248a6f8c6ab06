package imaging

import (
	"image"

	"github.com/ironsheep/laser-lines/internal/lines"
)

// ToRaster converts img to an intensity raster with row 0 at the top.
//
// Grayscale images keep their native depth: *image.Gray gives values in
// [0, 255] and *image.Gray16 gives values in [0, 65535], so contrast
// thresholds are in the image's own gray levels. Color images are reduced
// to luminance with ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B) on the 8-bit scale.
func ToRaster(img image.Image) *lines.Raster {
	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	out := lines.NewRaster(rows, cols)

	switch src := img.(type) {
	case *image.Gray:
		for r := 0; r < rows; r++ {
			row := out.Row(r)
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+r)
			for c := range row {
				row[c] = float64(src.Pix[off+c])
			}
		}
	case *image.Gray16:
		for r := 0; r < rows; r++ {
			row := out.Row(r)
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+r)
			for c := range row {
				i := off + 2*c
				row[c] = float64(uint16(src.Pix[i])<<8 | uint16(src.Pix[i+1]))
			}
		}
	default:
		for r := 0; r < rows; r++ {
			row := out.Row(r)
			for c := range row {
				cr, cg, cb, _ := img.At(bounds.Min.X+c, bounds.Min.Y+r).RGBA()
				row[c] = (0.299*float64(cr) + 0.587*float64(cg) + 0.114*float64(cb)) / 257
			}
		}
	}
	return out
}

// WhiteLevel returns the largest value ToRaster can produce for img:
// 65535 for *image.Gray16 and 255 for everything else.
func WhiteLevel(img image.Image) float64 {
	if _, ok := img.(*image.Gray16); ok {
		return 65535
	}
	return 255
}

// NegativeRaster returns the photographic negative of img as a raster,
// turning dark lines into light ones. Values stay on the scale ToRaster
// uses for img, so contrast thresholds mean the same with or without
// inversion.
func NegativeRaster(img image.Image) *lines.Raster {
	m := ToRaster(img)
	white := WhiteLevel(img)
	for i, v := range m.Data {
		m.Data[i] = white - v
	}
	return m
}

// RasterToGray renders a raster as an 8-bit image, clamping values to
// [0, 255].
func RasterToGray(m *lines.Raster) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Cols, m.Rows))
	for r := 0; r < m.Rows; r++ {
		row := m.Row(r)
		off := out.PixOffset(0, r)
		for c, v := range row {
			out.Pix[off+c] = uint8(clamp(int(v+0.5), 0, 255))
		}
	}
	return out
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
