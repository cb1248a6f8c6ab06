package imaging

import (
	"image"
	"image/color"

	"github.com/ironsheep/laser-lines/internal/lines"
)

// createInMemoryImage creates a solid color image.
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createGradientGray creates a grayscale image whose value is 10 * column.
func createGradientGray(rows, cols int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(10 * x)})
		}
	}
	return img
}

// sampleResult builds a result with one horizontal and one vertical contour.
func sampleResult() *lines.Result {
	var horizontal, vertical lines.Contour
	for c := 10; c < 30; c++ {
		horizontal.Points = append(horizontal.Points, lines.RidgePoint{Row: 20.3, Col: float64(c), PixelRow: 20, PixelCol: c})
	}
	for r := 5; r < 15; r++ {
		vertical.Points = append(vertical.Points, lines.RidgePoint{Row: float64(r), Col: 40, PixelRow: r, PixelCol: 40})
	}
	return &lines.Result{
		ROI:      lines.ROI{Row0: 0, Col0: 0, Row1: 50, Col1: 60},
		Contours: []lines.Contour{horizontal, vertical},
	}
}
