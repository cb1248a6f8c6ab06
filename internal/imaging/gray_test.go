package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestToRaster_Gray(t *testing.T) {
	img := createGradientGray(5, 8)
	m := ToRaster(img)
	if m.Rows != 5 || m.Cols != 8 {
		t.Fatalf("size: got %dx%d, want 5x8", m.Rows, m.Cols)
	}
	for r := 0; r < 5; r++ {
		for c := 0; c < 8; c++ {
			if got := m.At(r, c); got != float64(10*c) {
				t.Fatalf("(%d,%d): got %v, want %v", r, c, got, 10*c)
			}
		}
	}
}

func TestToRaster_Gray16KeepsDepth(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 4, 3))
	img.SetGray16(2, 1, color.Gray16{Y: 51234})

	m := ToRaster(img)
	if got := m.At(1, 2); got != 51234 {
		t.Errorf("16-bit pixel: got %v, want 51234", got)
	}
	if got := m.At(0, 0); got != 0 {
		t.Errorf("background: got %v, want 0", got)
	}
}

func TestToRaster_ColorLuminance(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want float64
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 255},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"red", color.RGBA{255, 0, 0, 255}, 0.299 * 255},
		{"green", color.RGBA{0, 255, 0, 255}, 0.587 * 255},
		{"blue", color.RGBA{0, 0, 255, 255}, 0.114 * 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ToRaster(createInMemoryImage(3, 2, tt.c))
			if got := m.At(1, 2); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToRaster_SubImageOrigin(t *testing.T) {
	full := createGradientGray(10, 10)
	sub := full.SubImage(image.Rect(3, 2, 7, 6)).(*image.Gray)

	m := ToRaster(sub)
	if m.Rows != 4 || m.Cols != 4 {
		t.Fatalf("size: got %dx%d, want 4x4", m.Rows, m.Cols)
	}
	if got := m.At(0, 0); got != 30 {
		t.Errorf("(0,0): got %v, want 30", got)
	}
}

func TestNegativeRaster(t *testing.T) {
	img := createGradientGray(2, 4)
	m := NegativeRaster(img)
	for c := 0; c < 4; c++ {
		if got, want := m.At(1, c), float64(255-10*c); math.Abs(got-want) > 1e-9 {
			t.Errorf("col %d: got %v, want %v", c, got, want)
		}
	}
}

// A 16-bit negative stays on the 16-bit scale, so a contrast measured on
// it matches the contrast of the original.
func TestNegativeRaster_Gray16KeepsDepth(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 1000})
	img.SetGray16(1, 0, color.Gray16{Y: 51234})

	m := NegativeRaster(img)
	if got := m.At(0, 0); got != 64535 {
		t.Errorf("(0,0): got %v, want 64535", got)
	}
	if got := m.At(0, 1); got != 65535-51234 {
		t.Errorf("(0,1): got %v, want %v", got, 65535-51234)
	}
	if got := m.At(1, 2); got != 65535 {
		t.Errorf("(1,2): got %v, want 65535", got)
	}

	orig := ToRaster(img)
	if got, want := m.At(0, 0)-m.At(0, 1), orig.At(0, 1)-orig.At(0, 0); got != want {
		t.Errorf("contrast: got %v, want %v", got, want)
	}
}

func TestWhiteLevel(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want float64
	}{
		{"gray", image.NewGray(image.Rect(0, 0, 1, 1)), 255},
		{"gray16", image.NewGray16(image.Rect(0, 0, 1, 1)), 65535},
		{"rgba", image.NewRGBA(image.Rect(0, 0, 1, 1)), 255},
		{"rgba64", image.NewRGBA64(image.Rect(0, 0, 1, 1)), 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WhiteLevel(tt.img); got != tt.want {
				t.Errorf("WhiteLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRasterToGray(t *testing.T) {
	m := ToRaster(createGradientGray(3, 6))
	m.Set(0, 0, -12)
	m.Set(0, 1, 300)

	img := RasterToGray(m)
	if img.GrayAt(0, 0).Y != 0 || img.GrayAt(1, 0).Y != 255 {
		t.Errorf("clamping: got %d and %d", img.GrayAt(0, 0).Y, img.GrayAt(1, 0).Y)
	}
	if img.GrayAt(4, 2).Y != 40 {
		t.Errorf("(row 2, col 4): got %d, want 40", img.GrayAt(4, 2).Y)
	}
}
