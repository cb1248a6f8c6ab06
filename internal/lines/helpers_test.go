package lines

import (
	"math"
	"sort"
)

// overlap returns the length of [a0, a1] ∩ [b0, b1].
func overlap(a0, a1, b0, b1 float64) float64 {
	return math.Max(0, math.Min(a1, b1)-math.Max(a0, b0))
}

// createHorizontalBar renders an anti-aliased bright bar centered on
// row center. Each pixel's value is the area-weighted mix of fg and bg.
func createHorizontalBar(rows, cols int, center, width, bg, fg float64) *Raster {
	m := NewRaster(rows, cols)
	for r := 0; r < rows; r++ {
		cover := overlap(float64(r)-0.5, float64(r)+0.5, center-width/2, center+width/2)
		v := bg + (fg-bg)*cover
		for c := 0; c < cols; c++ {
			m.Set(r, c, v)
		}
	}
	return m
}

// createVerticalBar is createHorizontalBar rotated by 90 degrees.
func createVerticalBar(rows, cols int, center, width, bg, fg float64) *Raster {
	m := NewRaster(rows, cols)
	for c := 0; c < cols; c++ {
		cover := overlap(float64(c)-0.5, float64(c)+0.5, center-width/2, center+width/2)
		v := bg + (fg-bg)*cover
		for r := 0; r < rows; r++ {
			m.Set(r, c, v)
		}
	}
	return m
}

// createAngledBar renders a bright bar through (centerRow, centerCol)
// running at deg degrees from the column axis, turning toward increasing
// rows. Coverage is measured across the bar at each pixel center.
func createAngledBar(rows, cols int, centerRow, centerCol, deg, width, bg, fg float64) *Raster {
	theta := deg * math.Pi / 180
	normalRow, normalCol := math.Cos(theta), -math.Sin(theta)
	m := NewRaster(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dist := (float64(r)-centerRow)*normalRow + (float64(c)-centerCol)*normalCol
			cover := overlap(dist-0.5, dist+0.5, -width/2, width/2)
			m.Set(r, c, bg+(fg-bg)*cover)
		}
	}
	return m
}

// createConstant returns a flat image.
func createConstant(rows, cols int, v float64) *Raster {
	m := NewRaster(rows, cols)
	for i := range m.Data {
		m.Data[i] = v
	}
	return m
}

// invert returns max - v for every pixel.
func invert(m *Raster, max float64) *Raster {
	out := NewRaster(m.Rows, m.Cols)
	for i, v := range m.Data {
		out.Data[i] = max - v
	}
	return out
}

// barParams returns parameters matched to a bar of the given width.
func barParams(width float64) Params {
	p := DefaultParams()
	p.MaxLineWidth = width
	p.ContrastLow = 20
	p.ContrastHigh = 60
	return p
}

// newTestResponse builds a response holding exactly the given points,
// each of which also survives suppression.
func newTestResponse(rows, cols int, points []RidgePoint) (*Response, *Raster) {
	sorted := append([]RidgePoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PixelRow != sorted[j].PixelRow {
			return sorted[i].PixelRow < sorted[j].PixelRow
		}
		return sorted[i].PixelCol < sorted[j].PixelCol
	})

	resp := &Response{
		Rows:      rows,
		Cols:      cols,
		Strength:  NewRaster(rows, cols),
		NormalRow: NewRaster(rows, cols),
		NormalCol: NewRaster(rows, cols),
		Points:    sorted,
		index:     make([]int32, rows*cols),
	}
	for i := range resp.index {
		resp.index[i] = -1
	}
	survive := NewRaster(rows, cols)
	for i, p := range sorted {
		k := p.PixelRow*cols + p.PixelCol
		resp.index[k] = int32(i)
		resp.Strength.Data[k] = p.Strength
		resp.NormalRow.Data[k] = p.NormalRow
		resp.NormalCol.Data[k] = p.NormalCol
		survive.Data[k] = p.Strength
	}
	return resp, survive
}

// pixelPoint is a ridge point centered on its pixel.
func pixelPoint(r, c int, normalRow, normalCol float64) RidgePoint {
	return RidgePoint{
		Row:       float64(r),
		Col:       float64(c),
		NormalRow: normalRow,
		NormalCol: normalCol,
		Strength:  1,
		Polarity:  Light,
		PixelRow:  r,
		PixelCol:  c,
	}
}
