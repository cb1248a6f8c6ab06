package lines

import (
	"math"

	"github.com/ironsheep/laser-lines/internal/workerpool"
)

// neighborOffsets lists the (dRow, dCol) pair compared for each phase bin.
// The phase is the normal direction measured with columns to the right and
// rows downward, so 45 degrees points down-right.
var neighborOffsets = [4][2]int{
	{0, 1},  // 0 deg: left / right
	{1, 1},  // 45 deg: up-left / down-right
	{1, 0},  // 90 deg: up / down
	{1, -1}, // 135 deg: up-right / down-left
}

// phaseBin quantizes a normal direction into one of four bins.
func phaseBin(normalRow, normalCol float64) int {
	deg := math.Atan2(normalRow, normalCol) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	switch {
	case deg >= 337.5 || deg < 22.5 || (deg >= 157.5 && deg < 202.5):
		return 0
	case (deg >= 22.5 && deg < 67.5) || (deg >= 202.5 && deg < 247.5):
		return 1
	case (deg >= 67.5 && deg < 112.5) || (deg >= 247.5 && deg < 292.5):
		return 2
	default:
		return 3
	}
}

// Suppress thins the response strength to single-pixel ridges. A pixel
// keeps its strength only if it is at least as strong as both neighbors
// along its normal; border pixels are always cleared. Suppress must run
// after detection has filled the whole strength map.
func Suppress(resp *Response, pool *workerpool.Pool) *Raster {
	rows, cols := resp.Rows, resp.Cols
	out := NewRaster(rows, cols)
	if rows < 3 || cols < 3 {
		return out
	}

	s := resp.Strength.Data
	pool.ParallelFor(rows-2, func(start, end int) {
		for r := start + 1; r < end+1; r++ {
			for c := 1; c < cols-1; c++ {
				i := r*cols + c
				v := s[i]
				if v == 0 {
					continue
				}
				off := neighborOffsets[phaseBin(resp.NormalRow.Data[i], resp.NormalCol.Data[i])]
				n1 := s[(r-off[0])*cols+c-off[1]]
				n2 := s[(r+off[0])*cols+c+off[1]]
				if v >= n1 && v >= n2 {
					out.Data[i] = v
				}
			}
		}
	})
	return out
}
