package lines

import (
	"math"

	"github.com/ironsheep/laser-lines/internal/workerpool"
)

// degenerateDenominator is the smallest |second directional derivative|
// accepted in the Taylor step.
const degenerateDenominator = 1e-9

// RidgePoint is a sub-pixel line center.
type RidgePoint struct {
	// Row and Col are the sub-pixel position. They differ from the source
	// pixel by at most 0.5 along each axis.
	Row float64 `json:"row"`
	Col float64 `json:"col"`

	// NormalRow and NormalCol form the unit vector across the line.
	NormalRow float64 `json:"normal_row"`
	NormalCol float64 `json:"normal_col"`

	// Strength is the magnitude of the dominant Hessian eigenvalue.
	Strength float64 `json:"strength"`

	// Polarity is Light for a negative eigenvalue (intensity maximum) and
	// Dark for a positive one.
	Polarity Polarity `json:"polarity"`

	// PixelRow and PixelCol locate the source pixel.
	PixelRow int `json:"pixel_row"`
	PixelCol int `json:"pixel_col"`
}

// tangent returns the unit direction along the line as (dRow, dCol).
func (p RidgePoint) tangent() (float64, float64) {
	return p.NormalCol, -p.NormalRow
}

// Response is the detector output for one image.
type Response struct {
	Rows, Cols int

	// Strength holds |lambda| for every pixel whose curvature sign matches
	// the requested polarity and exceeds the low threshold; zero elsewhere.
	Strength *Raster

	// NormalRow and NormalCol hold the unit normal of every pixel with a
	// non-zero strength.
	NormalRow *Raster
	NormalCol *Raster

	// Points holds accepted ridge points in row-major pixel order.
	Points []RidgePoint

	// index maps a pixel to its entry in Points, or -1.
	index []int32

	// Degenerate counts pixels dropped for a vanishing Taylor denominator.
	Degenerate int
}

// PointAt returns the accepted ridge point at pixel (r, c), if any.
func (resp *Response) PointAt(r, c int) (RidgePoint, bool) {
	i := resp.index[r*resp.Cols+c]
	if i < 0 {
		return RidgePoint{}, false
	}
	return resp.Points[i], true
}

// eigen2 returns the eigenvalue of [[a, b], [b, c]] with the larger
// magnitude and its unit eigenvector (vx, vy). The vector is oriented so
// that vx > 0, or vy > 0 when vx is zero, making H and -H share vectors.
//
// With a zero trace both eigenvalues have the same magnitude; the sign of
// b, then of a, picks one so that eigen2 of -H is always -lambda.
func eigen2(a, b, c float64) (lambda, vx, vy float64) {
	mean := (a + c) / 2
	d := math.Hypot((a-c)/2, b)
	switch {
	case mean > 0:
		lambda = mean + d
	case mean < 0:
		lambda = mean - d
	case b > 0 || (b == 0 && a >= 0):
		lambda = d
	default:
		lambda = -d
	}

	// Either row of (H - lambda*I) gives the eigenvector; take the better
	// conditioned one.
	x1, y1 := b, lambda-a
	x2, y2 := lambda-c, b
	n1 := math.Hypot(x1, y1)
	n2 := math.Hypot(x2, y2)
	switch {
	case n1 == 0 && n2 == 0:
		vx, vy = 1, 0
	case n1 >= n2:
		vx, vy = x1/n1, y1/n1
	default:
		vx, vy = x2/n2, y2/n2
	}
	if vx < 0 || (vx == 0 && vy < 0) {
		vx, vy = -vx, -vy
	}
	return lambda, vx, vy
}

// DetectRidgePoints runs the per-pixel Hessian analysis. Rows are
// processed in parallel; the call returns once every row is done.
func DetectRidgePoints(d *Derivatives, scale ScaleParameters, polarity Polarity, pool *workerpool.Pool) *Response {
	rows, cols := d.Dx.Rows, d.Dx.Cols
	resp := &Response{
		Rows:      rows,
		Cols:      cols,
		Strength:  NewRaster(rows, cols),
		NormalRow: NewRaster(rows, cols),
		NormalCol: NewRaster(rows, cols),
		index:     make([]int32, rows*cols),
	}

	// Each row keeps its own point list so the merge below is ordered
	// regardless of how rows were scheduled.
	rowPoints := make([][]RidgePoint, rows)
	rowDegenerate := make([]int, rows)

	pool.ParallelFor(rows, func(start, end int) {
		for r := start; r < end; r++ {
			var found []RidgePoint
			degenerate := 0
			for c := 0; c < cols; c++ {
				i := r*cols + c
				dxx, dyy, dxy := d.Dxx.Data[i], d.Dyy.Data[i], d.Dxy.Data[i]

				lambda, nx, ny := eigen2(dxx, dxy, dyy)
				strength := math.Abs(lambda)
				if !(strength > scale.Low) {
					continue
				}
				sign := Light
				if lambda > 0 {
					sign = Dark
				}
				if sign != polarity {
					continue
				}

				resp.Strength.Data[i] = strength
				resp.NormalRow.Data[i] = ny
				resp.NormalCol.Data[i] = nx

				denom := dxx*nx*nx + dyy*ny*ny + 2*dxy*nx*ny
				if math.Abs(denom) < degenerateDenominator {
					degenerate++
					continue
				}
				t := -(d.Dx.Data[i]*nx + d.Dy.Data[i]*ny) / denom
				if math.Abs(t*nx) > 0.5 || math.Abs(t*ny) > 0.5 {
					continue
				}
				if strength < scale.High {
					continue
				}

				found = append(found, RidgePoint{
					Row:       float64(r) + t*ny,
					Col:       float64(c) + t*nx,
					NormalRow: ny,
					NormalCol: nx,
					Strength:  strength,
					Polarity:  sign,
					PixelRow:  r,
					PixelCol:  c,
				})
			}
			rowPoints[r] = found
			rowDegenerate[r] = degenerate
		}
	})

	for i := range resp.index {
		resp.index[i] = -1
	}
	for r := range rows {
		for _, p := range rowPoints[r] {
			resp.index[p.PixelRow*cols+p.PixelCol] = int32(len(resp.Points))
			resp.Points = append(resp.Points, p)
		}
		resp.Degenerate += rowDegenerate[r]
	}
	return resp
}
