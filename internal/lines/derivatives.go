package lines

import (
	"math"

	"github.com/ironsheep/laser-lines/internal/workerpool"
)

// Derivatives holds the first and second partial derivatives of a Gaussian
// smoothed image. X runs along columns and Y along rows.
//
// The fields belong to a single extraction call and are never shared
// between images.
type Derivatives struct {
	Dx, Dy, Dxx, Dyy, Dxy *Raster
}

// kernel is a symmetric or antisymmetric 1D filter stored as its
// non-negative half: taps[k] is the weight at offset k, k = 0..radius.
type kernel struct {
	taps []float64
	odd  bool
}

// KernelRadius returns the half width used for a Gaussian of the given
// sigma.
func KernelRadius(sigma float64) int {
	return max(1, int(math.Ceil(3*sigma)))
}

// gaussianKernels builds the smoothing, first and second derivative
// kernels for sigma. The samples are renormalized so that on the discrete
// grid g0 preserves constants, g1 maps a unit ramp to 1 and g2 maps x²/2 to
// 1 with zero response to constants.
func gaussianKernels(sigma float64) (g0, g1, g2 kernel) {
	radius := KernelRadius(sigma)
	s2 := sigma * sigma

	g := make([]float64, radius+1)
	for k := range g {
		g[k] = math.Exp(-float64(k*k) / (2 * s2))
	}

	g0 = kernel{taps: make([]float64, radius+1)}
	sum := g[0]
	for k := 1; k <= radius; k++ {
		sum += 2 * g[k]
	}
	for k := range g {
		g0.taps[k] = g[k] / sum
	}

	// Convolution is out(x) = sum_k h(k) f(x-k), so a ramp f(x) = x gives
	// -sum_k k h(k) = 2 * sum_{k>0} k² g(k) * scale.
	g1 = kernel{taps: make([]float64, radius+1), odd: true}
	var m1 float64
	for k := 1; k <= radius; k++ {
		m1 += 2 * float64(k*k) * g[k]
	}
	for k := 1; k <= radius; k++ {
		g1.taps[k] = -float64(k) * g[k] / m1
	}

	g2 = kernel{taps: make([]float64, radius+1)}
	var side float64
	for k := 1; k <= radius; k++ {
		kk := float64(k * k)
		g2.taps[k] = (kk/(s2*s2) - 1/s2) * g[k]
		side += g2.taps[k]
	}
	g2.taps[0] = -2 * side
	var m2 float64
	for k := 1; k <= radius; k++ {
		m2 += float64(k*k) * g2.taps[k]
	}
	for k := range g2.taps {
		g2.taps[k] /= m2
	}

	return g0, g1, g2
}

// reflect maps an index outside [0, n) back inside with symmetric
// reflection: -1 -> 0, -2 -> 1, n -> n-1. Indices further than n away are
// folded repeatedly.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// convolveRows filters every row of src along the column axis.
func convolveRows(src, dst *Raster, k kernel, pool *workerpool.Pool) {
	radius := len(k.taps) - 1
	cols := src.Cols
	pool.ParallelFor(src.Rows, func(start, end int) {
		padded := make([]float64, cols+2*radius)
		for r := start; r < end; r++ {
			row := src.Row(r)
			for i := range padded {
				padded[i] = row[reflect(i-radius, cols)]
			}
			out := dst.Row(r)
			for c := 0; c < cols; c++ {
				out[c] = applyKernel(padded, c+radius, 1, k)
			}
		}
	})
}

// convolveCols filters every column of src along the row axis. Work is
// split by output row so each worker writes a disjoint band.
func convolveCols(src, dst *Raster, k kernel, pool *workerpool.Pool) {
	radius := len(k.taps) - 1
	rows, cols := src.Rows, src.Cols
	pool.ParallelFor(rows, func(start, end int) {
		for r := start; r < end; r++ {
			out := dst.Row(r)
			for c := 0; c < cols; c++ {
				v := k.taps[0] * src.Data[r*cols+c]
				for j := 1; j <= radius; j++ {
					before := src.Data[reflect(r-j, rows)*cols+c]
					after := src.Data[reflect(r+j, rows)*cols+c]
					if k.odd {
						v += k.taps[j] * (before - after)
					} else {
						v += k.taps[j] * (before + after)
					}
				}
				out[c] = v
			}
		}
	})
}

// applyKernel evaluates the kernel centered at buf[center]. Taps are
// applied in pairs so an odd kernel returns exactly zero on constant input.
func applyKernel(buf []float64, center, stride int, k kernel) float64 {
	v := k.taps[0] * buf[center]
	for j := 1; j < len(k.taps); j++ {
		before := buf[center-j*stride]
		after := buf[center+j*stride]
		if k.odd {
			v += k.taps[j] * (before - after)
		} else {
			v += k.taps[j] * (before + after)
		}
	}
	return v
}

// ComputeDerivatives smooths src with a Gaussian of the given sigma and
// returns its five partial derivatives. Borders use symmetric reflection
// for every field. The result is identical for any pool size.
func ComputeDerivatives(src *Raster, sigma float64, pool *workerpool.Pool) *Derivatives {
	g0, g1, g2 := gaussianKernels(sigma)

	h0 := NewRaster(src.Rows, src.Cols)
	h1 := NewRaster(src.Rows, src.Cols)
	h2 := NewRaster(src.Rows, src.Cols)
	convolveRows(src, h0, g0, pool)
	convolveRows(src, h1, g1, pool)
	convolveRows(src, h2, g2, pool)

	d := &Derivatives{
		Dx:  NewRaster(src.Rows, src.Cols),
		Dy:  NewRaster(src.Rows, src.Cols),
		Dxx: NewRaster(src.Rows, src.Cols),
		Dyy: NewRaster(src.Rows, src.Cols),
		Dxy: NewRaster(src.Rows, src.Cols),
	}
	convolveCols(h1, d.Dx, g0, pool)
	convolveCols(h0, d.Dy, g1, pool)
	convolveCols(h2, d.Dxx, g0, pool)
	convolveCols(h0, d.Dyy, g2, pool)
	convolveCols(h1, d.Dxy, g1, pool)
	return d
}
