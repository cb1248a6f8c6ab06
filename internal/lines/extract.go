package lines

import (
	"fmt"

	"github.com/ironsheep/laser-lines/internal/workerpool"
)

// Result is the output of one extraction call.
type Result struct {
	// ROI is the region that was searched, in image coordinates.
	ROI ROI `json:"roi"`

	// Scale holds the derived sigma and thresholds.
	Scale ScaleParameters `json:"scale"`

	// Contours are the retained lines in discovery order, in full image
	// coordinates.
	Contours []Contour `json:"contours"`

	// Candidates is the number of accepted ridge points before
	// suppression and linking.
	Candidates int `json:"candidates"`

	// Degenerate is the number of pixels dropped for a vanishing Taylor
	// denominator.
	Degenerate int `json:"degenerate"`

	// Discarded is the number of linked contours rejected by the length
	// window.
	Discarded int `json:"discarded"`
}

// NumPoints returns the number of points over all contours.
func (r *Result) NumPoints() int {
	n := 0
	for _, c := range r.Contours {
		n += len(c.Points)
	}
	return n
}

// Flatten returns the contour points as two parallel sequences in
// traversal order.
func (r *Result) Flatten() (rows, cols []float64) {
	n := r.NumPoints()
	rows = make([]float64, 0, n)
	cols = make([]float64, 0, n)
	for _, c := range r.Contours {
		for _, p := range c.Points {
			rows = append(rows, p.Row)
			cols = append(cols, p.Col)
		}
	}
	return rows, cols
}

// Extractor runs the line extraction pipeline. Row-parallel stages share
// one worker pool, so a single Extractor can serve many images at once.
type Extractor struct {
	pool *workerpool.Pool
}

// NewExtractor creates an extractor with the given number of row workers.
// workers <= 0 uses GOMAXPROCS.
func NewExtractor(workers int) *Extractor {
	return &Extractor{pool: workerpool.New(workers)}
}

// Close releases the worker pool.
func (e *Extractor) Close() {
	e.pool.Close()
}

// Extract finds lines in src restricted to roi; a zero ROI means the whole
// image. An empty result is not an error.
//
// The stages run strictly in order: validate, crop, derive scale, compute
// derivatives, detect ridge points, suppress, link and filter, offset.
func (e *Extractor) Extract(src *Raster, roi ROI, p Params) (*Result, error) {
	var pool *workerpool.Pool
	if e != nil {
		pool = e.pool
	}
	return extract(src, roi, p, pool)
}

// Extract runs the pipeline on the calling goroutine.
func Extract(src *Raster, roi ROI, p Params) (*Result, error) {
	return extract(src, roi, p, nil)
}

func extract(src *Raster, roi ROI, p Params, pool *workerpool.Pool) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if src == nil || src.Rows <= 0 || src.Cols <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidParameter)
	}
	if roi.IsZero() {
		roi = FullROI(src.Rows, src.Cols)
	}
	if err := roi.Validate(src.Rows, src.Cols); err != nil {
		return nil, err
	}

	scale, err := DeriveScale(p)
	if err != nil {
		return nil, err
	}

	cropped := src.Crop(roi)
	deriv := ComputeDerivatives(cropped, scale.Sigma, pool)
	resp := DetectRidgePoints(deriv, scale, p.Polarity, pool)
	thin := Suppress(resp, pool)
	linked := LinkContours(resp, thin, p.MaxAngleChange)
	kept := FilterContours(linked, p.MinLength, p.MaxLength)

	return &Result{
		ROI:        roi,
		Scale:      scale,
		Contours:   offsetContours(kept, roi.Row0, roi.Col0),
		Candidates: len(resp.Points),
		Degenerate: resp.Degenerate,
		Discarded:  len(linked) - len(kept),
	}, nil
}

// offsetContours shifts ROI-local points into image coordinates.
func offsetContours(contours []Contour, row0, col0 int) []Contour {
	out := make([]Contour, len(contours))
	for i, c := range contours {
		pts := make([]RidgePoint, len(c.Points))
		for j, p := range c.Points {
			p.Row += float64(row0)
			p.Col += float64(col0)
			p.PixelRow += row0
			p.PixelCol += col0
			pts[j] = p
		}
		out[i] = Contour{Points: pts}
	}
	return out
}
