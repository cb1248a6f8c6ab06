package lines

import "fmt"

// Raster is a single-channel floating point image stored row-major.
//
// Index (r, c) lives at Data[r*Cols+c]. Rows grow downward and columns grow
// rightward, matching image coordinates.
type Raster struct {
	Rows int
	Cols int
	Data []float64
}

// NewRaster allocates a zero-filled raster.
func NewRaster(rows, cols int) *Raster {
	return &Raster{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// NewRasterFrom wraps existing row-major data. The slice length must equal
// rows*cols.
func NewRasterFrom(rows, cols int, data []float64) (*Raster, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: raster size %dx%d", ErrInvalidParameter, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: raster data has %d values, want %d", ErrInvalidParameter, len(data), rows*cols)
	}
	return &Raster{Rows: rows, Cols: cols, Data: data}, nil
}

// At returns the value at (r, c). It panics on out-of-range indices like a
// slice access.
func (m *Raster) At(r, c int) float64 {
	return m.Data[r*m.Cols+c]
}

// Set stores v at (r, c).
func (m *Raster) Set(r, c int, v float64) {
	m.Data[r*m.Cols+c] = v
}

// Row returns row r as a slice aliasing the raster data.
func (m *Raster) Row(r int) []float64 {
	return m.Data[r*m.Cols : (r+1)*m.Cols]
}

// Crop copies the region described by roi into a new raster. The ROI must
// already be validated against the raster bounds.
func (m *Raster) Crop(roi ROI) *Raster {
	out := NewRaster(roi.Rows(), roi.Cols())
	for r := 0; r < out.Rows; r++ {
		copy(out.Row(r), m.Data[(roi.Row0+r)*m.Cols+roi.Col0:(roi.Row0+r)*m.Cols+roi.Col1])
	}
	return out
}

// ROI is a half-open rectangle [Row0, Row1) x [Col0, Col1) in image
// coordinates.
type ROI struct {
	Row0 int `json:"row0" yaml:"row0"`
	Col0 int `json:"col0" yaml:"col0"`
	Row1 int `json:"row1" yaml:"row1"`
	Col1 int `json:"col1" yaml:"col1"`
}

// FullROI covers an entire rows x cols image.
func FullROI(rows, cols int) ROI {
	return ROI{Row0: 0, Col0: 0, Row1: rows, Col1: cols}
}

// Rows returns the ROI height.
func (r ROI) Rows() int { return r.Row1 - r.Row0 }

// Cols returns the ROI width.
func (r ROI) Cols() int { return r.Col1 - r.Col0 }

// IsZero reports whether the ROI is the zero value, which callers treat as
// "whole image".
func (r ROI) IsZero() bool { return r == ROI{} }

// Validate checks 0 <= Row0 < Row1 <= rows and 0 <= Col0 < Col1 <= cols.
func (r ROI) Validate(rows, cols int) error {
	if r.Row0 < 0 || r.Col0 < 0 || r.Row1 > rows || r.Col1 > cols {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d) outside image %dx%d",
			ErrInvalidROI, r.Row0, r.Col0, r.Row1, r.Col1, rows, cols)
	}
	if r.Row0 >= r.Row1 || r.Col0 >= r.Col1 {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d) is empty", ErrInvalidROI, r.Row0, r.Col0, r.Row1, r.Col1)
	}
	return nil
}

func (r ROI) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Row0, r.Col0, r.Row1, r.Col1)
}
