package lines

import "errors"

var (
	// ErrInvalidParameter reports a line width, contrast, or length bound
	// that is rejected before any pixel is touched.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidROI reports a region of interest that is empty or lies
	// outside the image.
	ErrInvalidROI = errors.New("invalid region of interest")

	// ErrImageLoad reports an image that could not be opened or decoded.
	// It is produced by loaders, not by the extractor itself.
	ErrImageLoad = errors.New("image load failed")

	// ErrNumericDegeneracy marks a pixel whose Taylor step has a vanishing
	// denominator. The pixel is dropped and the error never leaves the
	// package.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)
