// Package imaging connects image files to the line extractor.
//
// It decodes stripe images (PNG, JPEG, GIF, BMP, TIFF, WebP), converts them
// to intensity rasters, resolves regions of interest, and renders contour
// overlays for inspection.
//
// # Coordinate System
//
// Go images address pixels as (x, y) with (0,0) at the top-left. Rasters and
// ROIs use (row, col): row is y and col is x. For regions, (row0, col0) is
// inclusive and (row1, col1) is exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Load failures wrap lines.ErrImageLoad and ROI failures wrap
// lines.ErrInvalidROI, so callers can classify errors with errors.Is.
package imaging
