// Package lines extracts thin bright or dark curvilinear structures, such
// as laser stripes, from a grayscale image and reports their centerlines
// with sub-pixel accuracy.
//
// # Pipeline
//
// Each call to Extract runs the same linear sequence over one image:
//
//  1. Parameter derivation: the maximum line width and contrast window are
//     turned into a Gaussian sigma and two second-derivative thresholds
//     (DeriveScale).
//
//  2. Derivatives: the region of interest is convolved with separable
//     Gaussian, first and second derivative kernels of radius ceil(3*sigma)
//     to produce dx, dy, dxx, dyy and dxy (ComputeDerivatives).
//
//  3. Ridge points: at each pixel the 2x2 Hessian is decomposed in closed
//     form. The eigenvector of the dominant eigenvalue is the line normal;
//     a second-order Taylor step along it locates the intensity extremum.
//     Points whose extremum falls outside the pixel, whose curvature is
//     below the high threshold or whose sign contradicts the requested
//     polarity are dropped (DetectRidgePoints).
//
//  4. Non-maximum suppression: the response is thinned along the
//     quantized normal direction (Suppress).
//
//  5. Linking: surviving points are chained through 8-neighbors into
//     contours, which are kept when their length lies inside the
//     configured window (LinkContours, FilterContours).
//
//  6. Output: points are shifted by the ROI origin back into image
//     coordinates.
//
// # Coordinates
//
// Positions are (row, col) with row growing downward and col growing
// rightward. Pixel (r, c) covers [r-0.5, r+0.5] x [c-0.5, c+0.5].
//
// # Borders
//
// Convolution uses symmetric reflection at the image (or ROI) edge for all
// five fields, so extracting a cropped ROI is identical to extracting the
// same pixels as a standalone image. Suppression clears the outermost
// pixel ring.
//
// # Concurrency
//
// Convolution, detection and suppression are split by row across a
// workerpool.Pool, with a barrier after every pass. Linking is sequential.
// Results do not depend on the number of workers.
package lines
