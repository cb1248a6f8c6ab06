package lines

import (
	"math"
	"testing"
)

// straightChain returns n unit-spaced points along row 0 followed by one
// more point at distance last, so the chain length is n-1+last.
func straightChain(n int, last float64) Contour {
	pts := make([]RidgePoint, 0, n+1)
	for i := 0; i < n; i++ {
		pts = append(pts, pixelPoint(0, i, 1, 0))
	}
	end := pixelPoint(0, n, 1, 0)
	end.Col = float64(n-1) + last
	pts = append(pts, end)
	return Contour{Points: pts}
}

func TestContourLength(t *testing.T) {
	c := Contour{Points: []RidgePoint{
		{Row: 0, Col: 0},
		{Row: 3, Col: 4},
		{Row: 3, Col: 5},
	}}
	if got := c.Length(); math.Abs(got-6) > 1e-12 {
		t.Errorf("Length: got %v, want 6", got)
	}
	if got := (Contour{}).Length(); got != 0 {
		t.Errorf("empty Length: got %v, want 0", got)
	}
}

func TestFilterContours_LengthBoundary(t *testing.T) {
	const eps = 0.05
	short := straightChain(15, 1-eps) // 15 - eps
	exact := straightChain(15, 1)     // 15
	long := straightChain(15, 1+eps)  // 15 + eps
	huge := straightChain(5001, 1)    // 5001

	kept := FilterContours([]Contour{short, exact, long, huge}, DefaultMinLength, DefaultMaxLength)
	if len(kept) != 2 {
		t.Fatalf("kept %d contours, want 2", len(kept))
	}
	if math.Abs(kept[0].Length()-15) > 1e-9 {
		t.Errorf("first kept length: got %v, want 15", kept[0].Length())
	}
	if math.Abs(kept[1].Length()-(15+eps)) > 1e-9 {
		t.Errorf("second kept length: got %v, want %v", kept[1].Length(), 15+eps)
	}
}

func TestFilterContours_Empty(t *testing.T) {
	if kept := FilterContours(nil, 0, 10); len(kept) != 0 {
		t.Errorf("kept %d contours from nil input", len(kept))
	}
}

func TestLinkContours_StraightLine(t *testing.T) {
	var pts []RidgePoint
	for c := 2; c <= 12; c++ {
		pts = append(pts, pixelPoint(5, c, 1, 0))
	}
	resp, survive := newTestResponse(10, 15, pts)

	contours := LinkContours(resp, survive, DefaultMaxAngleChange)
	if len(contours) != 1 {
		t.Fatalf("contours: got %d, want 1", len(contours))
	}
	got := contours[0]
	if len(got.Points) != 11 {
		t.Fatalf("points: got %d, want 11", len(got.Points))
	}
	step := got.Points[1].PixelCol - got.Points[0].PixelCol
	if step != 1 && step != -1 {
		t.Fatalf("first step: got %d, want +-1", step)
	}
	for i := 1; i < len(got.Points); i++ {
		if got.Points[i].PixelCol-got.Points[i-1].PixelCol != step {
			t.Fatalf("contour not ordered at %d: %d -> %d", i, got.Points[i-1].PixelCol, got.Points[i].PixelCol)
		}
	}
	if math.Abs(got.Length()-10) > 1e-12 {
		t.Errorf("Length: got %v, want 10", got.Length())
	}
}

func TestLinkContours_DoesNotCrossJunction(t *testing.T) {
	var pts []RidgePoint
	for c := 0; c <= 10; c++ {
		pts = append(pts, pixelPoint(5, c, 1, 0))
	}
	for r := 6; r <= 10; r++ {
		pts = append(pts, pixelPoint(r, 5, 0, 1))
	}
	resp, survive := newTestResponse(12, 12, pts)

	contours := LinkContours(resp, survive, DefaultMaxAngleChange)
	if len(contours) != 2 {
		t.Fatalf("contours: got %d, want 2", len(contours))
	}
	if len(contours[0].Points) != 11 {
		t.Errorf("horizontal contour: got %d points, want 11", len(contours[0].Points))
	}
	if len(contours[1].Points) != 5 {
		t.Errorf("branch contour: got %d points, want 5", len(contours[1].Points))
	}
	for _, p := range contours[0].Points {
		if p.PixelRow != 5 {
			t.Errorf("horizontal contour strayed into the branch at %d,%d", p.PixelRow, p.PixelCol)
		}
	}
}

func TestLinkContours_DiagonalStaircase(t *testing.T) {
	// Two lanes of pixels, (r, r) and (r, r+1), whose points all lie on
	// the line col = row + 0.5.
	s := math.Sqrt2 / 2
	var pts []RidgePoint
	for r := 2; r <= 10; r++ {
		for _, lane := range []struct{ c, dRow float64 }{{0, -0.25}, {1, 0.25}} {
			c := r + int(lane.c)
			pts = append(pts, RidgePoint{
				Row:       float64(r) + lane.dRow,
				Col:       float64(r) + lane.dRow + 0.5,
				NormalRow: -s,
				NormalCol: s,
				Strength:  1,
				Polarity:  Light,
				PixelRow:  r,
				PixelCol:  c,
			})
		}
	}
	resp, survive := newTestResponse(14, 14, pts)

	contours := LinkContours(resp, survive, DefaultMaxAngleChange)
	if len(contours) != 1 {
		t.Fatalf("contours: got %d, want 1", len(contours))
	}
	if got, want := contours[0].Length(), 8.5*math.Sqrt2; math.Abs(got-want) > 1e-9 {
		t.Errorf("Length: got %v, want %v", got, want)
	}
}

func TestLinkContours_AngleLimit(t *testing.T) {
	var pts []RidgePoint
	for c := 0; c <= 5; c++ {
		pts = append(pts, pixelPoint(5, c, 1, 0))
	}
	for r := 6; r <= 10; r++ {
		pts = append(pts, pixelPoint(r, 6, 0, 1))
	}

	resp, survive := newTestResponse(12, 12, pts)
	if got := LinkContours(resp, survive, DefaultMaxAngleChange); len(got) != 2 {
		t.Errorf("45 degree limit: got %d contours, want 2", len(got))
	}

	resp, survive = newTestResponse(12, 12, pts)
	got := LinkContours(resp, survive, math.Pi)
	if len(got) != 1 {
		t.Fatalf("180 degree limit: got %d contours, want 1", len(got))
	}
	if len(got[0].Points) != 11 {
		t.Errorf("180 degree limit: got %d points, want 11", len(got[0].Points))
	}
}

func TestLinkContours_SkipsSuppressed(t *testing.T) {
	var pts []RidgePoint
	for c := 0; c <= 8; c++ {
		pts = append(pts, pixelPoint(3, c, 1, 0))
	}
	resp, survive := newTestResponse(6, 10, pts)
	survive.Set(3, 4, 0)

	contours := LinkContours(resp, survive, DefaultMaxAngleChange)
	if len(contours) != 2 {
		t.Fatalf("contours: got %d, want 2", len(contours))
	}
	for _, c := range contours {
		for _, p := range c.Points {
			if p.PixelCol == 4 {
				t.Error("suppressed point was linked")
			}
		}
	}
}

func TestLinkContours_ClosedLoop(t *testing.T) {
	// A small diamond: every point has two neighbors ahead and behind.
	s := math.Sqrt2 / 2
	pts := []RidgePoint{
		pixelPoint(2, 4, -s, -s),
		pixelPoint(3, 5, -s, s),
		pixelPoint(4, 6, -s, s),
		pixelPoint(5, 5, s, s),
		pixelPoint(6, 4, s, s),
		pixelPoint(5, 3, s, -s),
		pixelPoint(4, 2, s, -s),
		pixelPoint(3, 3, -s, -s),
	}
	resp, survive := newTestResponse(9, 9, pts)

	contours := LinkContours(resp, survive, math.Pi/2)
	total := 0
	for _, c := range contours {
		total += len(c.Points)
	}
	if total != len(pts) {
		t.Errorf("linked %d points over %d contours, want %d (each once)", total, len(contours), len(pts))
	}
}
