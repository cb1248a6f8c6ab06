package lines

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract_HorizontalBarAccuracy(t *testing.T) {
	const center = 20.3
	src := createHorizontalBar(40, 60, center, 6, 50, 200)

	res, err := Extract(src, ROI{}, barParams(6))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Contours) != 1 {
		t.Fatalf("contours: got %d, want 1", len(res.Contours))
	}
	if res.ROI != FullROI(40, 60) {
		t.Errorf("ROI: got %v, want full image", res.ROI)
	}

	// Border columns never survive suppression.
	pts := res.Contours[0].Points
	if len(pts) != 58 {
		t.Errorf("points: got %d, want 58", len(pts))
	}

	var sum float64
	for _, p := range pts {
		sum += (p.Row - center) * (p.Row - center)
	}
	if rms := math.Sqrt(sum / float64(len(pts))); rms > 0.1 {
		t.Errorf("row RMS error: got %v, want < 0.1", rms)
	}
}

func TestExtract_VerticalBar(t *testing.T) {
	const center = 25.7
	src := createVerticalBar(50, 45, center, 5, 30, 180)

	res, err := Extract(src, ROI{}, barParams(5))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Contours) != 1 {
		t.Fatalf("contours: got %d, want 1", len(res.Contours))
	}
	for _, p := range res.Contours[0].Points {
		if math.Abs(p.Col-center) > 0.2 {
			t.Fatalf("point col %v too far from %v", p.Col, center)
		}
		if math.Abs(p.NormalCol) < 0.99 {
			t.Fatalf("normal (%v, %v) not horizontal", p.NormalRow, p.NormalCol)
		}
	}
}

// Diagonal bars leave a two-pixel staircase after suppression; it must
// still come out as a single contour.
func TestExtract_DiagonalBar(t *testing.T) {
	const centerRow, centerCol = 40.3, 40.2
	for _, deg := range []float64{45, 135} {
		theta := deg * math.Pi / 180
		normalRow, normalCol := math.Cos(theta), -math.Sin(theta)
		src := createAngledBar(80, 80, centerRow, centerCol, deg, 6, 50, 200)

		res, err := Extract(src, ROI{}, barParams(6))
		if err != nil {
			t.Fatalf("%v deg: Extract failed: %v", deg, err)
		}
		if len(res.Contours) != 1 {
			t.Fatalf("%v deg: contours: got %d, want 1", deg, len(res.Contours))
		}
		c := res.Contours[0]
		if l := c.Length(); l < 90 {
			t.Errorf("%v deg: length: got %v, want at least 90", deg, l)
		}
		for _, p := range c.Points {
			// Reflection at the borders bends the bar near the corners.
			if p.Row < 10 || p.Row > 70 || p.Col < 10 || p.Col > 70 {
				continue
			}
			dist := (p.Row-centerRow)*normalRow + (p.Col-centerCol)*normalCol
			if math.Abs(dist) > 0.2 {
				t.Fatalf("%v deg: point (%v, %v) is %v from the center line", deg, p.Row, p.Col, dist)
			}
		}
	}
}

func TestExtract_CandidatesMonotonicInHighThreshold(t *testing.T) {
	src := createHorizontalBar(40, 60, 12.5, 6, 50, 200)
	weak := createHorizontalBar(40, 60, 28.2, 6, 0, 60)
	for i := range src.Data {
		src.Data[i] += weak.Data[i]
	}

	prev := math.MaxInt
	for _, high := range []float64{5, 10, 20, 40, 80, 160, 320} {
		p := barParams(6)
		p.ContrastLow = 5
		p.ContrastHigh = high
		res, err := Extract(src, ROI{}, p)
		if err != nil {
			t.Fatalf("high %v: Extract failed: %v", high, err)
		}
		if res.Candidates > prev {
			t.Errorf("high %v: candidates grew from %d to %d", high, prev, res.Candidates)
		}
		prev = res.Candidates
	}
}

func TestExtract_DeterministicAcrossWorkers(t *testing.T) {
	src := createHorizontalBar(64, 80, 20.3, 6, 40, 200)
	cross := createVerticalBar(64, 80, 55.6, 4, 0, 120)
	for i := range src.Data {
		src.Data[i] += cross.Data[i] + float64((i*31)%7)
	}
	p := barParams(6)

	want, err := Extract(src, ROI{}, p)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	e := NewExtractor(4)
	defer e.Close()
	for i := 0; i < 3; i++ {
		got, err := e.Extract(src, ROI{}, p)
		if err != nil {
			t.Fatalf("run %d: Extract failed: %v", i, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("run %d: result differs (-sequential +parallel):\n%s", i, diff)
		}
	}
}

func TestExtract_NilExtractor(t *testing.T) {
	var e *Extractor
	src := createHorizontalBar(30, 40, 15, 6, 50, 200)
	if _, err := e.Extract(src, ROI{}, barParams(6)); err != nil {
		t.Fatalf("nil Extractor failed: %v", err)
	}
}

func TestExtract_ROIOffset(t *testing.T) {
	src := createHorizontalBar(60, 100, 30.4, 6, 50, 200)
	roi := ROI{Row0: 10, Col0: 20, Row1: 50, Col1: 90}
	p := barParams(6)

	got, err := Extract(src, roi, p)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got.ROI != roi {
		t.Errorf("ROI: got %v, want %v", got.ROI, roi)
	}

	local, err := Extract(src.Crop(roi), ROI{}, p)
	if err != nil {
		t.Fatalf("Extract on crop failed: %v", err)
	}
	want := offsetContours(local.Contours, roi.Row0, roi.Col0)
	if diff := cmp.Diff(want, got.Contours); diff != "" {
		t.Errorf("contours differ from offset crop (-want +got):\n%s", diff)
	}

	if len(got.Contours) == 0 {
		t.Fatal("no contours in ROI")
	}
	for _, c := range got.Contours {
		for _, pt := range c.Points {
			if pt.PixelRow < roi.Row0 || pt.PixelRow >= roi.Row1 || pt.PixelCol < roi.Col0 || pt.PixelCol >= roi.Col1 {
				t.Fatalf("point %+v outside ROI %v", pt, roi)
			}
		}
	}
}

func TestExtract_FlatImage(t *testing.T) {
	res, err := Extract(createConstant(30, 30, 90), ROI{}, barParams(4))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Contours) != 0 || res.Candidates != 0 {
		t.Errorf("flat image: got %d contours, %d candidates", len(res.Contours), res.Candidates)
	}
}

func TestExtract_PolaritySymmetry(t *testing.T) {
	src := createHorizontalBar(40, 60, 18.6, 6, 50, 200)

	light := barParams(6)
	dark := light
	dark.Polarity = Dark

	a, err := Extract(src, ROI{}, light)
	if err != nil {
		t.Fatalf("light Extract failed: %v", err)
	}
	b, err := Extract(invert(src, 255), ROI{}, dark)
	if err != nil {
		t.Fatalf("dark Extract failed: %v", err)
	}

	if len(a.Contours) != len(b.Contours) {
		t.Fatalf("contours: light %d, dark %d", len(a.Contours), len(b.Contours))
	}
	for i := range a.Contours {
		pa, pb := a.Contours[i].Points, b.Contours[i].Points
		if len(pa) != len(pb) {
			t.Fatalf("contour %d: light %d points, dark %d", i, len(pa), len(pb))
		}
		for j := range pa {
			if math.Abs(pa[j].Row-pb[j].Row) > 1e-9 || math.Abs(pa[j].Col-pb[j].Col) > 1e-9 {
				t.Fatalf("contour %d point %d: light (%v,%v), dark (%v,%v)",
					i, j, pa[j].Row, pa[j].Col, pb[j].Row, pb[j].Col)
			}
			if pb[j].Polarity != Dark {
				t.Fatalf("dark point recorded as %v", pb[j].Polarity)
			}
		}
	}
}

func TestExtract_Errors(t *testing.T) {
	src := createConstant(40, 60, 0)

	tests := []struct {
		name    string
		src     *Raster
		roi     ROI
		edit    func(*Params)
		wantErr error
	}{
		{"roi past bottom", src, ROI{Row0: 0, Col0: 0, Row1: 41, Col1: 10}, nil, ErrInvalidROI},
		{"negative origin", src, ROI{Row0: -1, Col0: 0, Row1: 10, Col1: 10}, nil, ErrInvalidROI},
		{"empty roi", src, ROI{Row0: 5, Col0: 5, Row1: 5, Col1: 20}, nil, ErrInvalidROI},
		{"zero width", src, ROI{}, func(p *Params) { p.MaxLineWidth = 0 }, ErrInvalidParameter},
		{"high below low", src, ROI{}, func(p *Params) { p.ContrastHigh = 1 }, ErrInvalidParameter},
		{"nil image", nil, ROI{}, nil, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			if tt.edit != nil {
				tt.edit(&p)
			}
			_, err := Extract(tt.src, tt.roi, p)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Extract error: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResult_FlattenAndStats(t *testing.T) {
	res := &Result{Contours: []Contour{
		{Points: []RidgePoint{
			{Row: 1, Col: 2, Strength: 2},
			{Row: 1, Col: 3, Strength: 4},
		}},
		{Points: []RidgePoint{
			{Row: 5, Col: 5, Strength: 6},
			{Row: 8, Col: 9, Strength: 8},
		}},
	}}

	rows, cols := res.Flatten()
	if diff := cmp.Diff([]float64{1, 1, 5, 8}, rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 3, 5, 9}, cols); diff != "" {
		t.Errorf("cols (-want +got):\n%s", diff)
	}

	s := res.Stats()
	if s.Contours != 2 || s.Points != 4 {
		t.Errorf("counts: got %d contours, %d points", s.Contours, s.Points)
	}
	if math.Abs(s.TotalLength-6) > 1e-12 || math.Abs(s.MeanLength-3) > 1e-12 {
		t.Errorf("lengths: total %v mean %v, want 6 and 3", s.TotalLength, s.MeanLength)
	}
	if math.Abs(s.MeanStrength-5) > 1e-12 {
		t.Errorf("MeanStrength: got %v, want 5", s.MeanStrength)
	}
	// Sample standard deviation of 2, 4, 6, 8.
	if want := math.Sqrt(20.0 / 3); math.Abs(s.StdDevStrength-want) > 1e-12 {
		t.Errorf("StdDevStrength: got %v, want %v", s.StdDevStrength, want)
	}

	empty := (&Result{}).Stats()
	if empty != (Stats{}) {
		t.Errorf("empty Stats: got %+v", empty)
	}
}
