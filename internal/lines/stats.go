package lines

import (
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a result for logs and tool responses.
type Stats struct {
	Contours       int     `json:"contours"`
	Points         int     `json:"points"`
	TotalLength    float64 `json:"total_length"`
	MeanLength     float64 `json:"mean_length"`
	MeanStrength   float64 `json:"mean_strength"`
	StdDevStrength float64 `json:"stddev_strength"`
}

// Stats computes contour and strength statistics. Strength figures are
// zero when there are fewer than two points.
func (r *Result) Stats() Stats {
	s := Stats{Contours: len(r.Contours)}

	lengths := make([]float64, len(r.Contours))
	strengths := make([]float64, 0, r.NumPoints())
	for i, c := range r.Contours {
		lengths[i] = c.Length()
		s.TotalLength += lengths[i]
		for _, p := range c.Points {
			strengths = append(strengths, p.Strength)
		}
	}
	s.Points = len(strengths)

	if len(lengths) > 0 {
		s.MeanLength = stat.Mean(lengths, nil)
	}
	if len(strengths) > 1 {
		s.MeanStrength, s.StdDevStrength = stat.MeanStdDev(strengths, nil)
	}
	return s
}
