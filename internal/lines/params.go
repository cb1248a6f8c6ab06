package lines

import (
	"fmt"
	"math"
	"strings"
)

// Polarity selects whether lines are brighter or darker than the
// background.
type Polarity int

const (
	// Light lines are brighter than their surroundings (laser stripes).
	Light Polarity = iota
	// Dark lines are darker than their surroundings (scratches, ink).
	Dark
)

func (p Polarity) String() string {
	switch p {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return "unknown"
	}
}

// ParsePolarity accepts "light" or "dark" in any case.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return Light, fmt.Errorf("%w: polarity %q (want light or dark)", ErrInvalidParameter, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Polarity) UnmarshalText(text []byte) error {
	v, err := ParsePolarity(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Default contour length window in pixels.
const (
	DefaultMinLength = 15.0
	DefaultMaxLength = 5000.0
)

// DefaultMaxAngleChange is the largest tangent turn, in radians, the
// linker accepts between consecutive points.
const DefaultMaxAngleChange = math.Pi / 4

// Params holds the physical inputs of one extraction call.
type Params struct {
	// MaxLineWidth is the widest expected line in pixels.
	MaxLineWidth float64 `json:"max_line_width" yaml:"max_line_width"`

	// ContrastLow and ContrastHigh bound the gray-value contrast of a line
	// against its background.
	ContrastLow  float64 `json:"contrast_low" yaml:"contrast_low"`
	ContrastHigh float64 `json:"contrast_high" yaml:"contrast_high"`

	Polarity Polarity `json:"polarity" yaml:"polarity"`

	// MinLength and MaxLength bound the chain length of retained contours.
	MinLength float64 `json:"min_length" yaml:"min_length"`
	MaxLength float64 `json:"max_length" yaml:"max_length"`

	// MaxAngleChange stops a contour walk at sharper turns (radians).
	MaxAngleChange float64 `json:"max_angle_change" yaml:"max_angle_change"`
}

// DefaultParams returns the settings used for 50 px laser stripes on the
// scanner rig.
func DefaultParams() Params {
	return Params{
		MaxLineWidth:   50,
		ContrastLow:    3,
		ContrastHigh:   10,
		Polarity:       Light,
		MinLength:      DefaultMinLength,
		MaxLength:      DefaultMaxLength,
		MaxAngleChange: DefaultMaxAngleChange,
	}
}

// Validate rejects parameter sets the pipeline cannot honor.
func (p Params) Validate() error {
	if !(p.MaxLineWidth > 0) || math.IsInf(p.MaxLineWidth, 0) {
		return fmt.Errorf("%w: max line width must be > 0, got %g", ErrInvalidParameter, p.MaxLineWidth)
	}
	if p.ContrastLow < 0 {
		return fmt.Errorf("%w: contrast low must be >= 0, got %g", ErrInvalidParameter, p.ContrastLow)
	}
	if p.ContrastHigh < p.ContrastLow {
		return fmt.Errorf("%w: contrast high %g below contrast low %g", ErrInvalidParameter, p.ContrastHigh, p.ContrastLow)
	}
	if p.Polarity != Light && p.Polarity != Dark {
		return fmt.Errorf("%w: polarity %d", ErrInvalidParameter, int(p.Polarity))
	}
	if p.MinLength < 0 {
		return fmt.Errorf("%w: min length must be >= 0, got %g", ErrInvalidParameter, p.MinLength)
	}
	if p.MaxLength < p.MinLength {
		return fmt.Errorf("%w: max length %g below min length %g", ErrInvalidParameter, p.MaxLength, p.MinLength)
	}
	if !(p.MaxAngleChange > 0) || p.MaxAngleChange > math.Pi {
		return fmt.Errorf("%w: max angle change must be in (0, pi], got %g", ErrInvalidParameter, p.MaxAngleChange)
	}
	return nil
}

// ScaleParameters are the detector settings derived from Params.
type ScaleParameters struct {
	Sigma float64 `json:"sigma"`
	Low   float64 `json:"low_threshold"`
	High  float64 `json:"high_threshold"`
}

// DeriveScale converts a line width and contrast window into a Gaussian
// scale and second-derivative thresholds.
//
// For a bar of half width w/2 the scale is sigma = (w/2)/sqrt(3), the
// smallest sigma for which the bar produces a single second-derivative
// extremum. The thresholds are the contrasts multiplied by the response of
// a unit-contrast bar at its center:
//
//	facet = -2*(w/2) / (sqrt(2*pi)*sigma^3) * exp(-0.5*((w/2)/sigma)^2)
func DeriveScale(p Params) (ScaleParameters, error) {
	if !(p.MaxLineWidth > 0) || math.IsInf(p.MaxLineWidth, 0) {
		return ScaleParameters{}, fmt.Errorf("%w: max line width must be > 0, got %g", ErrInvalidParameter, p.MaxLineWidth)
	}
	if p.ContrastLow < 0 || p.ContrastHigh < p.ContrastLow {
		return ScaleParameters{}, fmt.Errorf("%w: contrast window [%g, %g]", ErrInvalidParameter, p.ContrastLow, p.ContrastHigh)
	}

	halfWidth := p.MaxLineWidth / 2
	sigma := halfWidth / math.Sqrt(3)
	facet := -2 * halfWidth / (math.Sqrt(2*math.Pi) * sigma * sigma * sigma) *
		math.Exp(-0.5*(halfWidth/sigma)*(halfWidth/sigma))

	return ScaleParameters{
		Sigma: sigma,
		Low:   math.Abs(p.ContrastLow * facet),
		High:  math.Abs(p.ContrastHigh * facet),
	}, nil
}
