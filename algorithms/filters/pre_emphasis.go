package filters

import "fmt"

// PreEmphasis implements a first-order high-pass pre-emphasis filter
// applied frame-by-frame:
//
//	y[n] = x[n] - alpha*x[n-1]
//
// Pre-emphasis compensates for the natural spectral roll-off of speech,
// boosting high-frequency energy before spectral analysis. Typical
// coefficients are 0.95-0.97.
type PreEmphasis struct {
	coefficient float64
}

// NewPreEmphasis creates a pre-emphasis filter with the given coefficient.
// The coefficient must lie in (0, 1).
func NewPreEmphasis(coefficient float64) (*PreEmphasis, error) {
	if coefficient <= 0 || coefficient >= 1 {
		return nil, fmt.Errorf("pre-emphasis coefficient must be in (0, 1), got %g", coefficient)
	}
	return &PreEmphasis{coefficient: coefficient}, nil
}

// Apply filters the frame in place. Samples are processed from the last
// index down to index 1 so every subtraction reads a still-unmodified
// neighbor; the first sample passes through unchanged.
func (pe *PreEmphasis) Apply(frame []float64) {
	for i := len(frame) - 1; i > 0; i-- {
		frame[i] -= pe.coefficient * frame[i-1]
	}
}

// Coefficient returns the filter coefficient
func (pe *PreEmphasis) Coefficient() float64 {
	return pe.coefficient
}
