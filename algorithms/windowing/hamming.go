package windowing

import (
	"fmt"
	"math"
)

// Hamming represents a symmetric Hamming window function.
// Coefficients follow 0.54 - 0.46*cos(2*pi*i/(n-1)), which tapers frame
// edges to reduce spectral leakage.
type Hamming struct {
	size         int
	coefficients []float64
}

// NewHamming creates a Hamming window of the given size. Size must be at
// least 2 since the coefficient formula divides by size-1.
func NewHamming(size int) (*Hamming, error) {
	if size < 2 {
		return nil, fmt.Errorf("window size must be at least 2, got %d", size)
	}

	h := &Hamming{size: size}
	h.generate()
	return h, nil
}

func (h *Hamming) generate() {
	h.coefficients = make([]float64, h.size)
	denominator := float64(h.size - 1)

	for i := 0; i < h.size; i++ {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
}

// Apply applies the window to a signal (creates new array)
func (h *Hamming) Apply(signal []float64) ([]float64, error) {
	if len(signal) != h.size {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	windowed := make([]float64, h.size)
	for i := range signal {
		windowed[i] = signal[i] * h.coefficients[i]
	}

	return windowed, nil
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hamming) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range signal {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// Coefficients returns a copy of the window coefficients
func (h *Hamming) Coefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// Size returns the window size
func (h *Hamming) Size() int {
	return h.size
}
