package windowing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHammingValidation(t *testing.T) {
	_, err := NewHamming(0)
	assert.Error(t, err)

	_, err = NewHamming(1)
	assert.Error(t, err)

	_, err = NewHamming(2)
	assert.NoError(t, err)
}

func TestHammingCoefficients(t *testing.T) {
	// n=4: endpoints 0.54-0.46 = 0.08, interior 0.54+0.23 = 0.77
	h, err := NewHamming(4)
	require.NoError(t, err)

	coeffs := h.Coefficients()
	require.Len(t, coeffs, 4)
	assert.InDelta(t, 0.08, coeffs[0], 1e-12)
	assert.InDelta(t, 0.77, coeffs[1], 1e-12)
	assert.InDelta(t, 0.77, coeffs[2], 1e-12)
	assert.InDelta(t, 0.08, coeffs[3], 1e-12)
}

func TestHammingSymmetry(t *testing.T) {
	h, err := NewHamming(101)
	require.NoError(t, err)

	coeffs := h.Coefficients()
	for i := 0; i < len(coeffs)/2; i++ {
		assert.InDelta(t, coeffs[i], coeffs[len(coeffs)-1-i], 1e-12, "index %d", i)
	}

	// Peak at the center, taper at the edges
	assert.InDelta(t, 1.0, coeffs[50], 1e-12)
	assert.InDelta(t, 0.08, coeffs[0], 1e-12)
}

func TestHammingApply(t *testing.T) {
	h, err := NewHamming(4)
	require.NoError(t, err)

	signal := []float64{1, 1, 1, 1}
	windowed, err := h.Apply(signal)
	require.NoError(t, err)

	// Apply leaves the input untouched
	assert.Equal(t, []float64{1, 1, 1, 1}, signal)
	assert.InDelta(t, 0.08, windowed[0], 1e-12)
	assert.InDelta(t, 0.77, windowed[1], 1e-12)

	_, err = h.Apply([]float64{1, 2})
	assert.Error(t, err)
}

func TestHammingApplyInPlace(t *testing.T) {
	h, err := NewHamming(4)
	require.NoError(t, err)

	signal := []float64{1, 1, 1, 1}
	require.NoError(t, h.ApplyInPlace(signal))
	assert.InDelta(t, 0.08, signal[0], 1e-12)
	assert.InDelta(t, 0.77, signal[1], 1e-12)
	assert.InDelta(t, 0.77, signal[2], 1e-12)
	assert.InDelta(t, 0.08, signal[3], 1e-12)

	assert.Error(t, h.ApplyInPlace([]float64{1, 2, 3}))
}
