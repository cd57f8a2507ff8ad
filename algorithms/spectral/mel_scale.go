package spectral

import (
	"fmt"
	"math"
	"sync"
)

// HzToMel converts frequency in Hz to mel scale
func HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts mel scale to frequency in Hz
func MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MelFilterbank is a fixed bank of triangular mel-scale filters over
// power-spectrum bins. It is a pure function of its three parameters and
// immutable once built, so a bank may be shared freely across goroutines.
type MelFilterbank struct {
	numFilters int
	fftSize    int
	sampleRate int
	filters    [][]float64
}

// NewMelFilterbank builds a bank of numFilters triangular filters for the
// given FFT size and sample rate. Filter centers are equally spaced on the
// mel scale between 0 Hz and sampleRate/2, mapped to FFT bins via
// floor((fftSize+1)*hz/sampleRate). Each filter ramps 0->1 from its left
// bin to its center bin and 1->0 from center to right bin; zero-width ramps
// (from very narrow filters) are left empty rather than divided by zero.
func NewMelFilterbank(numFilters, fftSize, sampleRate int) (*MelFilterbank, error) {
	if numFilters <= 0 {
		return nil, fmt.Errorf("number of filters must be positive, got %d", numFilters)
	}
	if fftSize <= 0 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("FFT size must be a positive power of two, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	lowMel := HzToMel(0)
	highMel := HzToMel(float64(sampleRate) / 2.0)

	// numFilters+2 points equally spaced in mel space, converted back to Hz
	// and then to FFT bin indices
	bins := make([]int, numFilters+2)
	melStep := (highMel - lowMel) / float64(numFilters+1)
	for i := range bins {
		hz := MelToHz(lowMel + float64(i)*melStep)
		bins[i] = int(math.Floor((float64(fftSize) + 1.0) * hz / float64(sampleRate)))
	}

	numBins := fftSize/2 + 1
	filters := make([][]float64, numFilters)
	for i := range filters {
		filters[i] = make([]float64, numBins)
	}

	for m := 1; m <= numFilters; m++ {
		left := bins[m-1]
		center := bins[m]
		right := bins[m+1]

		// Rising edge
		for k := left; k < center && k < numBins; k++ {
			filters[m-1][k] = float64(k-left) / float64(center-left)
		}

		// Falling edge
		for k := center; k < right && k < numBins; k++ {
			filters[m-1][k] = float64(right-k) / float64(right-center)
		}
	}

	return &MelFilterbank{
		numFilters: numFilters,
		fftSize:    fftSize,
		sampleRate: sampleRate,
		filters:    filters,
	}, nil
}

// Apply computes the weighted energy of the power spectrum under each filter
func (fb *MelFilterbank) Apply(powerSpectrum []float64) []float64 {
	energies := make([]float64, fb.numFilters)

	for m, filter := range fb.filters {
		sum := 0.0
		for k := 0; k < len(filter) && k < len(powerSpectrum); k++ {
			sum += powerSpectrum[k] * filter[k]
		}
		energies[m] = sum
	}

	return energies
}

// LogEnergies computes filter energies with log compression. Zero-energy
// filters are floored at log(1e-10) so silence never produces -Inf; silence
// is a legitimate signal state here, not an error.
func (fb *MelFilterbank) LogEnergies(powerSpectrum []float64) []float64 {
	energies := fb.Apply(powerSpectrum)

	for m, e := range energies {
		if e > 0 {
			energies[m] = math.Log(e)
		} else {
			energies[m] = math.Log(1e-10)
		}
	}

	return energies
}

// NumFilters returns the number of filters in the bank
func (fb *MelFilterbank) NumFilters() int {
	return fb.numFilters
}

// Filters returns the filter weight matrix (numFilters x fftSize/2+1).
// The returned slices are the bank's own storage and must not be mutated.
func (fb *MelFilterbank) Filters() [][]float64 {
	return fb.filters
}

type filterbankKey struct {
	numFilters int
	fftSize    int
	sampleRate int
}

var (
	filterbankMu    sync.RWMutex
	filterbankCache = make(map[filterbankKey]*MelFilterbank)
)

// CachedMelFilterbank returns a shared filterbank for the given parameters,
// building it on first use. Banks are immutable after construction, so a
// lost construction race only wastes the duplicate build.
func CachedMelFilterbank(numFilters, fftSize, sampleRate int) (*MelFilterbank, error) {
	key := filterbankKey{numFilters, fftSize, sampleRate}

	filterbankMu.RLock()
	fb, ok := filterbankCache[key]
	filterbankMu.RUnlock()
	if ok {
		return fb, nil
	}

	fb, err := NewMelFilterbank(numFilters, fftSize, sampleRate)
	if err != nil {
		return nil, err
	}

	filterbankMu.Lock()
	filterbankCache[key] = fb
	filterbankMu.Unlock()

	return fb, nil
}
