package spectral

import (
	"fmt"
	"math"

	"github.com/veda-labs/mantramatch/algorithms/filters"
	"github.com/veda-labs/mantramatch/algorithms/windowing"
)

// MFCC computes Mel-Frequency Cepstral Coefficients from raw audio frames.
// The pipeline is strictly ordered: pre-emphasis, Hamming windowing, power
// spectrum, mel filterbank with log compression, cosine-basis DCT.
//
// An MFCC instance caches its window between frames and is not safe for
// concurrent use; give each goroutine its own extractor. Filterbanks are
// shared process-wide through CachedMelFilterbank.
type MFCC struct {
	numCoefficients int
	numMelFilters   int
	sampleRate      int

	preEmphasis *filters.PreEmphasis
	fft         *FFT
	dctMatrix   [][]float64

	// Window is rebuilt lazily when the frame length changes
	window *windowing.Hamming
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int     `json:"num_coefficients"` // Number of cepstral coefficients (default: 13)
	NumMelFilters   int     `json:"num_mel_filters"`  // Number of mel filter bank filters (default: 40)
	PreEmphasis     float64 `json:"pre_emphasis"`     // Pre-emphasis coefficient (default: 0.95)
}

// NewMFCC creates a new MFCC computer with default parameters
func NewMFCC(sampleRate int) (*MFCC, error) {
	return NewMFCCWithParams(sampleRate, MFCCParams{})
}

// NewMFCCWithParams creates a new MFCC computer with custom parameters
func NewMFCCWithParams(sampleRate int, params MFCCParams) (*MFCC, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	// Set defaults
	if params.NumCoefficients <= 0 {
		params.NumCoefficients = 13
	}
	if params.NumMelFilters <= 0 {
		params.NumMelFilters = 40
	}
	if params.PreEmphasis == 0 {
		params.PreEmphasis = 0.95
	}

	preEmphasis, err := filters.NewPreEmphasis(params.PreEmphasis)
	if err != nil {
		return nil, err
	}

	mfcc := &MFCC{
		numCoefficients: params.NumCoefficients,
		numMelFilters:   params.NumMelFilters,
		sampleRate:      sampleRate,
		preEmphasis:     preEmphasis,
		fft:             NewFFT(),
	}
	mfcc.createDCTMatrix()

	return mfcc, nil
}

// createDCTMatrix precomputes the unnormalized cosine basis. No orthonormal
// scaling is applied; every frame is projected onto the same basis, so
// coefficients stay mutually consistent.
func (mfcc *MFCC) createDCTMatrix() {
	mfcc.dctMatrix = make([][]float64, mfcc.numCoefficients)

	for k := 0; k < mfcc.numCoefficients; k++ {
		mfcc.dctMatrix[k] = make([]float64, mfcc.numMelFilters)
		for m := 0; m < mfcc.numMelFilters; m++ {
			mfcc.dctMatrix[k][m] = math.Cos(math.Pi * float64(k) * (float64(m) + 0.5) / float64(mfcc.numMelFilters))
		}
	}
}

// Compute extracts one cepstral vector from a raw audio frame. The frame is
// modified in place by pre-emphasis and windowing; it belongs to this call
// and should be discarded afterwards. Frame length must be at least 2.
func (mfcc *MFCC) Compute(frame []float64) ([]float64, error) {
	if len(frame) < 2 {
		return nil, fmt.Errorf("frame must contain at least 2 samples, got %d", len(frame))
	}

	// 1. Pre-emphasis, in place
	mfcc.preEmphasis.Apply(frame)

	// 2. Hamming window, in place
	if mfcc.window == nil || mfcc.window.Size() != len(frame) {
		window, err := windowing.NewHamming(len(frame))
		if err != nil {
			return nil, err
		}
		mfcc.window = window
	}
	if err := mfcc.window.ApplyInPlace(frame); err != nil {
		return nil, err
	}

	// 3. Power spectrum (zero-padded FFT, Nyquist-folded)
	power, err := mfcc.fft.PowerSpectrum(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to compute power spectrum: %w", err)
	}

	// 4. Mel filterbank energies with log compression
	fftSize := 2 * (len(power) - 1)
	filterbank, err := CachedMelFilterbank(mfcc.numMelFilters, fftSize, mfcc.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to build mel filterbank: %w", err)
	}
	melEnergies := filterbank.LogEnergies(power)

	// 5. DCT-II projection onto the cosine basis
	return mfcc.applyDCT(melEnergies), nil
}

func (mfcc *MFCC) applyDCT(melEnergies []float64) []float64 {
	coeffs := make([]float64, mfcc.numCoefficients)

	for k := range mfcc.dctMatrix {
		sum := 0.0
		for m := 0; m < len(melEnergies) && m < len(mfcc.dctMatrix[k]); m++ {
			sum += melEnergies[m] * mfcc.dctMatrix[k][m]
		}
		coeffs[k] = sum
	}

	return coeffs
}

// ComputeFrames extracts one cepstral vector per frame. Frames are modified
// in place, same as Compute.
func (mfcc *MFCC) ComputeFrames(frames [][]float64) ([][]float64, error) {
	vectors := make([][]float64, len(frames))

	for t, frame := range frames {
		vector, err := mfcc.Compute(frame)
		if err != nil {
			return nil, fmt.Errorf("failed to compute MFCC for frame %d: %w", t, err)
		}
		vectors[t] = vector
	}

	return vectors, nil
}

// NumCoefficients returns the length of vectors produced by Compute
func (mfcc *MFCC) NumCoefficients() int {
	return mfcc.numCoefficients
}

// SampleRate returns the sample rate the extractor was built for
func (mfcc *MFCC) SampleRate() int {
	return mfcc.sampleRate
}
