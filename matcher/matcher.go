// Package matcher exposes the two boundary operations of the recitation
// matcher: MFCC extraction from a single audio frame and DTW similarity
// between two extracted sequences. The boundary speaks float32, matching
// host-application audio buffers; the numeric core runs in float64.
package matcher

import (
	"fmt"

	"github.com/veda-labs/mantramatch/algorithms/spectral"
	"github.com/veda-labs/mantramatch/algorithms/stats"
	"github.com/veda-labs/mantramatch/logging"
	"github.com/veda-labs/mantramatch/matcher/config"
)

// Matcher binds a feature configuration to a reusable extractor and aligner.
// A Matcher is not safe for concurrent use; create one per goroutine.
type Matcher struct {
	cfg    *config.FeatureConfig
	mfcc   *spectral.MFCC
	dtw    *stats.DTW
	logger logging.Logger
}

// New creates a Matcher from the given configuration. A nil configuration
// uses the defaults.
func New(cfg *config.FeatureConfig) (*Matcher, error) {
	if cfg == nil {
		cfg = config.DefaultFeatureConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}

	mfcc, err := spectral.NewMFCCWithParams(cfg.SampleRate, spectral.MFCCParams{
		NumCoefficients: cfg.NumCoefficients,
		NumMelFilters:   cfg.NumMelFilters,
		PreEmphasis:     cfg.PreEmphasis,
	})
	if err != nil {
		return nil, err
	}

	return &Matcher{
		cfg:    cfg,
		mfcc:   mfcc,
		dtw:    stats.NewDTWWithParams(cfg.DTWBandRadius, stats.CosineDistance),
		logger: logging.WithFields(logging.Fields{"component": "matcher"}),
	}, nil
}

// Config returns the configuration the matcher was built with
func (m *Matcher) Config() *config.FeatureConfig {
	return m.cfg
}

// ExtractMFCC extracts one cepstral vector from one frame of audio samples.
// The frame must contain at least 2 samples. The input is not modified; the
// pipeline works on an internal float64 copy.
func (m *Matcher) ExtractMFCC(frame []float32) ([]float32, error) {
	if len(frame) < 2 {
		return nil, fmt.Errorf("frame must contain at least 2 samples, got %d", len(frame))
	}

	buf := make([]float64, len(frame))
	for i, s := range frame {
		buf[i] = float64(s)
	}

	coeffs, err := m.mfcc.Compute(buf)
	if err != nil {
		return nil, fmt.Errorf("MFCC extraction failed: %w", err)
	}

	out := make([]float32, len(coeffs))
	for i, c := range coeffs {
		out[i] = float32(c)
	}
	return out, nil
}

// ExtractSequence extracts one cepstral vector per frame
func (m *Matcher) ExtractSequence(frames [][]float32) ([][]float32, error) {
	vectors := make([][]float32, len(frames))
	for t, frame := range frames {
		vector, err := m.ExtractMFCC(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", t, err)
		}
		vectors[t] = vector
	}
	return vectors, nil
}

// ComputeDTW aligns two cepstral-vector sequences and returns the
// length-normalized similarity score, approximately in [0, 1].
//
// Both sequences must be non-empty and every vector across both sequences
// must share one dimensionality. The reference behavior silently scored
// mismatched vectors as fully dissimilar; this boundary rejects them
// instead so dimensionality bugs surface as errors.
func (m *Matcher) ComputeDTW(seq1, seq2 [][]float32) (float32, error) {
	if len(seq1) == 0 || len(seq2) == 0 {
		return 0, fmt.Errorf("both sequences must be non-empty, got lengths %d and %d", len(seq1), len(seq2))
	}

	dim := len(seq1[0])
	q, err := toFloat64Seq(seq1, dim)
	if err != nil {
		return 0, fmt.Errorf("sequence 1: %w", err)
	}
	r, err := toFloat64Seq(seq2, dim)
	if err != nil {
		return 0, fmt.Errorf("sequence 2: %w", err)
	}

	result, err := m.dtw.Align(q, r)
	if err != nil {
		return 0, fmt.Errorf("DTW alignment failed: %w", err)
	}

	m.logger.Debug("DTW alignment complete", logging.Fields{
		"query_frames": result.QueryLength,
		"ref_frames":   result.RefLength,
		"cost":         result.Cost,
		"score":        result.Score,
	})

	return float32(result.Score), nil
}

// Matches reports whether a similarity score clears the configured threshold
func (m *Matcher) Matches(score float32) bool {
	return float64(score) >= m.cfg.MatchThreshold
}

func toFloat64Seq(seq [][]float32, dim int) ([][]float64, error) {
	if dim == 0 {
		return nil, fmt.Errorf("vectors must be non-empty")
	}

	out := make([][]float64, len(seq))
	for i, v := range seq {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimensionality %d, expected %d", i, len(v), dim)
		}
		out[i] = make([]float64, dim)
		for k, x := range v {
			out[i][k] = float64(x)
		}
	}
	return out, nil
}

// Frames slices a sample buffer into fixed-size frames advancing by hopSize.
// Trailing samples that do not fill a whole window are dropped. Each frame
// is a copy, so extraction may mutate frames without touching the buffer.
func Frames(samples []float32, windowSize, hopSize int) [][]float32 {
	if windowSize <= 0 || hopSize <= 0 || len(samples) < windowSize {
		return nil
	}

	var frames [][]float32
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		frame := make([]float32, windowSize)
		copy(frame, samples[start:start+windowSize])
		frames = append(frames, frame)
	}
	return frames
}

// Package-level convenience operations using the default configuration.

// ExtractMFCC extracts one cepstral vector using the default configuration
func ExtractMFCC(frame []float32) ([]float32, error) {
	m, err := New(nil)
	if err != nil {
		return nil, err
	}
	return m.ExtractMFCC(frame)
}

// ComputeDTW scores two sequences using the default configuration
func ComputeDTW(seq1, seq2 [][]float32) (float32, error) {
	m, err := New(nil)
	if err != nil {
		return 0, err
	}
	return m.ComputeDTW(seq1, seq2)
}
