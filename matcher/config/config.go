package config

import "fmt"

// FeatureConfig fixes the parameters of feature extraction and comparison.
// Defaults reproduce the reference behavior: 48 kHz input, 40 mel filters,
// 13 cepstral coefficients, 0.95 pre-emphasis, Hamming windowing.
type FeatureConfig struct {
	// Feature extraction
	SampleRate      int     `json:"sample_rate"`
	NumMelFilters   int     `json:"num_mel_filters"`
	NumCoefficients int     `json:"num_coefficients"`
	PreEmphasis     float64 `json:"pre_emphasis"`

	// Frame segmentation (used by callers slicing capture buffers;
	// extraction itself takes one frame at a time)
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`

	// Matching
	MatchThreshold float64 `json:"match_threshold"` // Minimum DTW score counted as a match
	DTWBandRadius  int     `json:"dtw_band_radius"` // Sakoe-Chiba radius, 0 = unconstrained
}

// DefaultFeatureConfig returns the reference parameter set
func DefaultFeatureConfig() *FeatureConfig {
	return &FeatureConfig{
		SampleRate:      48000,
		NumMelFilters:   40,
		NumCoefficients: 13,
		PreEmphasis:     0.95,
		WindowSize:      2048,
		HopSize:         1024,
		MatchThreshold:  0.70,
		DTWBandRadius:   0,
	}
}

// Validate reports the first invalid parameter, if any
func (c *FeatureConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.NumMelFilters <= 0 {
		return fmt.Errorf("number of mel filters must be positive, got %d", c.NumMelFilters)
	}
	if c.NumCoefficients <= 0 {
		return fmt.Errorf("number of coefficients must be positive, got %d", c.NumCoefficients)
	}
	if c.NumCoefficients > c.NumMelFilters {
		return fmt.Errorf("number of coefficients (%d) cannot exceed number of mel filters (%d)",
			c.NumCoefficients, c.NumMelFilters)
	}
	if c.PreEmphasis <= 0 || c.PreEmphasis >= 1 {
		return fmt.Errorf("pre-emphasis coefficient must be in (0, 1), got %g", c.PreEmphasis)
	}
	if c.WindowSize < 2 {
		return fmt.Errorf("window size must be at least 2, got %d", c.WindowSize)
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("hop size must be positive, got %d", c.HopSize)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match threshold must be in [0, 1], got %g", c.MatchThreshold)
	}
	if c.DTWBandRadius < 0 {
		return fmt.Errorf("DTW band radius cannot be negative, got %d", c.DTWBandRadius)
	}
	return nil
}
