package spectral

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FFT provides an iterative radix-2 Cooley-Tukey transform.
// The transform runs in place over complex sequences; real frames go
// through PowerSpectrum, which handles zero-padding up to a power of two.
type FFT struct {
	// No state needed - stateless calculation
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Transform computes the discrete Fourier transform of x in place.
// The length of x must be a power of two; callers pad before calling.
// The inverse transform divides every element by len(x), so
// Transform(Transform(x, false), true) reproduces x within floating-point
// tolerance.
func (f *FFT) Transform(x []complex128, inverse bool) error {
	n := len(x)
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("transform length must be a power of two, got %d", n)
	}

	logN := 0
	for (1 << logN) < n {
		logN++
	}

	// Bit-reversal permutation
	for i := 0; i < n; i++ {
		rev := 0
		for j := 0; j < logN; j++ {
			if i&(1<<j) != 0 {
				rev |= 1 << (logN - 1 - j)
			}
		}
		if i < rev {
			x[i], x[rev] = x[rev], x[i]
		}
	}

	// Butterfly merges across power-of-two block sizes
	for length := 2; length <= n; length <<= 1 {
		ang := 2 * math.Pi / float64(length)
		if inverse {
			ang = -ang
		}
		wlen := cmplx.Rect(1, ang)

		for i := 0; i < n; i += length {
			w := complex(1, 0)
			for j := 0; j < length/2; j++ {
				u := x[i+j]
				v := x[i+j+length/2] * w
				x[i+j] = u + v
				x[i+j+length/2] = u - v
				w *= wlen
			}
		}
	}

	if inverse {
		scale := complex(1/float64(n), 0)
		for i := range x {
			x[i] *= scale
		}
	}

	return nil
}

// PowerSpectrum computes the Nyquist-folded power spectrum of a real frame.
// The frame is zero-padded to the next power of two, transformed, and the
// lower half-spectrum |X_k|^2/n for k = 0..n/2 is returned; the mirrored
// upper half is discarded.
func (f *FFT) PowerSpectrum(frame []float64) ([]float64, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	fftSize := NextPowerOfTwo(len(frame))

	buf := make([]complex128, fftSize)
	for i, s := range frame {
		buf[i] = complex(s, 0)
	}

	if err := f.Transform(buf, false); err != nil {
		return nil, err
	}

	power := make([]float64, fftSize/2+1)
	for k := range power {
		re := real(buf[k])
		im := imag(buf[k])
		power[k] = (re*re + im*im) / float64(fftSize)
	}

	return power, nil
}

// NextPowerOfTwo returns the smallest power of two >= n (and at least 1).
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
