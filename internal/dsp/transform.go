// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"waterfall/pkg/bitint"
)

// WindowFunc selects the window applied before the transform.
type WindowFunc int

const (
	// WindowNone is the rectangular window: samples pass through unchanged.
	// This is the default; selecting any other window changes bin-energy
	// characteristics and is surfaced in the startup log.
	WindowNone WindowFunc = iota
	WindowHann
	WindowHamming
	WindowBlackman
	WindowNuttall
)

// String returns the canonical name of the window function.
func (w WindowFunc) String() string {
	switch w {
	case WindowNone:
		return "none"
	case WindowHann:
		return "hann"
	case WindowHamming:
		return "hamming"
	case WindowBlackman:
		return "blackman"
	case WindowNuttall:
		return "nuttall"
	default:
		return "unknown"
	}
}

// ParseWindow converts a name (case-insensitive) to a WindowFunc.
func ParseWindow(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "", "none", "rect", "rectangular":
		return WindowNone, nil
	case "hann", "hanning":
		return WindowHann, nil
	case "hamming":
		return WindowHamming, nil
	case "blackman":
		return WindowBlackman, nil
	case "nuttall":
		return WindowNuttall, nil
	default:
		return WindowNone, fmt.Errorf("unknown window function name: %q", name)
	}
}

// SpectralTransform runs a forward real FFT of fixed length over a full
// sample window, producing the magnitude per frequency bin. The transform
// plan and all scratch storage are allocated once and reused across
// invocations; Compute is allocation-free.
type SpectralTransform struct {
	fftSize int
	fft     *fourier.FFT

	input     []float64    // windowed input samples
	coeffs    []complex128 // complex FFT output
	magnitude []float64    // |X_k| per bin
	window    []float64    // nil for the rectangular window
}

// NewSpectralTransform creates a transform of length fftSize (a power of 2)
// with the given window function.
func NewSpectralTransform(fftSize int, win WindowFunc) (*SpectralTransform, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}

	// Real input of length N yields N/2+1 complex coefficients.
	bins := fftSize/2 + 1

	t := &SpectralTransform{
		fftSize:   fftSize,
		fft:       fourier.NewFFT(fftSize),
		input:     make([]float64, fftSize),
		coeffs:    make([]complex128, bins),
		magnitude: make([]float64, bins),
	}

	if win != WindowNone {
		coeffs := make([]float64, fftSize)
		for i := range coeffs {
			coeffs[i] = 1.0
		}
		switch win {
		case WindowHann:
			window.Hann(coeffs)
		case WindowHamming:
			window.Hamming(coeffs)
		case WindowBlackman:
			window.Blackman(coeffs)
		case WindowNuttall:
			window.Nuttall(coeffs)
		}
		t.window = coeffs
	}

	return t, nil
}

// Size returns the transform length.
func (t *SpectralTransform) Size() int {
	return t.fftSize
}

// Bins returns the number of magnitude bins produced per transform
// (fftSize/2 + 1).
func (t *SpectralTransform) Bins() int {
	return len(t.magnitude)
}

// BinFrequency returns the center frequency in Hz of bin i at the given
// sample rate.
func (t *SpectralTransform) BinFrequency(i int, sampleRate float64) float64 {
	if i < 0 || i >= len(t.magnitude) {
		return 0
	}
	return float64(i) * sampleRate / float64(t.fftSize)
}

// Compute runs the forward transform over samples (which must hold exactly
// fftSize values, oldest first) and returns the magnitude spectrum. The
// returned slice is internal scratch, valid until the next Compute call.
func (t *SpectralTransform) Compute(samples []float64) []float64 {
	if t.window == nil {
		copy(t.input, samples)
	} else {
		for i := range t.input {
			t.input[i] = samples[i] * t.window[i]
		}
	}

	t.fft.Coefficients(t.coeffs, t.input)
	for i, c := range t.coeffs {
		t.magnitude[i] = cmplx.Abs(c)
	}
	return t.magnitude
}
