// Package testsignal generates deterministic audio test signals and provides
// small helpers for inspecting magnitude spectra in tests.
package testsignal

import "math"

// Sine returns size interleaved mono samples of a pure sinusoid at the given
// frequency, sampled at sampleRate, with amplitude 0.9.
func Sine(size int, sampleRate, frequency float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*frequency*t) * 0.9)
	}
	return buffer
}

// StereoSine returns size frames (2*size samples) with the sinusoid duplicated
// on both channels, so a mean downmix reproduces the mono signal exactly.
func StereoSine(size int, sampleRate, frequency float64) []float32 {
	mono := Sine(size, sampleRate, frequency)
	buffer := make([]float32, 2*size)
	for i, s := range mono {
		buffer[2*i] = s
		buffer[2*i+1] = s
	}
	return buffer
}

// Harmonics returns a 440Hz fundamental with two harmonics, useful for
// exercising multi-peak spectra.
func Harmonics(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude in
// magnitudes[startBin:endBin] (inclusive bounds, clamped to the slice).
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}
