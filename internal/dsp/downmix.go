// SPDX-License-Identifier: MIT
package dsp

// Downmix converts an interleaved multi-channel frame to mono samples, one
// per frame slot, using the arithmetic mean of the channel group. Results
// are written into dst.
//
// The observed channel count is authoritative: callers pass whatever the
// device actually delivered, not what was configured. A trailing group
// shorter than channels is discarded, never buffered across calls; the
// number of discarded samples is returned so the caller can log it.
//
// Returns the number of mono samples written and the number of trailing
// samples dropped. dst must hold at least len(frame)/channels samples.
func Downmix(frame []float32, channels int, dst []float64) (n, dropped int) {
	if channels < 1 {
		return 0, len(frame)
	}
	n = len(frame) / channels
	dropped = len(frame) - n*channels

	if channels == 1 {
		for i := range n {
			dst[i] = float64(frame[i])
		}
		return n, dropped
	}

	inv := 1.0 / float64(channels)
	for i := range n {
		var sum float64
		base := i * channels
		for c := range channels {
			sum += float64(frame[base+c])
		}
		dst[i] = sum * inv
	}
	return n, dropped
}
