// SPDX-License-Identifier: MIT
/*
Package dsp implements the capture-to-waterfall pipeline: a fixed-capacity
sample ring buffer fed by downmixed capture frames, a pre-planned spectral
transform, peak-normalized intensity mapping, and a bounded row history read
by the render side.

Thread Safety:
- Individual components are not locked; Pipeline owns the single mutex
  guarding all shared state (see pipeline.go).
- Pre-allocated buffers keep the capture hot path allocation-free.
*/
package dsp

// SampleRingBuffer is a fixed-capacity FIFO of mono samples. Once full,
// each push overwrites the oldest sample. Length never exceeds capacity.
//
// The buffer is not internally synchronized; the owning Pipeline serializes
// access.
type SampleRingBuffer struct {
	buf  []float64
	head int // index of the next write
	size int // number of valid samples
}

// NewSampleRingBuffer creates a ring buffer holding capacity samples.
func NewSampleRingBuffer(capacity int) *SampleRingBuffer {
	return &SampleRingBuffer{
		buf: make([]float64, capacity),
	}
}

// Push appends one sample, evicting the oldest when at capacity.
// Allocation-free.
func (r *SampleRingBuffer) Push(sample float64) {
	r.buf[r.head] = sample
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
	if r.size < len(r.buf) {
		r.size++
	}
}

// Len returns the number of samples currently held.
func (r *SampleRingBuffer) Len() int {
	return r.size
}

// Cap returns the fixed logical capacity.
func (r *SampleRingBuffer) Cap() int {
	return len(r.buf)
}

// IsFull reports whether the buffer holds exactly its capacity of samples.
func (r *SampleRingBuffer) IsFull() bool {
	return r.size == len(r.buf)
}

// CopyInto writes the current contents into dst in arrival (FIFO) order
// without mutating the buffer, and returns the number of samples written.
// dst must hold at least Len() samples.
func (r *SampleRingBuffer) CopyInto(dst []float64) int {
	// Oldest sample sits at (head - size + cap) % cap.
	start := r.head - r.size
	if start < 0 {
		start += len(r.buf)
	}
	n := copy(dst, r.buf[start:min(start+r.size, len(r.buf))])
	if n < r.size {
		n += copy(dst[n:], r.buf[:r.size-n])
	}
	return n
}

// Reset discards all samples. The backing store is retained.
func (r *SampleRingBuffer) Reset() {
	r.head = 0
	r.size = 0
}
