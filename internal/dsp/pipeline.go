// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"sync"
	"time"

	applog "waterfall/internal/log"
)

// RowSink receives each completed visual row for delivery to an external
// renderer. Implementations must be safe for calls from the capture thread
// and should never block for long; the pipeline invokes Publish outside its
// lock, after the row is committed to history.
type RowSink interface {
	Publish(update RowUpdate) error
	Close() error
}

// RowUpdate is one completed waterfall row as published to sinks.
type RowUpdate struct {
	Seq         uint64    `json:"seq"`
	Peak        float64   `json:"peak"`
	Intensities []float64 `json:"intensities"`
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	FFTSize     int           // Transform length, power of 2
	Channels    int           // Configured channel count (mismatches are warned, not enforced)
	DisplayBins int           // Buckets per row; 0 for the full spectrum
	MaxRows     int           // History depth
	RowInterval time.Duration // Minimum time between rows
	Window      WindowFunc
	Norm        Normalization
	Scheme      ColorScheme
	Sink        RowSink // Optional row fan-out
}

// Pipeline owns the shared mutable state between the capture thread and the
// render thread: the sample ring buffer, the running peak, and the row
// history, all guarded by one mutex. The capture side holds the lock for a
// single downmix+push+transform+map+push_row sequence; render-side readers
// hold it only to copy the latest snapshot.
type Pipeline struct {
	mu        sync.Mutex
	ring      *SampleRingBuffer
	transform *SpectralTransform
	mapper    *IntensityMapper
	history   *VisualizationHistory
	gate      *RateGate

	mono  []float64 // downmix scratch, grown on demand, reused after
	fftIn []float64 // ring snapshot scratch

	channels        int // configured, for mismatch warnings only
	chanWarned      bool
	remainderWarned bool

	seq  uint64
	sink RowSink
}

// NewPipeline builds the full capture-to-waterfall pipeline.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	transform, err := NewSpectralTransform(opts.FFTSize, opts.Window)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if opts.MaxRows < 1 {
		return nil, fmt.Errorf("pipeline: max rows must be >= 1, got %d", opts.MaxRows)
	}

	bins := opts.DisplayBins
	if bins <= 0 || bins > transform.Bins() {
		bins = transform.Bins()
	}

	if opts.Window != WindowNone {
		applog.Infof("Pipeline: %s window selected; bin energies differ from the rectangular default", opts.Window)
	}

	return &Pipeline{
		ring:      NewSampleRingBuffer(opts.FFTSize),
		transform: transform,
		mapper:    NewIntensityMapper(bins, opts.Norm, opts.Scheme),
		history:   NewVisualizationHistory(opts.MaxRows),
		gate:      NewRateGate(opts.RowInterval),
		fftIn:     make([]float64, opts.FFTSize),
		channels:  opts.Channels,
		sink:      opts.Sink,
	}, nil
}

// ProcessFrame runs one capture callback's worth of work: downmix the
// interleaved frame using the observed channel count, feed every mono sample
// to the ring buffer, and, when the ring is full and the rate gate allows,
// produce one visual row. Every anomaly on this path degrades to a logged
// warning; nothing here may fail destructively.
func (p *Pipeline) ProcessFrame(frame []float32, channels int) {
	if channels < 1 {
		applog.Warnf("Pipeline: dropping frame with invalid channel count %d", channels)
		return
	}
	if channels != p.channels && !p.chanWarned {
		applog.Warnf("Pipeline: device delivers %d channels, configured for %d; using %d",
			channels, p.channels, channels)
		p.chanWarned = true
	}

	// Grow the downmix scratch once; steady state reuses it.
	slots := len(frame) / channels
	if slots > len(p.mono) {
		p.mono = make([]float64, slots)
	}

	n, dropped := Downmix(frame, channels, p.mono)
	if dropped > 0 && !p.remainderWarned {
		applog.Warnf("Pipeline: frame length %d not a multiple of %d channels; %d trailing samples discarded",
			len(frame), channels, dropped)
		p.remainderWarned = true
	}
	if n == 0 {
		return
	}

	var update RowUpdate
	haveRow := false

	p.mu.Lock()
	for _, s := range p.mono[:n] {
		p.ring.Push(s)
	}

	// Transform only on a full window, and only when the gate allows.
	// Gated-out frames still landed in the ring above: no sample loss.
	if p.ring.IsFull() && p.gate.Allow() {
		p.ring.CopyInto(p.fftIn)
		spectrum := p.transform.Compute(p.fftIn)
		row := p.mapper.MapRow(spectrum)
		p.history.PushRow(row)
		p.seq++

		if p.sink != nil {
			update = RowUpdate{
				Seq:         p.seq,
				Peak:        p.mapper.Peak(),
				Intensities: rowIntensities(row),
			}
			haveRow = true
		}
	}
	p.mu.Unlock()

	// Publish outside the lock; the row is already committed.
	if haveRow {
		if err := p.sink.Publish(update); err != nil {
			applog.Warnf("Pipeline: row publish failed: %v", err)
		}
	}
}

// Rows returns a copy of the current row history, oldest first.
func (p *Pipeline) Rows() []ColorRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Rows()
}

// Latest returns the most recent row, or nil before the first transform.
func (p *Pipeline) Latest() ColorRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Latest()
}

// RowCount returns the number of rows currently held.
func (p *Pipeline) RowCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Len()
}

// Peak returns the running normalization peak.
func (p *Pipeline) Peak() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mapper.Peak()
}

// RowWidth returns the number of buckets per row.
func (p *Pipeline) RowWidth() int {
	return p.mapper.Bins()
}

// Reset clears the ring buffer, running peak, row history, and rate gate.
// Never called implicitly: stopping a session keeps the last frames on
// screen, and the caller decides when a clean restart is wanted.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ring.Reset()
	p.mapper.Reset()
	p.history.Reset()
	p.gate.Reset()
	p.seq = 0
}

func rowIntensities(row ColorRow) []float64 {
	out := make([]float64, len(row))
	for i, c := range row {
		out[i] = c.Intensity()
	}
	return out
}
