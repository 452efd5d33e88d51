// SPDX-License-Identifier: MIT
package dsp

// VisualizationHistory is a bounded FIFO of color rows: the scrolling
// waterfall state. It uses the same oldest-first eviction discipline as
// SampleRingBuffer, at row granularity. Not internally synchronized; the
// owning Pipeline serializes access.
type VisualizationHistory struct {
	rows    []ColorRow
	maxRows int
}

// NewVisualizationHistory creates a history bounded to maxRows rows.
func NewVisualizationHistory(maxRows int) *VisualizationHistory {
	return &VisualizationHistory{
		rows:    make([]ColorRow, 0, maxRows),
		maxRows: maxRows,
	}
}

// PushRow appends one row, evicting from the front until the bound holds.
func (h *VisualizationHistory) PushRow(row ColorRow) {
	h.rows = append(h.rows, row)
	if excess := len(h.rows) - h.maxRows; excess > 0 {
		h.rows = append(h.rows[:0], h.rows[excess:]...)
	}
}

// Len returns the number of rows currently held.
func (h *VisualizationHistory) Len() int {
	return len(h.rows)
}

// MaxRows returns the history depth bound.
func (h *VisualizationHistory) MaxRows() int {
	return h.maxRows
}

// Latest returns the most recent row, or nil when empty. Rows are immutable
// once pushed, so the reference is safe to hand out.
func (h *VisualizationHistory) Latest() ColorRow {
	if len(h.rows) == 0 {
		return nil
	}
	return h.rows[len(h.rows)-1]
}

// Rows returns a copy of the row sequence, oldest first. The row contents
// are shared (immutable); only the slice header is copied.
func (h *VisualizationHistory) Rows() []ColorRow {
	out := make([]ColorRow, len(h.rows))
	copy(out, h.rows)
	return out
}

// Reset discards all rows.
func (h *VisualizationHistory) Reset() {
	h.rows = h.rows[:0]
}
