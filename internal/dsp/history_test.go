// SPDX-License-Identifier: MIT
package dsp

import "testing"

func rowOf(value uint8, width int) ColorRow {
	row := make(ColorRow, width)
	for i := range row {
		row[i] = RGB{R: value}
	}
	return row
}

func TestHistoryBoundedEviction(t *testing.T) {
	const maxRows = 5
	history := NewVisualizationHistory(maxRows)

	for i := range 12 {
		history.PushRow(rowOf(uint8(i), 4))
		if history.Len() > maxRows {
			t.Fatalf("length %d exceeds max %d after push %d", history.Len(), maxRows, i)
		}
	}

	rows := history.Rows()
	if len(rows) != maxRows {
		t.Fatalf("Rows() returned %d rows, want %d", len(rows), maxRows)
	}
	// Oldest evicted first: rows 7..11 remain, oldest first.
	for i, row := range rows {
		if row[0].R != uint8(7+i) {
			t.Errorf("row %d has marker %d, want %d", i, row[0].R, 7+i)
		}
	}
}

func TestHistoryLatest(t *testing.T) {
	history := NewVisualizationHistory(3)

	if history.Latest() != nil {
		t.Error("Latest() on empty history should be nil")
	}

	history.PushRow(rowOf(1, 2))
	history.PushRow(rowOf(2, 2))
	if got := history.Latest(); got[0].R != 2 {
		t.Errorf("Latest() marker = %d, want 2", got[0].R)
	}
}

func TestHistoryRowsIsCopy(t *testing.T) {
	history := NewVisualizationHistory(3)
	history.PushRow(rowOf(1, 2))

	rows := history.Rows()
	history.PushRow(rowOf(2, 2))
	history.PushRow(rowOf(3, 2))
	history.PushRow(rowOf(4, 2))

	// The earlier snapshot must be unaffected by later pushes/evictions.
	if len(rows) != 1 || rows[0][0].R != 1 {
		t.Error("Rows() snapshot was mutated by later pushes")
	}
}

func TestHistoryReset(t *testing.T) {
	history := NewVisualizationHistory(3)
	history.PushRow(rowOf(1, 2))
	history.Reset()

	if history.Len() != 0 || history.Latest() != nil {
		t.Error("Reset did not clear history")
	}
}

func TestAggregateRow(t *testing.T) {
	// 4 buckets into 2 columns: means of pairs.
	row := ColorRow{{R: 255}, {R: 0}, {R: 255}, {R: 255}}

	cols := AggregateRow(row, 2)
	if len(cols) != 2 {
		t.Fatalf("columns = %d, want 2", len(cols))
	}
	if cols[0] < 0.49 || cols[0] > 0.51 {
		t.Errorf("column 0 = %v, want 0.5", cols[0])
	}
	if cols[1] < 0.99 {
		t.Errorf("column 1 = %v, want 1", cols[1])
	}
}

func TestAggregateRowEdgeCases(t *testing.T) {
	if AggregateRow(nil, 4) != nil {
		t.Error("empty row should aggregate to nil")
	}
	if AggregateRow(rowOf(255, 4), 0) != nil {
		t.Error("zero columns should aggregate to nil")
	}
	// More columns than buckets clamps to one column per bucket.
	if got := AggregateRow(rowOf(255, 2), 10); len(got) != 2 {
		t.Errorf("clamped columns = %d, want 2", len(got))
	}
}
