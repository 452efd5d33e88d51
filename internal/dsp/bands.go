// SPDX-License-Identifier: MIT
package dsp

// AggregateRow groups a row's buckets into columns columns by averaging
// intensity, for render surfaces narrower than the row (the terminal bar
// chart). Returns one mean intensity in [0,1] per column. A row narrower
// than the requested column count yields one column per bucket.
func AggregateRow(row ColorRow, columns int) []float64 {
	if len(row) == 0 || columns < 1 {
		return nil
	}
	if columns > len(row) {
		columns = len(row)
	}

	out := make([]float64, columns)
	for col := range columns {
		// Spread buckets evenly: column col covers [lo, hi).
		lo := col * len(row) / columns
		hi := (col + 1) * len(row) / columns
		if hi == lo {
			hi = lo + 1
		}

		var sum float64
		for i := lo; i < hi; i++ {
			sum += row[i].Intensity()
		}
		out[col] = sum / float64(hi-lo)
	}
	return out
}
