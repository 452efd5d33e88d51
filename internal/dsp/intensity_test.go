// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestIntensityZeroPeakGuard(t *testing.T) {
	mapper := NewIntensityMapper(4, NormLinear, SchemeRed)

	// With an all-zero spectrum the peak stays 0; every intensity must be
	// exactly 0, never NaN or Inf.
	row := mapper.MapRow([]float64{0, 0, 0, 0})
	if mapper.Peak() != 0 {
		t.Errorf("peak = %v, want 0", mapper.Peak())
	}
	for i, c := range row {
		if c.R != 0 {
			t.Errorf("bin %d intensity = %v, want 0 with zero peak", i, c.Intensity())
		}
	}
}

func TestIntensityLinear(t *testing.T) {
	mapper := NewIntensityMapper(4, NormLinear, SchemeRed)

	row := mapper.MapRow([]float64{0, 2, 4, 1})
	if mapper.Peak() != 4 {
		t.Fatalf("peak = %v, want 4", mapper.Peak())
	}

	wantIntensity := []float64{0, 0.5, 1, 0.25}
	for i, c := range row {
		if math.Abs(c.Intensity()-wantIntensity[i]) > 0.01 {
			t.Errorf("bin %d intensity = %v, want %v", i, c.Intensity(), wantIntensity[i])
		}
	}
}

func TestIntensityLog(t *testing.T) {
	mapper := NewIntensityMapper(3, NormLog, SchemeRed)

	row := mapper.MapRow([]float64{0, 3, 9})
	// log10(0+1)/log10(10) = 0, log10(4)/log10(10), log10(10)/log10(10) = 1.
	want := []float64{0, math.Log10(4), 1}
	for i, c := range row {
		if math.Abs(c.Intensity()-want[i]) > 0.01 {
			t.Errorf("bin %d intensity = %v, want %v", i, c.Intensity(), want[i])
		}
	}
}

func TestRunningPeakMonotonic(t *testing.T) {
	mapper := NewIntensityMapper(2, NormLinear, SchemeRed)

	spectra := [][]float64{
		{1, 0},
		{5, 2},
		{3, 1}, // Lower than previous max: peak must not decrease
		{0, 0},
		{7, 0},
	}
	wantPeaks := []float64{1, 5, 5, 5, 7}

	for i, spectrum := range spectra {
		mapper.MapRow(spectrum)
		if mapper.Peak() != wantPeaks[i] {
			t.Errorf("after update %d: peak = %v, want %v", i, mapper.Peak(), wantPeaks[i])
		}
	}
}

func TestIntensityClamped(t *testing.T) {
	mapper := NewIntensityMapper(2, NormLinear, SchemeRed)

	// Establish peak, then map a spectrum whose displayed bins sit below
	// the overall max contributed by a truncated bin.
	mapper.MapRow([]float64{1, 10})
	row := mapper.MapRow([]float64{10, 1})
	if row[0].Intensity() > 1 || row[0].Intensity() < 0.99 {
		t.Errorf("bin at peak intensity = %v, want 1", row[0].Intensity())
	}
}

func TestRowTruncation(t *testing.T) {
	mapper := NewIntensityMapper(3, NormLinear, SchemeRed)

	// Display width is 3 but the peak update must scan the full spectrum,
	// including truncated bins.
	row := mapper.MapRow([]float64{1, 1, 1, 8})
	if len(row) != 3 {
		t.Fatalf("row width = %d, want 3", len(row))
	}
	if mapper.Peak() != 8 {
		t.Errorf("peak = %v, want 8 (from truncated bin)", mapper.Peak())
	}
}

func TestColorSchemes(t *testing.T) {
	tests := []struct {
		name      string
		scheme    ColorScheme
		intensity float64
		want      RGB
	}{
		{"Red at peak", SchemeRed, 1, RGB{R: 255}},
		{"Red at silence", SchemeRed, 0, RGB{}},
		{"Diverging at peak", SchemeDiverging, 1, RGB{R: 255, B: 0}},
		{"Diverging at silence", SchemeDiverging, 0, RGB{R: 0, B: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapper := NewIntensityMapper(1, NormLinear, tt.scheme)
			got := mapper.color(tt.intensity)
			if got != tt.want {
				t.Errorf("color(%v) = %+v, want %+v", tt.intensity, got, tt.want)
			}
		})
	}
}

func TestMapperReset(t *testing.T) {
	mapper := NewIntensityMapper(2, NormLinear, SchemeRed)
	mapper.MapRow([]float64{4, 2})
	if mapper.Peak() != 4 {
		t.Fatalf("peak = %v, want 4", mapper.Peak())
	}

	mapper.Reset()
	if mapper.Peak() != 0 {
		t.Errorf("peak after reset = %v, want 0", mapper.Peak())
	}
}

func TestParseNormalizationAndScheme(t *testing.T) {
	if n, err := ParseNormalization("log"); err != nil || n != NormLog {
		t.Errorf("ParseNormalization(log) = %v, %v", n, err)
	}
	if n, err := ParseNormalization(""); err != nil || n != NormLinear {
		t.Errorf("ParseNormalization() default = %v, %v", n, err)
	}
	if _, err := ParseNormalization("sqrt"); err == nil {
		t.Error("expected error for unknown normalization")
	}
	if s, err := ParseColorScheme("red"); err != nil || s != SchemeRed {
		t.Errorf("ParseColorScheme(red) = %v, %v", s, err)
	}
	if _, err := ParseColorScheme("green"); err == nil {
		t.Error("expected error for unknown color scheme")
	}
}
