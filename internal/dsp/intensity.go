// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"strings"
)

// RGB is one intensity-mapped color value.
type RGB struct {
	R, G, B uint8
}

// ColorRow is one time-slice of mapped colors across the displayed
// frequency buckets. Rows are immutable once produced.
type ColorRow []RGB

// Intensity recovers the normalized intensity in [0,1] from a mapped color.
// Both schemes encode intensity on the red channel, so this holds for any
// row the mapper produces.
func (c RGB) Intensity() float64 {
	return float64(c.R) / 255.0
}

// Normalization selects how magnitudes are scaled against the running peak.
type Normalization int

const (
	// NormLinear is intensity = magnitude / peak. The pinned default.
	NormLinear Normalization = iota
	// NormLog is intensity = log10(magnitude+1) / log10(peak+1).
	NormLog
)

// ParseNormalization converts a name (case-insensitive) to a Normalization.
func ParseNormalization(name string) (Normalization, error) {
	switch strings.ToLower(name) {
	case "", "linear":
		return NormLinear, nil
	case "log", "logarithmic":
		return NormLog, nil
	default:
		return NormLinear, fmt.Errorf("unknown normalization policy: %q", name)
	}
}

// ColorScheme selects the intensity-to-color encoding.
type ColorScheme int

const (
	// SchemeDiverging is rgb(255i, 0, 255(1-i)): blue at silence fading
	// to red at peak. The default waterfall palette.
	SchemeDiverging ColorScheme = iota
	// SchemeRed is rgb(255i, 0, 0).
	SchemeRed
)

// ParseColorScheme converts a name (case-insensitive) to a ColorScheme.
func ParseColorScheme(name string) (ColorScheme, error) {
	switch strings.ToLower(name) {
	case "", "diverging", "redblue":
		return SchemeDiverging, nil
	case "red":
		return SchemeRed, nil
	default:
		return SchemeDiverging, fmt.Errorf("unknown color scheme: %q", name)
	}
}

// IntensityMapper normalizes magnitude spectra against a running peak and
// maps them to color rows. The peak is monotonically non-decreasing for the
// lifetime of a session; only an explicit Reset clears it.
type IntensityMapper struct {
	norm   Normalization
	scheme ColorScheme
	bins   int // displayed buckets per row
	peak   float64
}

// NewIntensityMapper creates a mapper producing rows of bins buckets.
func NewIntensityMapper(bins int, norm Normalization, scheme ColorScheme) *IntensityMapper {
	return &IntensityMapper{
		norm:   norm,
		scheme: scheme,
		bins:   bins,
	}
}

// Peak returns the largest magnitude observed since creation or Reset.
func (m *IntensityMapper) Peak() float64 {
	return m.peak
}

// Bins returns the number of buckets per produced row.
func (m *IntensityMapper) Bins() int {
	return m.bins
}

// Reset clears the running peak. Deliberately separate from row production:
// the peak survives stream stop/start unless the caller decides otherwise.
func (m *IntensityMapper) Reset() {
	m.peak = 0
}

// MapRow updates the running peak from the full spectrum, then maps the
// first Bins() buckets to a freshly allocated ColorRow. The row is complete
// before it is returned, so callers can hand it to readers without further
// synchronization.
func (m *IntensityMapper) MapRow(spectrum []float64) ColorRow {
	for _, mag := range spectrum {
		if mag > m.peak {
			m.peak = mag
		}
	}

	bins := m.bins
	if bins > len(spectrum) {
		bins = len(spectrum)
	}

	row := make(ColorRow, bins)
	for i := range bins {
		row[i] = m.color(m.intensity(spectrum[i]))
	}
	return row
}

// intensity normalizes one magnitude to [0,1]. A zero peak means no signal
// has been observed yet; the guard returns 0 rather than dividing by zero.
func (m *IntensityMapper) intensity(magnitude float64) float64 {
	if m.peak == 0 {
		return 0
	}

	var v float64
	switch m.norm {
	case NormLog:
		v = math.Log10(magnitude+1) / math.Log10(m.peak+1)
	default:
		v = magnitude / m.peak
	}

	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (m *IntensityMapper) color(intensity float64) RGB {
	r := uint8(intensity * 255)
	switch m.scheme {
	case SchemeRed:
		return RGB{R: r}
	default:
		return RGB{R: r, B: uint8((1 - intensity) * 255)}
	}
}
