// SPDX-License-Identifier: MIT
/*
Package transport publishes completed waterfall rows to external renderers.
Sinks implement dsp.RowSink; the pipeline invokes Publish outside its lock,
already rate limited by the row gate, so sinks do not throttle further.
*/
package transport

import (
	"waterfall/internal/dsp"
	applog "waterfall/internal/log"
)

// Multi fans one row update out to several sinks. A failing sink logs and
// does not stop delivery to the others.
type Multi []dsp.RowSink

// New combines the given sinks. Returns nil when none are configured, so
// the pipeline can skip publishing entirely.
func New(sinks ...dsp.RowSink) dsp.RowSink {
	active := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	default:
		return active
	}
}

// Publish delivers the update to every sink.
func (m Multi) Publish(update dsp.RowUpdate) error {
	for _, s := range m {
		if err := s.Publish(update); err != nil {
			applog.Warnf("Transport: sink publish failed: %v", err)
		}
	}
	return nil
}

// Close closes every sink, returning the first error encountered.
func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
