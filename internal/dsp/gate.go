// SPDX-License-Identifier: MIT
package dsp

import "time"

// RateGate enforces a minimum interval between visual row productions.
// Capture frames arrive far faster than the waterfall needs new rows;
// frames inside the gate still feed the ring buffer but skip the
// transform and color stages.
//
// The gate is explicit pipeline-owned state rather than a timestamp
// captured inside the stream callback, and is not internally synchronized;
// the owning Pipeline serializes access.
type RateGate struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time // injectable for tests
}

// NewRateGate creates a gate with the given minimum interval. A zero or
// negative interval always allows.
func NewRateGate(interval time.Duration) *RateGate {
	return &RateGate{
		interval: interval,
		now:      time.Now,
	}
}

// Allow reports whether enough time has passed since the last allowed call,
// and marks the current instant as the last allowed time if so. The first
// call always allows.
func (g *RateGate) Allow() bool {
	n := g.now()
	if !g.last.IsZero() && n.Sub(g.last) < g.interval {
		return false
	}
	g.last = n
	return true
}

// Reset clears the gate so the next Allow call passes immediately.
func (g *RateGate) Reset() {
	g.last = time.Time{}
}
