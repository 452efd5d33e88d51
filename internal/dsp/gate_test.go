// SPDX-License-Identifier: MIT
package dsp

import (
	"testing"
	"time"
)

// fakeClock advances only when told to, for deterministic gate tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestGate(interval time.Duration) (*RateGate, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	gate := NewRateGate(interval)
	gate.now = clock.now
	return gate, clock
}

func TestGateFirstCallAllows(t *testing.T) {
	gate, _ := newTestGate(160 * time.Millisecond)
	if !gate.Allow() {
		t.Error("first Allow() should pass")
	}
}

func TestGateBlocksInsideInterval(t *testing.T) {
	gate, clock := newTestGate(160 * time.Millisecond)

	gate.Allow()
	for range 5 {
		clock.advance(10 * time.Millisecond)
		if gate.Allow() {
			t.Fatal("Allow() passed inside the minimum interval")
		}
	}

	clock.advance(120 * time.Millisecond) // 170ms since last allowed
	if !gate.Allow() {
		t.Error("Allow() should pass after the interval elapses")
	}
}

func TestGateZeroIntervalAlwaysAllows(t *testing.T) {
	gate, _ := newTestGate(0)
	for range 3 {
		if !gate.Allow() {
			t.Fatal("zero-interval gate must always allow")
		}
	}
}

func TestGateReset(t *testing.T) {
	gate, _ := newTestGate(time.Hour)
	gate.Allow()
	if gate.Allow() {
		t.Fatal("second Allow() should block")
	}
	gate.Reset()
	if !gate.Allow() {
		t.Error("Allow() after Reset should pass")
	}
}
