// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/binary"
	"errors"
	"math"
	"net"
	"testing"
	"time"

	"waterfall/internal/dsp"
)

type mockSink struct {
	published []dsp.RowUpdate
	pubErr    error
	closed    bool
	closeErr  error
}

func (m *mockSink) Publish(update dsp.RowUpdate) error {
	m.published = append(m.published, update)
	return m.pubErr
}

func (m *mockSink) Close() error {
	m.closed = true
	return m.closeErr
}

func TestNewReturnsNilWithoutSinks(t *testing.T) {
	if sink := New(); sink != nil {
		t.Errorf("New() = %v, want nil", sink)
	}
}

func TestNewSingleSinkPassthrough(t *testing.T) {
	m := &mockSink{}
	sink := New(m)
	if sink != m {
		t.Errorf("New(m) = %v, want the sink itself", sink)
	}
}

func TestMultiFanOut(t *testing.T) {
	a := &mockSink{}
	b := &mockSink{}
	sink := New(a, b)

	update := dsp.RowUpdate{Seq: 7, Peak: 1.5, Intensities: []float64{0.25, 0.5}}
	if err := sink.Publish(update); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	for i, m := range []*mockSink{a, b} {
		if len(m.published) != 1 {
			t.Fatalf("sink %d received %d updates, want 1", i, len(m.published))
		}
		if m.published[0].Seq != 7 {
			t.Errorf("sink %d Seq = %d, want 7", i, m.published[0].Seq)
		}
	}
}

func TestMultiPublishContinuesAfterError(t *testing.T) {
	a := &mockSink{pubErr: errors.New("boom")}
	b := &mockSink{}
	sink := New(a, b)

	if err := sink.Publish(dsp.RowUpdate{Seq: 1}); err != nil {
		t.Fatalf("Publish() error: %v (failures should be logged, not returned)", err)
	}
	if len(b.published) != 1 {
		t.Errorf("second sink received %d updates, want 1", len(b.published))
	}
}

func TestMultiCloseReturnsFirstError(t *testing.T) {
	wantErr := errors.New("close failed")
	a := &mockSink{closeErr: wantErr}
	b := &mockSink{}
	sink := New(a, b)

	if err := sink.Close(); !errors.Is(err, wantErr) {
		t.Errorf("Close() error = %v, want %v", err, wantErr)
	}
	if !a.closed || !b.closed {
		t.Error("Close() must reach every sink")
	}
}

func TestUDPSinkPacketLayout(t *testing.T) {
	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to open UDP listener: %v", err)
	}
	defer listener.Close()

	sink, err := NewUDPSink(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSink() error: %v", err)
	}
	defer sink.Close()

	update := dsp.RowUpdate{
		Seq:         42,
		Peak:        2.5,
		Intensities: []float64{0.0, 0.5, 1.0},
	}
	if err := sink.Publish(update); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	buf := make([]byte, 65535)
	listener.SetReadDeadline(time.Now().Add(time.Second))
	n, _, err := listener.ReadFrom(buf)
	if err != nil {
		t.Fatalf("failed to read UDP packet: %v", err)
	}

	wantSize := udpHeaderSize + 4*len(update.Intensities)
	if n != wantSize {
		t.Fatalf("packet size = %d, want %d", n, wantSize)
	}
	if seq := binary.BigEndian.Uint32(buf[0:4]); seq != 42 {
		t.Errorf("seq = %d, want 42", seq)
	}
	if peak := math.Float32frombits(binary.BigEndian.Uint32(buf[4:8])); peak != 2.5 {
		t.Errorf("peak = %v, want 2.5", peak)
	}
	if count := binary.BigEndian.Uint32(buf[8:12]); count != 3 {
		t.Errorf("bucket count = %d, want 3", count)
	}
	for i, want := range []float32{0.0, 0.5, 1.0} {
		off := udpHeaderSize + 4*i
		got := math.Float32frombits(binary.BigEndian.Uint32(buf[off : off+4]))
		if got != want {
			t.Errorf("intensity[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestUDPSinkBadTarget(t *testing.T) {
	if _, err := NewUDPSink("not-an-address"); err == nil {
		t.Error("NewUDPSink() with bad target should fail")
	}
}
