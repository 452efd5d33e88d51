// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"sync"

	"waterfall/internal/dsp"
)

// UDP packet layout (big endian):
//
//	uint32  sequence number
//	float32 running peak
//	uint32  bucket count
//	float32 x count: intensities in [0,1]
const udpHeaderSize = 12

// UDPSink sends each row update as one binary UDP packet to a fixed target.
// The connection is dialed once; the packet buffer is reused across sends.
type UDPSink struct {
	mu     sync.Mutex
	conn   net.Conn
	packet *bytes.Buffer
}

// NewUDPSink dials the target address (e.g. "127.0.0.1:9090").
func NewUDPSink(target string) (*UDPSink, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %s: %w", target, err)
	}
	return &UDPSink{
		conn:   conn,
		packet: new(bytes.Buffer),
	}, nil
}

// Publish packs one row update and sends it. A row too large for a single
// datagram is truncated by the network stack; typical display widths fit
// comfortably.
func (s *UDPSink) Publish(update dsp.RowUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.packet.Reset()
	s.packet.Grow(udpHeaderSize + 4*len(update.Intensities))

	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(update.Seq))
	s.packet.Write(scratch[:])
	binary.BigEndian.PutUint32(scratch[:], math.Float32bits(float32(update.Peak)))
	s.packet.Write(scratch[:])
	binary.BigEndian.PutUint32(scratch[:], uint32(len(update.Intensities)))
	s.packet.Write(scratch[:])
	for _, v := range update.Intensities {
		binary.BigEndian.PutUint32(scratch[:], math.Float32bits(float32(v)))
		s.packet.Write(scratch[:])
	}

	if _, err := s.conn.Write(s.packet.Bytes()); err != nil {
		return fmt.Errorf("UDP send failed: %w", err)
	}
	return nil
}

// Close releases the connection.
func (s *UDPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

var _ dsp.RowSink = (*UDPSink)(nil)
