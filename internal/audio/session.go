// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"waterfall/internal/config"
	"waterfall/internal/dsp"
	applog "waterfall/internal/log"
)

// SessionState is the lifecycle state of a CaptureSession.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateStarting
	StateStreaming
	StateStopped
)

// String returns the display name of the state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateStreaming:
		return "Streaming"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// CaptureSession owns the hardware input stream and drives the pipeline
// from the capture callback. At most one stream is open per session.
//
// Lifecycle: Idle -> Starting -> Streaming -> Stopped, with Starting
// falling back to Idle when device or format negotiation fails. Stopping
// releases the stream before the session reports Stopped; the pipeline's
// buffers are deliberately NOT cleared, so the last frames stay on screen
// across a stop/start. Use Pipeline.Reset for a clean restart.
type CaptureSession struct {
	config   *config.Config
	pipeline *dsp.Pipeline

	state   atomic.Int32
	lastErr atomic.Value // string

	mu       sync.Mutex // guards stream lifecycle
	stream   *portaudio.Stream
	device   *portaudio.DeviceInfo
	channels int // negotiated channel count
	latency  time.Duration

	// Recording state (see recording.go).
	isRecording atomic.Int32
	recMu       sync.Mutex
	recorder    *wavRecorder
}

// NewCaptureSession creates a session in the Idle state. The pipeline must
// be sized for the same configuration.
func NewCaptureSession(cfg *config.Config, pipeline *dsp.Pipeline) *CaptureSession {
	s := &CaptureSession{
		config:   cfg,
		pipeline: pipeline,
	}
	s.lastErr.Store("")
	return s
}

// State returns the current lifecycle state.
func (s *CaptureSession) State() SessionState {
	return SessionState(s.state.Load())
}

// LastError returns the last reported error text, empty if none. Intended
// for status display alongside State.
func (s *CaptureSession) LastError() string {
	return s.lastErr.Load().(string)
}

// Pipeline returns the pipeline this session feeds.
func (s *CaptureSession) Pipeline() *dsp.Pipeline {
	return s.pipeline
}

// Channels returns the negotiated channel count, valid once Streaming.
func (s *CaptureSession) Channels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels
}

// SelectDevice records the input device to use on the next Start. Device
// changes while a stream is active are rejected; stop first.
func (s *CaptureSession) SelectDevice(deviceID int) error {
	switch s.State() {
	case StateStarting, StateStreaming:
		return fmt.Errorf("cannot change device while %s", s.State())
	}
	s.mu.Lock()
	s.config.Audio.InputDevice = deviceID
	s.mu.Unlock()
	return nil
}

func (s *CaptureSession) setState(state SessionState) {
	s.state.Store(int32(state))
}

func (s *CaptureSession) fail(state SessionState, err error) error {
	s.lastErr.Store(err.Error())
	s.setState(state)
	applog.Errorf("Session: %v", err)
	return err
}

// Start negotiates the device and format and opens the input stream.
// Configuration failures are non-fatal to the process: they are reported,
// and the session returns to Idle.
func (s *CaptureSession) Start() error {
	switch s.State() {
	case StateStarting, StateStreaming:
		return fmt.Errorf("session already active (%s)", s.State())
	}

	s.setState(StateStarting)
	s.lastErr.Store("")

	s.mu.Lock()
	defer s.mu.Unlock()

	device, err := InputDevice(s.config.Audio.InputDevice)
	if err != nil {
		return s.fail(StateIdle, fmt.Errorf("device negotiation failed: %w", err))
	}
	s.device = device

	if device.DefaultSampleRate != s.config.Audio.SampleRate {
		applog.Warnf("Session: device default sample rate is %.0f Hz, configured %.0f Hz",
			device.DefaultSampleRate, s.config.Audio.SampleRate)
	}

	channels := s.config.Audio.Channels
	if device.MaxInputChannels < channels {
		applog.Warnf("Session: device supports %d input channels, configured %d; using %d",
			device.MaxInputChannels, channels, device.MaxInputChannels)
		channels = device.MaxInputChannels
	}
	if channels < 1 {
		return s.fail(StateIdle, fmt.Errorf("device %q has no input channels", device.Name))
	}
	s.channels = channels

	if s.config.Audio.LowLatency {
		s.latency = device.DefaultLowInputLatency
	} else {
		s.latency = device.DefaultHighInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  s.latency,
		},
		SampleRate:      s.config.Audio.SampleRate,
		FramesPerBuffer: s.config.Audio.FramesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, s.processInputStream)
	if err != nil {
		return s.fail(StateIdle, fmt.Errorf("failed to open input stream: %w", err))
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return s.fail(StateIdle, fmt.Errorf("failed to start input stream: %w", err))
	}

	s.stream = stream
	s.setState(StateStreaming)
	applog.Infof("Session: streaming from %q (%d ch, %.0f Hz, %d frames/buffer)",
		device.Name, channels, s.config.Audio.SampleRate, s.config.Audio.FramesPerBuffer)
	return nil
}

// Stop stops and closes the input stream, releasing the hardware before the
// session reports Stopped. PortAudio's Stop waits for the in-flight callback
// to return, so no invocation is cut off mid-run. Idempotent.
func (s *CaptureSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			applog.Errorf("Session: error stopping stream: %v", err)
		}
		if err := s.stream.Close(); err != nil {
			applog.Errorf("Session: error closing stream: %v", err)
		}
		s.stream = nil
	}

	s.setState(StateStopped)
	return nil
}

// Close stops recording (if active) and the stream.
func (s *CaptureSession) Close() error {
	if err := s.StopRecording(); err != nil {
		applog.Errorf("Session: error stopping recording: %v", err)
	}
	return s.Stop()
}

// processInputStream is the capture callback, invoked by PortAudio on its
// own thread at a cadence outside our control.
// Performance critical:
// - Pre-allocated pipeline buffers only; steady state does not allocate
// - Must never panic past the callback boundary: the audio runtime owns
//   this call stack
func (s *CaptureSession) processInputStream(in []float32) {
	defer func() {
		if r := recover(); r != nil {
			applog.Errorf("Session: capture callback panic recovered: %v", r)
		}
	}()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s.pipeline.ProcessFrame(in, s.channels)

	if s.isRecording.Load() == 1 {
		s.writeRecording(in)
	}
}
