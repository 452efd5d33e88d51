// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const recordingBitDepth = 16

// wavRecorder encodes raw interleaved capture frames to a WAV file.
// The sample buffer is pre-allocated so the per-callback write converts
// in place without allocating.
type wavRecorder struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *goaudio.IntBuffer
}

// StartRecording begins writing the raw input stream to filename.
func (s *CaptureSession) StartRecording(filename string) error {
	if s.isRecording.Load() == 1 {
		return fmt.Errorf("already recording")
	}

	channels := s.config.Audio.Channels
	if negotiated := s.Channels(); negotiated > 0 {
		channels = negotiated
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create recording file: %w", err)
	}

	encoder := wav.NewEncoder(file, int(s.config.Audio.SampleRate),
		recordingBitDepth, channels, 1)

	s.recMu.Lock()
	s.recorder = &wavRecorder{
		file:    file,
		encoder: encoder,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: channels,
				SampleRate:  int(s.config.Audio.SampleRate),
			},
			SourceBitDepth: recordingBitDepth,
			Data:           make([]int, s.config.Audio.FramesPerBuffer*channels),
		},
	}
	s.recMu.Unlock()

	s.isRecording.Store(1)
	return nil
}

// StopRecording finalizes the WAV file. No-op when not recording.
func (s *CaptureSession) StopRecording() error {
	if s.isRecording.Load() == 0 {
		return nil
	}
	s.isRecording.Store(0)

	s.recMu.Lock()
	defer s.recMu.Unlock()

	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize recording: %w", err)
	}
	if err := s.recorder.file.Close(); err != nil {
		return fmt.Errorf("failed to close recording file: %w", err)
	}
	s.recorder = nil
	return nil
}

// writeRecording converts one callback's float32 frames to 16-bit PCM and
// appends them to the encoder. Called from the capture callback.
func (s *CaptureSession) writeRecording(in []float32) {
	s.recMu.Lock()
	defer s.recMu.Unlock()

	rec := s.recorder
	if rec == nil {
		return
	}

	if len(in) > cap(rec.buf.Data) {
		rec.buf.Data = make([]int, len(in))
	}
	rec.buf.Data = rec.buf.Data[:len(in)]
	for i, sample := range in {
		// Clamp before scaling: devices can over-report amplitude.
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		rec.buf.Data[i] = int(sample * 32767)
	}

	if err := rec.encoder.Write(rec.buf); err != nil {
		// A write failure must not escape the capture callback.
		s.lastErr.Store(fmt.Sprintf("recording write failed: %v", err))
	}
}
