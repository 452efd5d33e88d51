// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"waterfall/cmd"
	"waterfall/internal/audio"
	"waterfall/internal/config"
	"waterfall/internal/dsp"
	applog "waterfall/internal/log"
	"waterfall/internal/transport"
	"waterfall/internal/tui"
	"waterfall/pkg/build"
)

// main drives the capture-to-visualization pipeline in three phases:
//
// 1. Startup (cold path): build metadata, runtime settings, PortAudio
// initialization, configuration parsing, one-off commands.
//
// 2. Streaming (hot path): the capture session runs the PortAudio callback,
// which feeds the spectral pipeline; the TUI or configured transports
// consume the rows it produces.
//
// 3. Shutdown (cold path): stop the stream, finalize any recording, release
// PortAudio and transport resources.
func main() {
	if err := build.Initialize(); err != nil {
		// Development builds carry no ldflags. Run with placeholders.
		applog.Warnf("main: build metadata unavailable: %v", err)
	}

	// One thread for the audio callback, one for UI and I/O.
	runtime.GOMAXPROCS(2)

	options, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("main: %v", err)
	}

	if level, ok := applog.ParseLevel(options.LogLevel); ok {
		applog.SetLevel(level)
	}

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("main: failed to initialize PortAudio: %v", err)
	}
	defer audio.Terminate()

	if options.Command == "list" {
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("main: %v", err)
		}
		return
	}

	pipeline, sink, err := buildPipeline(options)
	if err != nil {
		applog.Fatalf("main: %v", err)
	}
	if sink != nil {
		defer sink.Close()
	}

	session := audio.NewCaptureSession(options, pipeline)
	defer session.Close()

	if options.TUIMode {
		if err := tui.StartWaterfallUI(session); err != nil {
			applog.Fatalf("main: TUI failed: %v", err)
		}
		shutdown(session, options)
		return
	}

	// Headless mode: start immediately and stream until interrupted.
	if err := session.Start(); err != nil {
		applog.Fatalf("main: failed to start capture: %v", err)
	}
	if options.Recording.Enabled {
		if err := session.StartRecording(options.Recording.OutputFile); err != nil {
			applog.Fatalf("main: failed to start recording: %v", err)
		}
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	shutdown(session, options)
}

// buildPipeline assembles the spectral pipeline and its optional row
// transports from the resolved configuration.
func buildPipeline(options *config.Config) (*dsp.Pipeline, dsp.RowSink, error) {
	window, err := dsp.ParseWindow(options.Spectral.Window)
	if err != nil {
		return nil, nil, err
	}
	norm, err := dsp.ParseNormalization(options.Spectral.Normalization)
	if err != nil {
		return nil, nil, err
	}
	scheme, err := dsp.ParseColorScheme(options.Spectral.ColorScheme)
	if err != nil {
		return nil, nil, err
	}

	var sinks []dsp.RowSink
	if options.Transport.WebSocketEnabled {
		sinks = append(sinks, transport.NewWebSocketSink(options.Transport.WebSocketPort))
	}
	if options.Transport.UDPEnabled {
		udpSink, err := transport.NewUDPSink(options.Transport.UDPTargetAddress)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, udpSink)
	}
	sink := transport.New(sinks...)

	pipeline, err := dsp.NewPipeline(dsp.PipelineOptions{
		FFTSize:     options.FFTSize(),
		Channels:    options.Audio.Channels,
		DisplayBins: options.DisplayBins(),
		MaxRows:     options.Spectral.MaxRows,
		RowInterval: options.Spectral.RowInterval,
		Window:      window,
		Norm:        norm,
		Scheme:      scheme,
		Sink:        sink,
	})
	if err != nil {
		return nil, nil, err
	}
	return pipeline, sink, nil
}

// shutdown stops streaming and finalizes the recording file if one is open.
func shutdown(session *audio.CaptureSession, options *config.Config) {
	if options.Recording.Enabled {
		if err := session.StopRecording(); err != nil {
			applog.Warnf("main: error stopping recording: %v", err)
		} else if options.Recording.OutputFile != "" {
			applog.Infof("main: recording saved to %s", options.Recording.OutputFile)
		}
	}
	if err := session.Stop(); err != nil {
		applog.Warnf("main: error stopping capture: %v", err)
	}
}
