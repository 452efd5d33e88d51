package config

import (
	"math"
	"time"

	"waterfall/pkg/bitint"
)

// Core configuration constants that define the boundaries and defaults
// for the capture and visualization pipeline.
const (
	// Default values for the audio capture configuration
	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultSampleRate      = 48000       // Matches the common device default
	DefaultChannels        = 2           // Stereo capture, downmixed to mono
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode

	// Default values for the spectral pipeline
	DefaultFFTSize       = 0      // 0 = derive from sample rate (see FFTSize)
	DefaultMaxFrequency  = 3000   // Upper bound of displayed spectrum (Hz)
	DefaultMaxRows       = 100    // Waterfall history depth
	DefaultWindow        = "none" // Rectangular window; a deliberate default
	DefaultNormalization = "linear"
	DefaultColorScheme   = "diverging"

	// DefaultRowInterval is the minimum time between visual rows. Frames
	// arriving inside the gate still feed the ring buffer.
	DefaultRowInterval = 160 * time.Millisecond

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents the system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxFFTSize    = 1 << 16
)

// fftSizeDivisor derives the FFT length from the sample rate when no
// explicit size is configured: sampleRate/6.25 gives ~6.25 rows of new
// samples per second at 48kHz, rounded up to a power of 2 for the FFT.
const fftSizeDivisor = 6.25

// Config holds all runtime configuration, loaded from YAML and/or
// command line flags layered on top.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // "debug", "info", "warn", "error"
	Audio     AudioConfig     `yaml:"audio"`
	Spectral  SpectralConfig  `yaml:"spectral"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`

	// Runtime-only options set by the CLI, never read from file.
	Command string `yaml:"-"` // One-off command ("list"), empty for normal run
	TUIMode bool   `yaml:"-"` // Run the terminal UI
}

// AudioConfig holds settings for the capture device and stream format.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default)
	SampleRate      float64 `yaml:"sample_rate"`       // Hz
	Channels        int     `yaml:"channels"`          // Expected interleaved channel count
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Frames delivered per capture callback
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device
}

// SpectralConfig holds settings for the FFT and intensity mapping stages.
type SpectralConfig struct {
	FFTSize       int           `yaml:"fft_size"`       // 0 derives from sample rate
	MaxFrequency  float64       `yaml:"max_frequency"`  // Display truncation bound (Hz)
	MaxRows       int           `yaml:"max_rows"`       // Waterfall history depth
	RowInterval   time.Duration `yaml:"row_interval"`   // Minimum time between rows
	Window        string        `yaml:"window"`         // "none", "hann", "hamming", ...
	Normalization string        `yaml:"normalization"`  // "linear" or "log"
	ColorScheme   string        `yaml:"color_scheme"`   // "diverging" or "red"
}

// RecordingConfig holds settings for optional raw-input WAV recording.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // Empty for auto-generated name
}

// TransportConfig holds settings for publishing rows to external renderers.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketPort    string `yaml:"websocket_port"`
	UDPEnabled       bool   `yaml:"udp_enabled"`
	UDPTargetAddress string `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090"
}

// NewConfig creates a Config with default values, the base before applying
// a config file or command line arguments.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			Channels:        DefaultChannels,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
		},
		Spectral: SpectralConfig{
			FFTSize:       DefaultFFTSize,
			MaxFrequency:  DefaultMaxFrequency,
			MaxRows:       DefaultMaxRows,
			RowInterval:   DefaultRowInterval,
			Window:        DefaultWindow,
			Normalization: DefaultNormalization,
			ColorScheme:   DefaultColorScheme,
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketPort:    "8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
		},
	}
}

// FFTSize resolves the effective FFT length: the configured value when set,
// otherwise derived from the sample rate and rounded up to a power of 2.
// At the default 48kHz this yields 8192.
func (c *Config) FFTSize() int {
	if c.Spectral.FFTSize > 0 {
		return c.Spectral.FFTSize
	}
	return bitint.NextPowerOfTwo(int(c.Audio.SampleRate / fftSizeDivisor))
}

// DisplayBins returns the number of frequency buckets shown per row:
// ceil(MaxFrequency/SampleRate*fftSize), at most the full positive
// spectrum (fftSize/2+1 bins).
func (c *Config) DisplayBins() int {
	fftSize := c.FFTSize()
	full := fftSize/2 + 1
	if c.Spectral.MaxFrequency <= 0 || c.Audio.SampleRate <= 0 {
		return full
	}
	bins := int(math.Ceil(c.Spectral.MaxFrequency / c.Audio.SampleRate * float64(fftSize)))
	if bins > full {
		bins = full
	}
	if bins < 1 {
		bins = 1
	}
	return bins
}
