// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"waterfall/pkg/bitint"
)

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it searches default locations ("config.yaml"). If no file is
// found, built-in defaults are used. After loading, environment variable
// overrides are applied and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"config.yaml",
		}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment overrides apply AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// rawSpectralConfig mirrors SpectralConfig with the interval as text, so
// config files can use duration syntax ("200ms").
type rawSpectralConfig struct {
	FFTSize       int     `yaml:"fft_size"`
	MaxFrequency  float64 `yaml:"max_frequency"`
	MaxRows       int     `yaml:"max_rows"`
	RowInterval   string  `yaml:"row_interval"`
	Window        string  `yaml:"window"`
	Normalization string  `yaml:"normalization"`
	ColorScheme   string  `yaml:"color_scheme"`
}

// UnmarshalYAML decodes the spectral section, parsing row_interval with
// time.ParseDuration. Absent keys keep their current (default) values.
func (s *SpectralConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := rawSpectralConfig{
		FFTSize:       s.FFTSize,
		MaxFrequency:  s.MaxFrequency,
		MaxRows:       s.MaxRows,
		RowInterval:   s.RowInterval.String(),
		Window:        s.Window,
		Normalization: s.Normalization,
		ColorScheme:   s.ColorScheme,
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	interval, err := time.ParseDuration(raw.RowInterval)
	if err != nil {
		return fmt.Errorf("spectral.row_interval: %w", err)
	}
	*s = SpectralConfig{
		FFTSize:       raw.FFTSize,
		MaxFrequency:  raw.MaxFrequency,
		MaxRows:       raw.MaxRows,
		RowInterval:   interval,
		Window:        raw.Window,
		Normalization: raw.Normalization,
		ColorScheme:   raw.ColorScheme,
	}
	return nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside supported range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.Channels < 1 {
		return fmt.Errorf("audio.channels must be >= 1, got %d", c.Audio.Channels)
	}
	if c.Audio.FramesPerBuffer < 1 {
		return fmt.Errorf("audio.frames_per_buffer must be >= 1, got %d", c.Audio.FramesPerBuffer)
	}
	if c.Spectral.FFTSize != 0 {
		if !bitint.IsPowerOfTwo(c.Spectral.FFTSize) {
			return fmt.Errorf("spectral.fft_size must be a power of 2, got %d", c.Spectral.FFTSize)
		}
		if c.Spectral.FFTSize > MaxFFTSize {
			return fmt.Errorf("spectral.fft_size %d exceeds maximum %d", c.Spectral.FFTSize, MaxFFTSize)
		}
	}
	if c.Spectral.MaxRows < 1 {
		return fmt.Errorf("spectral.max_rows must be >= 1, got %d", c.Spectral.MaxRows)
	}
	if c.Spectral.RowInterval < 0 {
		return fmt.Errorf("spectral.row_interval must not be negative, got %s", c.Spectral.RowInterval)
	}
	switch c.Spectral.Window {
	case "", "none", "rect", "rectangular", "hann", "hanning", "hamming", "blackman", "nuttall":
	default:
		return fmt.Errorf("spectral.window %q is not a known window function", c.Spectral.Window)
	}
	switch c.Spectral.Normalization {
	case "linear", "log":
	default:
		return fmt.Errorf("spectral.normalization must be \"linear\" or \"log\", got %q", c.Spectral.Normalization)
	}
	switch c.Spectral.ColorScheme {
	case "diverging", "red":
	default:
		return fmt.Errorf("spectral.color_scheme must be \"diverging\" or \"red\", got %q", c.Spectral.ColorScheme)
	}
	return nil
}

func (cfg *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	// ENV_INPUT_DEVICE
	if val, ok := os.LookupEnv("ENV_INPUT_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Audio.InputDevice = iVal
		}
	}
	// ENV_SAMPLE_RATE
	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Audio.SampleRate = fVal
		}
	}
	// ENV_ROW_INTERVAL
	if val, ok := os.LookupEnv("ENV_ROW_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Spectral.RowInterval = dur
		}
	}
	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
}
