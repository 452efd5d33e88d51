// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"waterfall/internal/config"
	"waterfall/pkg/build"

	"github.com/spf13/cobra"
)

// ParseArgs loads the YAML configuration and layers command line flags on
// top of it. Only flags the user actually set override file values.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	flags := config.NewConfig()

	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time audio spectral waterfall",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.TUIMode = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			flags.Command = "list"
			flags.TUIMode = false
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file")

	// Audio device configuration
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.InputDevice, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.Channels, "channels", "c", config.DefaultChannels,
		"Number of channels to capture (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&flags.Audio.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&flags.Audio.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Audio.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Spectral pipeline configuration
	rootCmd.PersistentFlags().IntVar(&flags.Spectral.FFTSize, "fft-size", config.DefaultFFTSize,
		"FFT window length in samples, power of 2 (0 derives from sample rate)")
	rootCmd.PersistentFlags().Float64Var(&flags.Spectral.MaxFrequency, "max-frequency", config.DefaultMaxFrequency,
		"Upper bound of the displayed spectrum (Hz)")
	rootCmd.PersistentFlags().IntVar(&flags.Spectral.MaxRows, "max-rows", config.DefaultMaxRows,
		"Number of history rows retained by the waterfall")
	rootCmd.PersistentFlags().DurationVar(&flags.Spectral.RowInterval, "row-interval", config.DefaultRowInterval,
		"Minimum time between visual rows")
	rootCmd.PersistentFlags().StringVar(&flags.Spectral.Window, "window", config.DefaultWindow,
		"FFT window function (none, hann, hamming, blackman, nuttall)")
	rootCmd.PersistentFlags().StringVar(&flags.Spectral.Normalization, "normalization", config.DefaultNormalization,
		"Intensity normalization (linear, log)")
	rootCmd.PersistentFlags().StringVar(&flags.Spectral.ColorScheme, "colors", config.DefaultColorScheme,
		"Waterfall color scheme (diverging, red)")

	// Recording configuration
	rootCmd.PersistentFlags().BoolVarP(&flags.Recording.Enabled, "record", "r", false,
		"Record raw input audio alongside the visualization")
	rootCmd.PersistentFlags().StringVarP(&flags.Recording.OutputFile, "output", "o", "",
		"Output file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Transport configuration
	rootCmd.PersistentFlags().BoolVar(&flags.Transport.WebSocketEnabled, "ws", false,
		"Broadcast rows to WebSocket clients")
	rootCmd.PersistentFlags().StringVar(&flags.Transport.WebSocketPort, "ws-port", "8080",
		"WebSocket listen port")
	rootCmd.PersistentFlags().BoolVar(&flags.Transport.UDPEnabled, "udp", false,
		"Send rows as binary UDP packets")
	rootCmd.PersistentFlags().StringVar(&flags.Transport.UDPTargetAddress, "udp-target", "127.0.0.1:9090",
		"UDP target address for row packets")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	options, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	options.Command = flags.Command
	options.TUIMode = flags.TUIMode
	applyChangedFlags(rootCmd, options, flags)

	if verbose {
		options.LogLevel = "debug"
	}
	if options.Recording.Enabled && options.Recording.OutputFile == "" {
		options.Recording.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// applyChangedFlags copies flag values over the file configuration for
// every flag the user set explicitly.
func applyChangedFlags(cmd *cobra.Command, options, flags *config.Config) {
	set := func(name string, apply func()) {
		if cmd.PersistentFlags().Changed(name) {
			apply()
		}
	}

	set("device", func() { options.Audio.InputDevice = flags.Audio.InputDevice })
	set("channels", func() { options.Audio.Channels = flags.Audio.Channels })
	set("sample-rate", func() { options.Audio.SampleRate = flags.Audio.SampleRate })
	set("frames-per-buffer", func() { options.Audio.FramesPerBuffer = flags.Audio.FramesPerBuffer })
	set("low-latency", func() { options.Audio.LowLatency = flags.Audio.LowLatency })

	set("fft-size", func() { options.Spectral.FFTSize = flags.Spectral.FFTSize })
	set("max-frequency", func() { options.Spectral.MaxFrequency = flags.Spectral.MaxFrequency })
	set("max-rows", func() { options.Spectral.MaxRows = flags.Spectral.MaxRows })
	set("row-interval", func() { options.Spectral.RowInterval = flags.Spectral.RowInterval })
	set("window", func() { options.Spectral.Window = flags.Spectral.Window })
	set("normalization", func() { options.Spectral.Normalization = flags.Spectral.Normalization })
	set("colors", func() { options.Spectral.ColorScheme = flags.Spectral.ColorScheme })

	set("record", func() { options.Recording.Enabled = flags.Recording.Enabled })
	set("output", func() { options.Recording.OutputFile = flags.Recording.OutputFile })

	set("ws", func() { options.Transport.WebSocketEnabled = flags.Transport.WebSocketEnabled })
	set("ws-port", func() { options.Transport.WebSocketPort = flags.Transport.WebSocketPort })
	set("udp", func() { options.Transport.UDPEnabled = flags.Transport.UDPEnabled })
	set("udp-target", func() { options.Transport.UDPTargetAddress = flags.Transport.UDPTargetAddress })
}
