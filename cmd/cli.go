// SPDX-License-Identifier: MIT
// Package cmd parses command line arguments into the pipeline
// configuration. Flags explicitly set on the command line override both
// the YAML file and environment values.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Pierrekw/voiceinput/internal/config"
	"github.com/Pierrekw/voiceinput/pkg/build"
)

// ParseArgs builds the configuration from the YAML file, environment
// overrides, and command line flags, in that order of precedence. A nil
// config with a nil error means a help or completion request already
// handled output.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	var (
		configPath string
		cfg        *config.Config
	)
	var flags struct {
		device       int
		sampleRate   int
		chunkSize    int
		timeout      int
		queueSize    int
		modelPath    string
		serverURL    string
		backpressure string
		testMode     bool
		verbose      bool
		record       bool
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time audio capture and transcription pipeline",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to YAML configuration file")

	// Audio device configuration
	pf.IntVarP(&flags.device, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	pf.IntVarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&flags.chunkSize, "chunk-size", "b", config.DefaultChunkSize,
		"Samples per captured chunk (affects latency)")

	// Recognition configuration
	pf.StringVarP(&flags.modelPath, "model", "m", "",
		"Decoder model path or identifier")
	pf.StringVarP(&flags.serverURL, "server", "u", "",
		"WebSocket recognition server URL")
	pf.IntVarP(&flags.timeout, "timeout", "t", config.DefaultTimeoutSeconds,
		"Session timeout in seconds (0 disables auto-stop)")
	pf.IntVar(&flags.queueSize, "queue-size", config.DefaultQueueSize,
		"Bounded audio channel capacity in chunks")
	pf.StringVar(&flags.backpressure, "backpressure", config.BackpressureDrop,
		"Policy on a full audio channel: drop or block")

	// Mode configuration
	pf.BoolVar(&flags.testMode, "test-mode", false,
		"Bypass real device and model I/O for deterministic runs")
	pf.BoolVarP(&flags.record, "record", "r", false,
		"Record the captured session to a WAV file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false,
		"Show verbose output")

	// apply loads the layered configuration and folds in any flag the
	// user set explicitly.
	apply := func() error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if pf.Changed("device") {
			loaded.Audio.InputDevice = flags.device
		}
		if pf.Changed("sample-rate") {
			loaded.Audio.SampleRate = flags.sampleRate
		}
		if pf.Changed("chunk-size") {
			loaded.Audio.ChunkSize = flags.chunkSize
		}
		if pf.Changed("model") {
			loaded.Recognition.ModelPath = flags.modelPath
		}
		if pf.Changed("server") {
			loaded.Recognition.ServerURL = flags.serverURL
		}
		if pf.Changed("timeout") {
			loaded.Recognition.TimeoutSeconds = flags.timeout
		}
		if pf.Changed("queue-size") {
			loaded.Recognition.QueueSize = flags.queueSize
		}
		if pf.Changed("backpressure") {
			loaded.Recognition.Backpressure = flags.backpressure
		}
		if pf.Changed("test-mode") {
			loaded.TestMode = flags.testMode
		}
		if pf.Changed("record") {
			loaded.Recording.Enabled = flags.record
		}
		if flags.verbose {
			loaded.Debug = true
			loaded.LogLevel = "debug"
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return nil
	}

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return apply()
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apply(); err != nil {
				return err
			}
			cfg.Command = "list"
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return cfg, nil
}
