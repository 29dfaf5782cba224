// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file specified by path. If path
// is empty, it searches default locations ("voiceinput.yaml", "config.yaml").
// If no file is found, built-in defaults are used. After loading, environment
// variable overrides are applied and the final configuration is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"voiceinput.yaml",
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
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

	// Environment overrides win over file values.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values that would break the pipeline
// at runtime rather than failing fast here.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %d out of range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.ChunkSize <= 0 || c.Audio.ChunkSize > MaxChunkSize {
		return fmt.Errorf("audio.chunk_size %d out of range (0, %d]", c.Audio.ChunkSize, MaxChunkSize)
	}
	if c.Audio.Channels != 1 {
		return fmt.Errorf("audio.channels must be 1 (mono), got %d", c.Audio.Channels)
	}
	if c.Recognition.QueueSize <= 0 {
		return fmt.Errorf("recognition.queue_size must be positive, got %d", c.Recognition.QueueSize)
	}
	switch c.Recognition.Backpressure {
	case BackpressureDrop, BackpressureBlock:
	default:
		return fmt.Errorf("recognition.backpressure must be %q or %q, got %q",
			BackpressureDrop, BackpressureBlock, c.Recognition.Backpressure)
	}
	if c.Recognition.TimeoutSeconds < 0 {
		return fmt.Errorf("recognition.timeout_seconds must be >= 0, got %d", c.Recognition.TimeoutSeconds)
	}
	if c.VAD.Enabled && !isPowerOfTwo(c.VAD.WindowSize) {
		return fmt.Errorf("vad.window_size must be a power of 2, got %d", c.VAD.WindowSize)
	}
	if c.Transport.UDPEnabled && c.Transport.UDPTarget == "" {
		return fmt.Errorf("transport.udp_target must be set when UDP publishing is enabled")
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// applyEnvOverrides layers VOICEINPUT_* environment variables over the
// loaded configuration.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("VOICEINPUT_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("VOICEINPUT_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("VOICEINPUT_TEST_MODE"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.TestMode = bVal
		}
	}
	if val, ok := os.LookupEnv("VOICEINPUT_MODEL_PATH"); ok {
		cfg.Recognition.ModelPath = val
	}
	if val, ok := os.LookupEnv("VOICEINPUT_SERVER_URL"); ok {
		cfg.Recognition.ServerURL = val
	}
	if val, ok := os.LookupEnv("VOICEINPUT_SAMPLE_RATE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Audio.SampleRate = iVal
		}
	}
	if val, ok := os.LookupEnv("VOICEINPUT_CHUNK_SIZE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Audio.ChunkSize = iVal
		}
	}
	if val, ok := os.LookupEnv("VOICEINPUT_TIMEOUT_SECONDS"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Recognition.TimeoutSeconds = iVal
		}
	}
	if val, ok := os.LookupEnv("VOICEINPUT_TTS_API_KEY"); ok {
		cfg.TTS.APIKey = val
	}
}
