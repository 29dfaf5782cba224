package config

// Core configuration constants that define the boundaries and defaults
// for the voice input pipeline.
const (
	// Default values for the audio capture configuration
	DefaultChannels   = 1     // Mono audio, the only layout the decoder accepts
	DefaultDeviceID   = MinDeviceID
	DefaultSampleRate = 16000 // Decoder-native sample rate (Hz)
	DefaultChunkSize  = 8000  // Samples per captured chunk (500ms at 16kHz)
	DefaultLowLatency = false

	// Default values for the recognition pipeline
	DefaultTimeoutSeconds    = 30  // Auto-stop after this much session time
	DefaultInactivitySeconds = 10  // Warn after this much silence
	DefaultQueueSize         = 10  // Bounded audio channel capacity (chunks)
	DefaultQueuePollMillis   = 100 // Recognition dequeue timeout
	DefaultPausePollMillis   = 50  // Pause-gate re-check interval
	DefaultMonitorSeconds    = 1   // Monitor worker tick

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 selects the system default input device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxChunkSize  = 1 << 16

	// Backpressure policies for a full audio channel
	BackpressureDrop  = "drop"  // Discard the chunk, count it, keep capturing
	BackpressureBlock = "block" // Hold the capture worker until space frees
)

// Config is the root configuration for the pipeline, loaded from YAML with
// environment and CLI flag overrides layered on top.
type Config struct {
	Debug    bool   `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel string `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").
	TestMode bool   `yaml:"test_mode"` // Bypass real device/model I/O for deterministic runs.
	Command  string `yaml:"-"`         // One-off command to execute instead of running the pipeline.

	Audio       AudioConfig       `yaml:"audio"`       // Capture device settings.
	Recognition RecognitionConfig `yaml:"recognition"` // Decoder and worker settings.
	VAD         VADConfig         `yaml:"vad"`         // Voice activity detection.
	Recording   RecordingConfig   `yaml:"recording"`   // Raw session WAV capture.
	TTS         TTSConfig         `yaml:"tts"`         // Speech synthesis playback.
	Transport   TransportConfig   `yaml:"transport"`   // Transcript fan-out.
	Metrics     MetricsConfig     `yaml:"metrics"`     // Prometheus exposition.
}

// AudioConfig holds settings for the input device and chunk framing.
type AudioConfig struct {
	InputDevice      int  `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate       int  `yaml:"sample_rate"`       // Sample rate in Hz.
	ChunkSize        int  `yaml:"chunk_size"`        // Samples per chunk; fixed for the whole session.
	Channels         int  `yaml:"channels"`          // Input channels; the decoder expects mono.
	LowLatency       bool `yaml:"low_latency"`       // Request low latency settings from the device.
	OverflowTolerant bool `yaml:"overflow_tolerant"` // Swallow input-overflow reads instead of failing the chunk.
}

// RecognitionConfig holds decoder wiring and worker loop tuning.
type RecognitionConfig struct {
	ModelPath         string `yaml:"model_path"`          // Decoder model path or identifier.
	ServerURL         string `yaml:"server_url"`          // WebSocket recognition server (streaming decoder).
	TimeoutSeconds    int    `yaml:"timeout_seconds"`     // Session auto-stop; 0 disables.
	InactivitySeconds int    `yaml:"inactivity_seconds"`  // Silence warning threshold.
	QueueSize         int    `yaml:"queue_size"`          // Bounded audio channel capacity.
	Backpressure      string `yaml:"backpressure"`        // "drop" or "block" on a full channel.
	QueuePollMillis   int    `yaml:"queue_poll_millis"`   // Dequeue timeout so the stop flag stays observed.
	PausePollMillis   int    `yaml:"pause_poll_millis"`   // Sleep while the pause gate is closed.
	EmitPartials      bool   `yaml:"emit_partials"`       // Dispatch partial hypotheses between finals.
}

// VADConfig holds energy voice-activity detection settings.
type VADConfig struct {
	Enabled    bool    `yaml:"enabled"`     // When off, every chunk counts as activity.
	WindowSize int     `yaml:"window_size"` // FFT window size; must be a power of 2.
	Threshold  float64 `yaml:"threshold"`   // Speech-band energy threshold (0..1).
}

// RecordingConfig holds raw session capture settings.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
}

// TTSConfig holds speech synthesis playback settings.
type TTSConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint"`      // Synthesis HTTP endpoint; empty selects the silent synthesizer.
	APIKey       string `yaml:"api_key"`
	Voice        string `yaml:"voice"`
	OutputDevice int    `yaml:"output_device"` // PortAudio output device index (-1 for default).
}

// TransportConfig holds transcript fan-out settings.
type TransportConfig struct {
	WSEnabled     bool   `yaml:"ws_enabled"`     // Broadcast finalized results over WebSocket.
	WSAddr        string `yaml:"ws_addr"`        // Listen address for the WebSocket server.
	UDPEnabled    bool   `yaml:"udp_enabled"`    // Publish statistics snapshots over UDP.
	UDPTarget     string `yaml:"udp_target"`     // Target address for UDP packets.
	UDPIntervalMS int    `yaml:"udp_interval_ms"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // Address for /metrics; empty disables the endpoint.
}

// NewConfig creates a Config with default values. This is the base
// configuration before applying a YAML file, environment variables,
// or command line flags.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		TestMode: false,
		Audio: AudioConfig{
			InputDevice:      DefaultDeviceID,
			SampleRate:       DefaultSampleRate,
			ChunkSize:        DefaultChunkSize,
			Channels:         DefaultChannels,
			LowLatency:       DefaultLowLatency,
			OverflowTolerant: true,
		},
		Recognition: RecognitionConfig{
			TimeoutSeconds:    DefaultTimeoutSeconds,
			InactivitySeconds: DefaultInactivitySeconds,
			QueueSize:         DefaultQueueSize,
			Backpressure:      BackpressureDrop,
			QueuePollMillis:   DefaultQueuePollMillis,
			PausePollMillis:   DefaultPausePollMillis,
			EmitPartials:      true,
		},
		VAD: VADConfig{
			Enabled:    false,
			WindowSize: 512,
			Threshold:  0.01,
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: "./recordings",
		},
		TTS: TTSConfig{
			Enabled:      false,
			OutputDevice: MinDeviceID,
		},
		Transport: TransportConfig{
			WSEnabled:     false,
			WSAddr:        ":8090",
			UDPEnabled:    false,
			UDPTarget:     "127.0.0.1:9090",
			UDPIntervalMS: 1000,
		},
		Metrics: MetricsConfig{
			Listen: "",
		},
	}
}
