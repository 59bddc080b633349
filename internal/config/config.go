// Package config loads and validates the application configuration from an
// optional YAML file plus environment variables (RFP_ prefix). Detection
// thresholds, the match threshold, and the rubric WPM bands are deliberately
// configuration, not constants: strictness varies by deployment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Services   ServicesConfig   `mapstructure:"services"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Batch      BatchConfig      `mapstructure:"batch"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" validate:"required"`
	// Admin credentials for the login endpoint. Both must be set for the
	// server to start.
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" validate:"required"`
}

type StorageConfig struct {
	// Backend selects the artifact store implementation.
	Backend string `mapstructure:"backend" validate:"oneof=local minio"`
	// OutputDir is the artifact root for the local backend.
	OutputDir string `mapstructure:"output_dir"`
	// CollisionPolicy decides what a duplicate artifact filename does.
	CollisionPolicy string      `mapstructure:"collision_policy" validate:"oneof=overwrite reject rename"`
	Minio           MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type ServicesConfig struct {
	Transcriber   string        `mapstructure:"transcriber" validate:"oneof=whisper openai mock"`
	Transform     string        `mapstructure:"transform" validate:"oneof=noise-reduce voice-isolation mock"`
	Scorer        string        `mapstructure:"scorer" validate:"oneof=openai mock"`
	Traces        string        `mapstructure:"traces" validate:"oneof=sidecar mock"`
	WhisperURL    string        `mapstructure:"whisper_url"`
	WhisperModel  string        `mapstructure:"whisper_model"`
	TransformURL  string        `mapstructure:"transform_url"`
	TraceURL      string        `mapstructure:"trace_url"`
	OpenAIAPIKey  string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL string        `mapstructure:"openai_base_url"`
	ScorerModel   string        `mapstructure:"scorer_model"`
	Language      string        `mapstructure:"language"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// EvaluationConfig carries the numeric contract of the pipeline.
type EvaluationConfig struct {
	// MatchThreshold is the minimum normalized similarity for a transcript
	// to be accepted. Observed deployments run between 0.45 and 0.7.
	MatchThreshold float64 `mapstructure:"match_threshold" validate:"gte=0,lte=1"`

	// SilenceSource selects the one canonical silence detector; mixing both
	// would double-subtract overlapping silence.
	SilenceSource string `mapstructure:"silence_source" validate:"oneof=pitch_intensity amplitude"`

	// Pitch/intensity detector floors (inclusive).
	PitchFloorHz     float64 `mapstructure:"pitch_floor_hz" validate:"gte=0"`
	IntensityFloorDB float64 `mapstructure:"intensity_floor_db"`
	MinPauseSeconds  float64 `mapstructure:"min_pause_seconds" validate:"gte=0"`

	// Amplitude detector settings.
	AmplitudeFloorDB           float64 `mapstructure:"amplitude_floor_db"`
	AmplitudeMinSilenceSeconds float64 `mapstructure:"amplitude_min_silence_seconds" validate:"gte=0"`

	// WPMBands map words-per-minute ranges to rubric fluency levels.
	WPMBands []WPMBand `mapstructure:"wpm_bands" validate:"required,dive"`
}

// WPMBand is one fluency band boundary pair.
type WPMBand struct {
	Level  string  `mapstructure:"level" validate:"required,oneof=Initial InProgress Achieved Advanced"`
	MinWPM float64 `mapstructure:"min_wpm" validate:"gte=0"`
	MaxWPM float64 `mapstructure:"max_wpm" validate:"gtefield=MinWPM"`
}

type BatchConfig struct {
	// ManifestPath is the default text-to-audio manifest.
	ManifestPath string `mapstructure:"manifest_path"`
	// InputDir holds the audio files named by the manifest.
	InputDir string `mapstructure:"input_dir"`
	// WorkerLimit caps concurrently processed work items. Zero falls back
	// to the orchestrator default.
	WorkerLimit int `mapstructure:"worker_limit" validate:"gte=0"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RFP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("database.dsn", "host=localhost port=5432 user=postgres dbname=reading_fluency sslmode=disable")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.output_dir", "output")
	v.SetDefault("storage.collision_policy", "overwrite")

	v.SetDefault("services.transcriber", "whisper")
	v.SetDefault("services.transform", "noise-reduce")
	v.SetDefault("services.scorer", "openai")
	v.SetDefault("services.traces", "sidecar")
	v.SetDefault("services.whisper_url", "http://localhost:8387")
	v.SetDefault("services.whisper_model", "base")
	v.SetDefault("services.transform_url", "http://localhost:8390")
	v.SetDefault("services.trace_url", "http://localhost:8391")
	v.SetDefault("services.scorer_model", "gpt-4o-audio-preview")
	v.SetDefault("services.language", "es")
	v.SetDefault("services.timeout", 2*time.Minute)

	// Defaults mirror the historical deployment values; every call path
	// still takes them as parameters.
	v.SetDefault("evaluation.match_threshold", 0.45)
	v.SetDefault("evaluation.silence_source", "pitch_intensity")
	v.SetDefault("evaluation.pitch_floor_hz", 140)
	v.SetDefault("evaluation.intensity_floor_db", 50)
	v.SetDefault("evaluation.min_pause_seconds", 0.4)
	v.SetDefault("evaluation.amplitude_floor_db", -70)
	v.SetDefault("evaluation.amplitude_min_silence_seconds", 2)
	v.SetDefault("evaluation.wpm_bands", []map[string]any{
		{"level": "Initial", "min_wpm": 0, "max_wpm": 49},
		{"level": "InProgress", "min_wpm": 50, "max_wpm": 70},
		{"level": "Achieved", "min_wpm": 71, "max_wpm": 90},
		{"level": "Advanced", "min_wpm": 90, "max_wpm": 200},
	})

	v.SetDefault("batch.manifest_path", "textToAudio.json")
	v.SetDefault("batch.input_dir", "audio_files")
	v.SetDefault("batch.worker_limit", 8)
}
