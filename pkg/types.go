package types

import "time"

type PluginsConfig struct {
	Dir string `mapstructure:"dir" json:"dir"`
}

type VideoConfig struct {
	Backend     string   `mapstructure:"backend" json:"backend"`
	FFMpegPath  string   `mapstructure:"ffmpeg_path" json:"ffmpeg_path"`
	FFProbePath string   `mapstructure:"ffprobe_path" json:"ffprobe_path"`
	Codecs      []string `mapstructure:"codecs" json:"codecs"`
}

type PipelineConfig struct {
	EffectTimeout time.Duration `mapstructure:"effect_timeout" json:"effect_timeout"`
	Retry         RetryConfig   `mapstructure:"retry" json:"retry"`
}

type RetryConfig struct {
	MaxAttempts        int32   `mapstructure:"max_attempts" json:"max_attempts"`
	InitialIntervalSec float64 `mapstructure:"initial_interval_sec" json:"initial_interval_sec"`
	BackoffCoefficient float64 `mapstructure:"backoff_coefficient" json:"backoff_coefficient"`
}

type StorageConfig struct {
	Type   string      `mapstructure:"type" json:"type"`
	Bucket string      `mapstructure:"bucket" json:"bucket"`
	Prefix string      `mapstructure:"prefix" json:"prefix"`
	Local  LocalConfig `mapstructure:"local" json:"local"`
	S3     S3Config    `mapstructure:"s3" json:"s3"`
}

type LocalConfig struct {
	BasePath string `mapstructure:"base_path" json:"base_path"`
}

type S3Config struct {
	Region          string `mapstructure:"region" json:"region"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"secret_access_key"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" json:"textfile"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level" json:"level"`
	Output   string `mapstructure:"output" json:"output"`
	FilePath string `mapstructure:"file_path" json:"file_path"`
}
