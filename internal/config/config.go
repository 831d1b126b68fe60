package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type ConfigLoader struct {
	logger *zap.Logger
	v      *viper.Viper
}

func NewConfigLoader(logger *zap.Logger) *ConfigLoader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FRAMEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &ConfigLoader{
		logger: logger,
		v:      v,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("plugins.dir", "plugins")
	v.SetDefault("video.backend", "ffmpeg")
	v.SetDefault("video.ffmpeg_path", "ffmpeg")
	v.SetDefault("video.ffprobe_path", "ffprobe")
	// H.264 (avc1) first, MPEG-4 part 2 (mp4v) as the fallback
	v.SetDefault("video.codecs", []string{"libx264", "mpeg4"})
	v.SetDefault("pipeline.effect_timeout", "0s")
	v.SetDefault("pipeline.retry.max_attempts", 3)
	v.SetDefault("pipeline.retry.initial_interval_sec", 1.0)
	v.SetDefault("pipeline.retry.backoff_coefficient", 2.0)
	v.SetDefault("storage.type", "none")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.local.base_path", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "console")
	v.SetDefault("logging.file_path", "")
}

// Load reads the YAML file at filePath. A missing file is not an error: the
// defaults and FRAMEFORGE_* environment overrides apply.
func (cl *ConfigLoader) Load(filePath string) (*Config, error) {
	if filePath != "" {
		cl.v.SetConfigFile(filePath)
		if err := cl.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				cl.logger.Error("Failed to read config file", zap.String("file", filePath), zap.Error(err))
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			cl.logger.Debug("Config file not found, using defaults", zap.String("file", filePath))
		}
	}

	var cfg Config
	if err := cl.v.Unmarshal(&cfg); err != nil {
		cl.logger.Error("Failed to unmarshal config", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cl.validate(&cfg); err != nil {
		cl.logger.Error("Config validation failed", zap.Error(err))
		return nil, err
	}

	cl.logger.Debug("Config loaded", zap.String("file", cl.v.ConfigFileUsed()))
	return &cfg, nil
}

func (cl *ConfigLoader) validate(cfg *Config) error {
	if cfg.Plugins.Dir == "" {
		cfg.Plugins.Dir = "plugins"
	}

	switch strings.ToLower(cfg.Video.Backend) {
	case "ffmpeg", "gocv":
		cfg.Video.Backend = strings.ToLower(cfg.Video.Backend)
	default:
		return fmt.Errorf("invalid video backend: %s", cfg.Video.Backend)
	}
	if cfg.Video.FFMpegPath == "" {
		cfg.Video.FFMpegPath = "ffmpeg" // Default to the one that's in PATH
	}
	if cfg.Video.FFProbePath == "" {
		cfg.Video.FFProbePath = "ffprobe"
	}
	if len(cfg.Video.Codecs) == 0 {
		return fmt.Errorf("at least one video codec required")
	}
	for _, codec := range cfg.Video.Codecs {
		if !isValidCodec(codec) {
			return fmt.Errorf("invalid codec: %s", codec)
		}
	}

	if cfg.Pipeline.EffectTimeout < 0 {
		return fmt.Errorf("pipeline.effect_timeout must be non-negative")
	}
	if cfg.Pipeline.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must be non-negative")
	}
	if cfg.Pipeline.Retry.MaxAttempts == 0 {
		cfg.Pipeline.Retry.MaxAttempts = 3 // Default
	}
	if cfg.Pipeline.Retry.InitialIntervalSec <= 0 {
		cfg.Pipeline.Retry.InitialIntervalSec = 1.0 // Default
	}
	if cfg.Pipeline.Retry.BackoffCoefficient <= 1 {
		cfg.Pipeline.Retry.BackoffCoefficient = 2.0 // Default
	}

	storage := strings.ToLower(cfg.Storage.Type)
	switch storage {
	case "", "none":
		cfg.Storage.Type = "none"
	case "s3":
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("s3 bucket required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region required")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("s3 access_key and secret_key required")
		}
		cfg.Storage.Type = storage
	case "local":
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local base_path required")
		}
		cfg.Storage.Type = storage
	default:
		return fmt.Errorf("invalid storage backend: %s", cfg.Storage.Type)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if !isValidLogLevel(cfg.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "console"
	}
	if cfg.Logging.Output != "console" && cfg.Logging.Output != "file" {
		return fmt.Errorf("invalid log output: %s", cfg.Logging.Output)
	}
	if cfg.Logging.Output == "file" && cfg.Logging.FilePath == "" {
		return fmt.Errorf("file_path required for file logging")
	}

	return nil
}

func isValidCodec(codec string) bool {
	supported := []string{"libx264", "libopenh264", "h264", "mpeg4", "libx265", "libaom-av1", "avc1", "mp4v"}
	for _, c := range supported {
		if codec == c {
			return true
		}
	}
	return false
}

func isValidLogLevel(level string) bool {
	levels := []string{"debug", "info", "warn", "error"}
	for _, l := range levels {
		if strings.ToLower(level) == l {
			return true
		}
	}
	return false
}
