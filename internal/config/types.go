package config

import (
	types "FrameForge/pkg"
)

type Config struct {
	Plugins  types.PluginsConfig  `mapstructure:"plugins" json:"plugins"`
	Video    types.VideoConfig    `mapstructure:"video" json:"video"`
	Pipeline types.PipelineConfig `mapstructure:"pipeline" json:"pipeline"`
	Storage  types.StorageConfig  `mapstructure:"storage" json:"storage"`
	Metrics  types.MetricsConfig  `mapstructure:"metrics" json:"metrics"`
	Logging  types.LoggingConfig  `mapstructure:"logging" json:"logging"`
}
