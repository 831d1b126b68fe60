package blur

import (
	"fmt"
)

// BlurConfig holds the configuration for the gaussian blur plugin
type BlurConfig struct {
	KernelSize int     `json:"kernel_size" mapstructure:"kernel_size"`
	Sigma      float64 `json:"sigma" mapstructure:"sigma"`
}

// SetDefaults sets default values for missing configuration
func (c *BlurConfig) SetDefaults() {
	if c.KernelSize == 0 {
		c.KernelSize = 25
	}
}

// Validate checks if the configuration is valid
func (c *BlurConfig) Validate() error {
	if c.KernelSize <= 0 || c.KernelSize%2 == 0 {
		return fmt.Errorf("kernel_size must be a positive odd number, got: %d", c.KernelSize)
	}
	if c.KernelSize > 255 {
		return fmt.Errorf("kernel_size must be at most 255, got: %d", c.KernelSize)
	}
	if c.Sigma < 0 {
		return fmt.Errorf("sigma must be greater than or equal to 0, got: %.2f", c.Sigma)
	}
	return nil
}

// EffectiveSigma returns Sigma, or the value derived from the kernel size when Sigma is 0
func (c BlurConfig) EffectiveSigma() float64 {
	if c.Sigma > 0 {
		return c.Sigma
	}
	return 0.3*((float64(c.KernelSize)-1)*0.5-1) + 0.8
}
