package invert

import (
	"FrameForge/pkg/frame"
	"FrameForge/pkg/plugin"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Kind is the catalog name of this effect
const Kind = "invert"

// InvertConfig holds the configuration for the invert plugin
type InvertConfig struct {
	// Channels restricts inversion to the listed channel indexes; empty means all
	Channels []int `json:"channels" mapstructure:"channels"`
}

// Validate checks if the configuration is valid
func (c *InvertConfig) Validate() error {
	for _, ch := range c.Channels {
		if ch < 0 || ch >= frame.BGR {
			return fmt.Errorf("channel index must be between 0 and %d, got: %d", frame.BGR-1, ch)
		}
	}
	return nil
}

// InvertPlugin produces the photographic negative of a frame
type InvertPlugin struct {
	mask [frame.BGR]bool
}

// New decodes config and creates an invert effect
func New(config map[string]interface{}) (plugin.Effect, error) {
	var cfg InvertConfig
	if err := mapstructure.Decode(config, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode invert config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid invert config: %w", err)
	}

	p := &InvertPlugin{}
	if len(cfg.Channels) == 0 {
		p.mask = [frame.BGR]bool{true, true, true}
	}
	for _, ch := range cfg.Channels {
		p.mask[ch] = true
	}
	return p, nil
}

// ApplyEffect inverts the selected channels. Single-channel frames are
// always inverted.
func (p *InvertPlugin) ApplyEffect(f frame.Frame) (frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return frame.Frame{}, err
	}
	out := f.Clone()
	for i, v := range out.Pix {
		if f.Channels == frame.Gray || p.mask[i%f.Channels] {
			out.Pix[i] = 255 - v
		}
	}
	return out, nil
}
