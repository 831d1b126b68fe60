package grayscale

import (
	"FrameForge/pkg/frame"
	"FrameForge/pkg/plugin"
	"fmt"
)

// Kind is the catalog name of this effect
const Kind = "grayscale"

// GrayscalePlugin converts color frames to a single luma channel
type GrayscalePlugin struct{}

// New creates a grayscale effect. It takes no configuration.
func New(config map[string]interface{}) (plugin.Effect, error) {
	if len(config) > 0 {
		return nil, fmt.Errorf("grayscale takes no configuration, got %d keys", len(config))
	}
	return &GrayscalePlugin{}, nil
}

// ApplyEffect returns a single-channel frame
func (p *GrayscalePlugin) ApplyEffect(f frame.Frame) (frame.Frame, error) {
	return frame.BGRToGray(f)
}
