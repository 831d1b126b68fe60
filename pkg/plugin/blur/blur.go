package blur

import (
	"FrameForge/pkg/frame"
	"FrameForge/pkg/plugin"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// Kind is the catalog name of this effect
const Kind = "gaussian-blur"

// BlurPlugin applies a separable gaussian blur to every channel of a frame
type BlurPlugin struct {
	config BlurConfig
	kernel []float32
}

// New decodes config and creates a blur effect
func New(config map[string]interface{}) (plugin.Effect, error) {
	var cfg BlurConfig
	if err := mapstructure.Decode(config, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode blur config: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blur config: %w", err)
	}
	return NewBlurPlugin(cfg), nil
}

// NewBlurPlugin creates a blur plugin from an already validated config
func NewBlurPlugin(cfg BlurConfig) *BlurPlugin {
	return &BlurPlugin{
		config: cfg,
		kernel: gaussianKernel(cfg.KernelSize, cfg.EffectiveSigma()),
	}
}

// ApplyEffect blurs f. The output keeps the input shape, including
// single-channel frames.
func (p *BlurPlugin) ApplyEffect(f frame.Frame) (frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return frame.Frame{}, err
	}

	w, h, c := f.Width, f.Height, f.Channels
	stride := f.Stride()
	radius := len(p.kernel) / 2
	tmp := make([]float32, len(f.Pix))

	// horizontal pass
	for y := 0; y < h; y++ {
		row := y * stride
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				var sum float32
				for k, weight := range p.kernel {
					sx := reflect101(x+k-radius, w)
					sum += weight * float32(f.Pix[row+sx*c+ch])
				}
				tmp[row+x*c+ch] = sum
			}
		}
	}

	// vertical pass
	out := frame.New(w, h, c)
	for y := 0; y < h; y++ {
		for x := 0; x < stride; x++ {
			var sum float32
			for k, weight := range p.kernel {
				sy := reflect101(y+k-radius, h)
				sum += weight * tmp[sy*stride+x]
			}
			out.Pix[y*stride+x] = clamp8(sum)
		}
	}
	return out, nil
}

// gaussianKernel returns a normalized 1-D kernel of the given odd size
func gaussianKernel(size int, sigma float64) []float32 {
	kernel := make([]float32, size)
	center := float64(size-1) / 2
	scale := -0.5 / (sigma * sigma)

	var sum float64
	weights := make([]float64, size)
	for i := range weights {
		d := float64(i) - center
		weights[i] = math.Exp(scale * d * d)
		sum += weights[i]
	}
	for i, wt := range weights {
		kernel[i] = float32(wt / sum)
	}
	return kernel
}

// reflect101 maps an out-of-range index back into [0, n) mirroring around
// the edge samples without repeating them (dcb|abcd|cba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clamp8(v float32) uint8 {
	v += 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
