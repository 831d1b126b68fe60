package frame

import "fmt"

// Fixed-point BT.601 luma weights in Q14, matching the integer path used by
// common computer-vision libraries for 8-bit BGR to gray.
const (
	lumaB     = 1868
	lumaG     = 9617
	lumaR     = 4899
	lumaShift = 14
	lumaRound = 1 << (lumaShift - 1)
)

// GrayToBGR replicates the single channel of f into three channels. Frames
// that already have three channels are returned unchanged.
func GrayToBGR(f Frame) (Frame, error) {
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	if f.Channels == BGR {
		return f, nil
	}
	out := New(f.Width, f.Height, BGR)
	for i, v := range f.Pix {
		j := i * BGR
		out.Pix[j] = v
		out.Pix[j+1] = v
		out.Pix[j+2] = v
	}
	return out, nil
}

// BGRToGray converts a three-channel frame to single-channel luma.
func BGRToGray(f Frame) (Frame, error) {
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	if f.Channels != BGR {
		return Frame{}, fmt.Errorf("%w: expected %d channels, got %d", ErrInvalidShape, BGR, f.Channels)
	}
	out := New(f.Width, f.Height, Gray)
	for i := range out.Pix {
		j := i * BGR
		b := uint32(f.Pix[j])
		g := uint32(f.Pix[j+1])
		r := uint32(f.Pix[j+2])
		out.Pix[i] = uint8((b*lumaB + g*lumaG + r*lumaR + lumaRound) >> lumaShift)
	}
	return out, nil
}
