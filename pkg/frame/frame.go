// Package frame defines the pixel buffer passed between the video
// collaborator, the effect chain and individual effects.
package frame

import (
	"errors"
	"fmt"
)

// ErrInvalidShape is returned when a frame's buffer does not match its
// declared geometry.
var ErrInvalidShape = errors.New("invalid frame shape")

const (
	// Gray is the channel count of a single-channel frame.
	Gray = 1
	// BGR is the channel count of a color frame, samples stored blue, green, red.
	BGR = 3
)

// Frame is an interleaved 8-bit pixel buffer. Pix holds Height rows of
// Width*Channels samples with no padding.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// New allocates a zeroed frame.
func New(width, height, channels int) Frame {
	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	f.Pix = pix
	return f
}

// IsGray reports whether f is single-channel.
func (f Frame) IsGray() bool {
	return f.Channels == Gray
}

// Stride returns the number of bytes per row.
func (f Frame) Stride() int {
	return f.Width * f.Channels
}

// Validate checks that the geometry is positive, the channel count is one
// this package understands and the buffer length matches.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidShape, f.Width, f.Height)
	}
	if f.Channels != Gray && f.Channels != BGR {
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidShape, f.Channels)
	}
	if want := f.Width * f.Height * f.Channels; len(f.Pix) != want {
		return fmt.Errorf("%w: buffer has %d bytes, want %d", ErrInvalidShape, len(f.Pix), want)
	}
	return nil
}

// SameGeometry reports whether a and b share width and height.
func SameGeometry(a, b Frame) bool {
	return a.Width == b.Width && a.Height == b.Height
}
