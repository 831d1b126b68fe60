// Package video adapts external decoders and encoders to the frame-level
// source and sink contracts used by the pipeline.
package video

import (
	"FrameForge/pkg/frame"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// StreamInfo is the geometry and rate of a video stream
type StreamInfo struct {
	Width  int
	Height int
	FPS    float64
}

// Source yields decoded frames in stream order
type Source interface {
	Info() StreamInfo
	// Read returns the next frame, or io.EOF at end of stream
	Read() (frame.Frame, error)
	Close() error
}

// Sink accepts frames in presentation order
type Sink interface {
	Write(f frame.Frame) error
	Close() error
}

// Opener opens sources and sinks for one backend
type Opener interface {
	OpenSource(ctx context.Context, path string) (Source, error)
	// OpenSink tries codecs in order and returns the one that was accepted
	OpenSink(ctx context.Context, path string, info StreamInfo, codecs []string) (Sink, string, error)
}

// Options selects and configures a backend
type Options struct {
	Backend     string
	FFMpegPath  string
	FFProbePath string
}

// NewOpener returns the opener for opts.Backend
func NewOpener(opts Options, logger *zap.Logger) (Opener, error) {
	switch opts.Backend {
	case "", "ffmpeg":
		return NewFFmpegOpener(opts.FFMpegPath, opts.FFProbePath, logger), nil
	case "gocv":
		return newGoCVOpener(logger)
	default:
		return nil, fmt.Errorf("unsupported video backend: %s", opts.Backend)
	}
}
