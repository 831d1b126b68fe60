//go:build gocv

package video

import (
	"FrameForge/pkg/frame"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// fourcc codes understood by OpenCV writers for the configured codec names
var fourccs = map[string]string{
	"libx264":     "avc1",
	"libopenh264": "avc1",
	"h264":        "avc1",
	"avc1":        "avc1",
	"mpeg4":       "mp4v",
	"mp4v":        "mp4v",
}

// GoCVOpener reads and writes video through OpenCV
type GoCVOpener struct {
	logger *zap.Logger
}

func newGoCVOpener(logger *zap.Logger) (Opener, error) {
	return &GoCVOpener{logger: logger}, nil
}

func (o *GoCVOpener) OpenSource(_ context.Context, path string) (Source, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open %s", path)
	}
	info := StreamInfo{
		Width:  int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    capture.Get(gocv.VideoCaptureFPS),
	}
	return &gocvSource{info: info, capture: capture, mat: gocv.NewMat()}, nil
}

func (o *GoCVOpener) OpenSink(_ context.Context, path string, info StreamInfo, codecs []string) (Sink, string, error) {
	var lastErr error
	for _, codec := range codecs {
		fourcc, ok := fourccs[codec]
		if !ok {
			lastErr = fmt.Errorf("codec %s has no fourcc mapping", codec)
			continue
		}
		writer, err := gocv.VideoWriterFile(path, fourcc, info.FPS, info.Width, info.Height, true)
		if err != nil || !writer.IsOpened() {
			if err == nil {
				err = fmt.Errorf("writer for fourcc %s did not open", fourcc)
				writer.Close()
			}
			lastErr = err
			o.logger.Warn("Codec not available, trying fallback", zap.String("codec", codec), zap.Error(err))
			continue
		}
		return &gocvSink{info: info, writer: writer}, codec, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no codecs configured")
	}
	return nil, "", fmt.Errorf("failed to create %s: %w", path, lastErr)
}

type gocvSource struct {
	info    StreamInfo
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

func (s *gocvSource) Info() StreamInfo { return s.info }

func (s *gocvSource) Read() (frame.Frame, error) {
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return frame.Frame{}, io.EOF
	}
	return frame.Frame{
		Width:    s.mat.Cols(),
		Height:   s.mat.Rows(),
		Channels: s.mat.Channels(),
		Pix:      s.mat.ToBytes(),
	}, nil
}

func (s *gocvSource) Close() error {
	s.mat.Close()
	return s.capture.Close()
}

type gocvSink struct {
	info   StreamInfo
	writer *gocv.VideoWriter
}

func (s *gocvSink) Write(f frame.Frame) error {
	if err := checkSinkFrame(f, s.info); err != nil {
		return err
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return fmt.Errorf("failed to wrap frame: %w", err)
	}
	defer mat.Close()
	return s.writer.Write(mat)
}

func (s *gocvSink) Close() error { return s.writer.Close() }
