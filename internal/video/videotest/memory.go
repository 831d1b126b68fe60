// Package videotest provides in-memory video sources and sinks for tests.
package videotest

import (
	"FrameForge/internal/video"
	"FrameForge/pkg/frame"
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

// Source replays a fixed list of frames
type Source struct {
	StreamInfo video.StreamInfo
	Frames     []frame.Frame
	ReadErr    error // returned instead of io.EOF once frames run out

	next   int
	Closed bool
}

func (s *Source) Info() video.StreamInfo { return s.StreamInfo }

func (s *Source) Read() (frame.Frame, error) {
	if s.next >= len(s.Frames) {
		if s.ReadErr != nil {
			return frame.Frame{}, s.ReadErr
		}
		return frame.Frame{}, io.EOF
	}
	f := s.Frames[s.next]
	s.next++
	return f, nil
}

func (s *Source) Close() error {
	s.Closed = true
	return nil
}

// Sink records written frames and, on Close, writes one byte per frame to
// Path so the output has a measurable size.
type Sink struct {
	Path     string
	Frames   []frame.Frame
	WriteErr error
	CloseErr error
	Closed   bool
}

func (s *Sink) Write(f frame.Frame) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.Frames = append(s.Frames, f.Clone())
	return nil
}

func (s *Sink) Close() error {
	s.Closed = true
	if s.CloseErr != nil {
		return s.CloseErr
	}
	if s.Path == "" {
		return nil
	}
	return os.WriteFile(s.Path, make([]byte, len(s.Frames)), 0o644)
}

// Opener hands out a prepared Source and records the Sink it creates
type Opener struct {
	Source    *Source
	SourceErr error
	SinkErr   error
	// Codecs the opener accepts; empty accepts any
	Supported []string

	mu         sync.Mutex
	Sink       *Sink
	SinkInfo   video.StreamInfo
	SinkCodecs []string
}

func (o *Opener) OpenSource(_ context.Context, _ string) (video.Source, error) {
	if o.SourceErr != nil {
		return nil, o.SourceErr
	}
	if o.Source == nil {
		return nil, errors.New("no source prepared")
	}
	return o.Source, nil
}

func (o *Opener) OpenSink(_ context.Context, path string, info video.StreamInfo, codecs []string) (video.Sink, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.SinkInfo = info
	o.SinkCodecs = append([]string(nil), codecs...)
	if o.SinkErr != nil {
		return nil, "", o.SinkErr
	}
	for _, codec := range codecs {
		if o.accepts(codec) {
			o.Sink = &Sink{Path: path}
			return o.Sink, codec, nil
		}
	}
	return nil, "", errors.New("no supported codec")
}

func (o *Opener) accepts(codec string) bool {
	if len(o.Supported) == 0 {
		return true
	}
	for _, c := range o.Supported {
		if c == codec {
			return true
		}
	}
	return false
}

// Frames builds n color frames of width x height where every sample in frame
// i has value i+1.
func Frames(n, width, height int) []frame.Frame {
	frames := make([]frame.Frame, n)
	for i := range frames {
		f := frame.New(width, height, frame.BGR)
		for j := range f.Pix {
			f.Pix[j] = byte(i + 1 + j%7)
		}
		frames[i] = f
	}
	return frames
}
