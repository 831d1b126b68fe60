package video

import (
	"FrameForge/pkg/ffmpeg"
	"FrameForge/pkg/frame"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FFmpegOpener drives ffmpeg/ffprobe subprocesses over raw bgr24 pipes
type FFmpegOpener struct {
	ffmpeg *ffmpeg.FFmpeg
	logger *zap.Logger
}

func NewFFmpegOpener(ffmpegPath, ffprobePath string, logger *zap.Logger) *FFmpegOpener {
	return &FFmpegOpener{
		ffmpeg: ffmpeg.NewFFmpeg(ffmpegPath, ffprobePath),
		logger: logger,
	}
}

func (o *FFmpegOpener) OpenSource(ctx context.Context, path string) (Source, error) {
	info, err := o.ffmpeg.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", path, err)
	}
	dec, err := o.ffmpeg.Decode(ctx, path, info.Width, info.Height)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Opened source",
		zap.String("path", path),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("fps", info.FPS))
	return &ffmpegSource{
		info: StreamInfo{Width: info.Width, Height: info.Height, FPS: info.FPS},
		dec:  dec,
	}, nil
}

func (o *FFmpegOpener) OpenSink(ctx context.Context, path string, info StreamInfo, codecs []string) (Sink, string, error) {
	var lastErr error
	for _, codec := range codecs {
		ok, err := o.ffmpeg.HasEncoder(ctx, codec)
		if err != nil {
			lastErr = err
			o.logger.Warn("Codec check failed", zap.String("codec", codec), zap.Error(err))
			continue
		}
		if !ok {
			lastErr = fmt.Errorf("encoder %s not available", codec)
			o.logger.Warn("Codec not available, trying fallback", zap.String("codec", codec))
			continue
		}

		enc, err := o.ffmpeg.Encode(ctx, path, info.Width, info.Height, info.FPS, codec)
		if err != nil {
			lastErr = err
			o.logger.Warn("Failed to start encoder", zap.String("codec", codec), zap.Error(err))
			continue
		}
		o.logger.Debug("Opened sink", zap.String("path", path), zap.String("codec", codec))
		return &ffmpegSink{info: info, enc: enc}, codec, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no codecs configured")
	}
	return nil, "", fmt.Errorf("failed to create %s: %w", path, lastErr)
}

type ffmpegSource struct {
	info StreamInfo
	dec  *ffmpeg.Decoder
}

func (s *ffmpegSource) Info() StreamInfo { return s.info }

func (s *ffmpegSource) Read() (frame.Frame, error) {
	pix, err := s.dec.ReadFrame()
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.Frame{Width: s.info.Width, Height: s.info.Height, Channels: frame.BGR, Pix: pix}, nil
}

func (s *ffmpegSource) Close() error { return s.dec.Close() }

type ffmpegSink struct {
	info StreamInfo
	enc  *ffmpeg.Encoder
}

func (s *ffmpegSink) Write(f frame.Frame) error {
	if err := checkSinkFrame(f, s.info); err != nil {
		return err
	}
	return s.enc.WriteFrame(f.Pix)
}

func (s *ffmpegSink) Close() error { return s.enc.Close() }

// checkSinkFrame rejects frames the encoder was not opened for
func checkSinkFrame(f frame.Frame, info StreamInfo) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Width != info.Width || f.Height != info.Height || f.Channels != frame.BGR {
		return fmt.Errorf("%w: sink expects %dx%dx%d, got %dx%dx%d",
			frame.ErrInvalidShape, info.Width, info.Height, frame.BGR, f.Width, f.Height, f.Channels)
	}
	return nil
}
