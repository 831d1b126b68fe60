package pipeline

import (
	"FrameForge/internal/video"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary describes a finished run
type Summary struct {
	RunID     uuid.UUID
	Input     string
	Output    string
	Codec     string
	Frames    int
	SizeBytes int64
	Duration  time.Duration
}

// SizeMB returns the output size in mebibytes
func (s *Summary) SizeMB() float64 {
	return float64(s.SizeBytes) / (1024 * 1024)
}

// Options tunes a Pipeline
type Options struct {
	// Codecs are tried in order when creating the output
	Codecs []string
	// EffectTimeout bounds a single effect application; 0 disables it
	EffectTimeout time.Duration
	Metrics       *Metrics
}

// Pipeline runs the decode, effect chain, encode loop for one conversion
type Pipeline struct {
	plugins Resolver
	opener  video.Opener
	codecs  []string
	timeout time.Duration
	metrics *Metrics
	logger  *zap.Logger
}

// NewPipeline creates a pipeline. plugins is shared and not modified.
func NewPipeline(plugins Resolver, opener video.Opener, logger *zap.Logger, opts Options) *Pipeline {
	return &Pipeline{
		plugins: plugins,
		opener:  opener,
		codecs:  append([]string(nil), opts.Codecs...),
		timeout: opts.EffectTimeout,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// Run converts input to output applying effects to every frame in order.
// Failing to open either stream returns a *StreamOpenError. Effect failures
// never abort the run.
func (p *Pipeline) Run(ctx context.Context, input, output string, effects []string) (*Summary, error) {
	start := time.Now()
	runID := uuid.New()
	logger := p.logger.With(zap.String("run_id", runID.String()))

	src, err := p.opener.OpenSource(ctx, input)
	if err != nil {
		return nil, &StreamOpenError{Role: RoleSource, Path: input, Err: err}
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close source", zap.String("input", input), zap.Error(err))
		}
	}()

	info := src.Info()
	sink, codec, err := p.opener.OpenSink(ctx, output, info, p.codecs)
	if err != nil {
		return nil, &StreamOpenError{Role: RoleSink, Path: output, Err: err}
	}
	sinkOpen := true
	defer func() {
		if !sinkOpen {
			return
		}
		if err := sink.Close(); err != nil {
			logger.Warn("Failed to close sink", zap.String("output", output), zap.Error(err))
		}
	}()

	logger.Info("Starting run",
		zap.String("input", input),
		zap.String("output", output),
		zap.Strings("effects", effects),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("fps", info.FPS),
		zap.String("codec", codec))

	chain := NewChain(effects, p.plugins, p.timeout, p.metrics, logger)
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled after %d frames: %w", frames, err)
		}

		original, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %d: %w", frames, err)
		}

		if err := sink.Write(chain.Apply(original)); err != nil {
			return nil, fmt.Errorf("failed to write frame %d: %w", frames, err)
		}
		frames++
		p.metrics.frameWritten()
	}

	sinkOpen = false
	if err := sink.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize %s: %w", output, err)
	}

	stat, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("failed to stat output: %w", err)
	}

	summary := &Summary{
		RunID:     runID,
		Input:     input,
		Output:    output,
		Codec:     codec,
		Frames:    frames,
		SizeBytes: stat.Size(),
		Duration:  time.Since(start),
	}
	logger.Info("Run completed",
		zap.Int("frames", summary.Frames),
		zap.Int64("size_bytes", summary.SizeBytes),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}
