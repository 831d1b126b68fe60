package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// Decoder streams raw bgr24 frames out of an ffmpeg process
type Decoder struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    bytes.Buffer
	frameSize int
	done      bool
}

// Decode starts ffmpeg decoding path to raw frames of width x height
func (f *FFmpeg) Decode(ctx context.Context, path string, width, height int) (*Decoder, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", PixelFormat,
		"-s", fmt.Sprintf("%dx%d", width, height),
		"pipe:1",
	}
	d := &Decoder{frameSize: width * height * 3}
	d.cmd = exec.CommandContext(ctx, f.pathToBinary, args...)
	d.cmd.Stderr = &d.stderr

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder pipe: %w", err)
	}
	d.stdout = stdout
	if err := d.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg decoder: %w", err)
	}
	return d, nil
}

// ReadFrame fills a new buffer with the next frame. It returns io.EOF once
// the stream is exhausted.
func (d *Decoder) ReadFrame() ([]byte, error) {
	if d.done {
		return nil, io.EOF
	}
	buf := make([]byte, d.frameSize)
	if _, err := io.ReadFull(d.stdout, buf); err != nil {
		d.done = true
		if errors.Is(err, io.EOF) {
			if werr := d.wait(); werr != nil {
				return nil, werr
			}
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			_ = d.wait()
			return nil, fmt.Errorf("truncated frame: %w, output: %s", err, d.stderr.String())
		}
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	return buf, nil
}

func (d *Decoder) wait() error {
	if d.cmd == nil {
		return nil
	}
	cmd := d.cmd
	d.cmd = nil
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg decoder failed: %v, output: %s", err, d.stderr.String())
	}
	return nil
}

// Close stops the decoder process if it is still running
func (d *Decoder) Close() error {
	if d.cmd == nil {
		return nil
	}
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	cmd := d.cmd
	d.cmd = nil
	_ = cmd.Wait()
	return nil
}

// Encoder feeds raw bgr24 frames into an ffmpeg process writing a container
type Encoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	output string
}

// Encode starts ffmpeg encoding raw frames to output with codec
func (f *FFmpeg) Encode(ctx context.Context, output string, width, height int, fps float64, codec string) (*Encoder, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", PixelFormat,
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
		"-c:v", codec,
		"-pix_fmt", "yuv420p",
		"-y",
		output,
	}
	e := &Encoder{output: output}
	// cancellation must not kill ffmpeg before Close has flushed the container
	e.cmd = exec.CommandContext(context.WithoutCancel(ctx), f.pathToBinary, args...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder pipe: %w", err)
	}
	e.stdin = stdin
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg encoder: %w", err)
	}
	return e, nil
}

// WriteFrame sends one raw frame to the encoder
func (e *Encoder) WriteFrame(pix []byte) error {
	if e.cmd == nil {
		return fmt.Errorf("encoder closed")
	}
	if _, err := e.stdin.Write(pix); err != nil {
		// stderr is only safe to read once the process has been waited on
		cmd := e.cmd
		e.cmd = nil
		_ = e.stdin.Close()
		waitErr := cmd.Wait()
		return fmt.Errorf("failed to write frame: %w (ffmpeg: %v), output: %s", err, waitErr, e.stderr.String())
	}
	return nil
}

// Close flushes the encoder and waits for ffmpeg to finalize the container
func (e *Encoder) Close() error {
	if e.cmd == nil {
		return nil
	}
	cmd := e.cmd
	e.cmd = nil
	closeErr := e.stdin.Close()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoder failed: %v, output: %s", err, e.stderr.String())
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close encoder pipe: %w", closeErr)
	}
	return nil
}
