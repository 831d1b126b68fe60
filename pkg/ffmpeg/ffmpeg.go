package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PixelFormat is the raw layout exchanged over the ffmpeg pipes
const PixelFormat = "bgr24"

type FFmpeg struct {
	pathToBinary string
	pathToProbe  string
}

func NewFFmpeg(pathToBinary, pathToProbe string) *FFmpeg {
	return &FFmpeg{pathToBinary: pathToBinary, pathToProbe: pathToProbe}
}

// HasEncoder reports whether the ffmpeg build can encode with codec
func (f *FFmpeg) HasEncoder(ctx context.Context, codec string) (bool, error) {
	output, err := f.Exec(ctx, "-hide_banner", "-h", "encoder="+codec)
	if err != nil {
		return false, err
	}
	return strings.Contains(output, fmt.Sprintf("Encoder %s [", codec)), nil
}

// Exec runs ffmpeg to completion and returns its combined output
func (f *FFmpeg) Exec(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, f.pathToBinary, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg command failed: %v, output: %s", err, string(output))
	}
	return string(output), nil
}
