package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// StreamInfo describes the first video stream of a container
type StreamInfo struct {
	Width  int
	Height int
	FPS    float64
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// Probe reads geometry and frame rate of the first video stream in path
func (f *FFmpeg) Probe(ctx context.Context, path string) (StreamInfo, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,avg_frame_rate",
		"-of", "json",
		path,
	}
	cmd := exec.CommandContext(ctx, f.pathToProbe, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return StreamInfo{}, fmt.Errorf("ffprobe command failed: %v, output: %s", err, string(exitErr.Stderr))
		}
		return StreamInfo{}, fmt.Errorf("ffprobe command failed: %w", err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(data []byte) (StreamInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return StreamInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return StreamInfo{}, fmt.Errorf("no video stream found")
	}

	s := out.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return StreamInfo{}, fmt.Errorf("invalid video geometry %dx%d", s.Width, s.Height)
	}
	fps, err := parseRate(s.RFrameRate)
	if err != nil {
		fps, err = parseRate(s.AvgFrameRate)
		if err != nil {
			return StreamInfo{}, fmt.Errorf("invalid frame rate: %w", err)
		}
	}
	return StreamInfo{Width: s.Width, Height: s.Height, FPS: fps}, nil
}

// parseRate parses ffprobe rationals such as "30000/1001" or plain "25"
func parseRate(rate string) (float64, error) {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	d := 1.0
	if found {
		d, err = strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("parse rate %q: %w", rate, err)
		}
	}
	if n <= 0 || d <= 0 {
		return 0, fmt.Errorf("non-positive rate %q", rate)
	}
	return n / d, nil
}
