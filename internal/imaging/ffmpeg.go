package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoFrame is returned when the video has no frame at the requested time.
var ErrNoFrame = errors.New("imaging: no frame at timestamp")

// FrameGrabber extracts still frames from videos with the ffmpeg binary.
type FrameGrabber struct {
	bin     string
	timeout time.Duration
}

// NewFrameGrabber creates a grabber. bin defaults to "ffmpeg" on PATH.
func NewFrameGrabber(bin string, timeout time.Duration) *FrameGrabber {
	if bin == "" {
		bin = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FrameGrabber{bin: bin, timeout: timeout}
}

// Ready reports whether the ffmpeg binary can be found.
func (g *FrameGrabber) Ready() error {
	if _, err := exec.LookPath(g.bin); err != nil {
		return fmt.Errorf("missing required binary %q: %w", g.bin, err)
	}
	return nil
}

// Grab decodes the frame nearest to at.
func (g *FrameGrabber) Grab(ctx context.Context, videoPath string, at time.Duration) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, g.bin, grabArgs(videoPath, at)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg %s at %s: %w: %s", videoPath, at, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, ErrNoFrame
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg frame: %w", err)
	}
	return img, nil
}

// grabArgs seeks before opening the input so only one frame is decoded.
func grabArgs(videoPath string, at time.Duration) []string {
	return []string{
		"-v", "error",
		"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}
