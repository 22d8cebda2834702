// Package ffmpeg wraps the local ffmpeg binary for audio transcoding.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Transcoder converts raw audio streams into the served container.
type Transcoder struct {
	binary string
	logger *zap.Logger
}

func NewTranscoder(binary string, logger *zap.Logger) *Transcoder {
	return &Transcoder{binary: binary, logger: logger}
}

// ToMP3 re-encodes src into an mp3 at a fixed 192k bitrate.
func (t *Transcoder) ToMP3(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, t.binary, "-y", "-i", src, "-vn", "-f", "mp3", "-ab", "192k", dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.logger.Warn("ffmpeg transcode failed",
			zap.String("src", src),
			zap.String("output", string(out)))
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
