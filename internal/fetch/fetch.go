// Package fetch implements the ordered format fallback chain and the local
// transcode pathway used when every specifier fails.
package fetch

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
	"github.com/vaibhavk10/YT-API/internal/ytdlp"
)

// audioFormats is tried in order, most constrained first. Each attempt is
// independent; the chain stops at the first success.
var audioFormats = []string{
	"bestaudio[abr<=128][ext=m4a]/bestaudio[ext=m4a]",
	"bestaudio[abr<=128]/bestaudio",
	"bestaudio/best",
	"best",
}

// videoFormat is a single attempt; there is no video chain.
const videoFormat = "best[ext=mp4]/best"

// rawAudioFormat feeds the alternate transcode pathway.
const rawAudioFormat = "bestaudio"

// Fetcher downloads a locator into a destination path using a format
// specifier.
type Fetcher interface {
	Fetch(ctx context.Context, locator, format, outPath string) error
}

// Transcoder converts a raw audio file into the served mp3.
type Transcoder interface {
	ToMP3(ctx context.Context, src, dst string) error
}

type Chain struct {
	tool       Fetcher
	transcoder Transcoder
	logger     *zap.Logger
}

func NewChain(tool Fetcher, transcoder Transcoder, logger *zap.Logger) *Chain {
	return &Chain{tool: tool, transcoder: transcoder, logger: logger}
}

// Download fetches the locator into outPath. Audio walks the specifier
// chain and then the transcode pathway; video is a single attempt.
// Authentication errors seen anywhere in the chain take priority in the
// surfaced failure, because they are the only ones an operator can act on.
func (c *Chain) Download(ctx context.Context, locator string, kind media.Kind, outPath string) error {
	if kind == media.Video {
		if err := c.tool.Fetch(ctx, locator, videoFormat, outPath); err != nil {
			if ytdlp.IsAuthError(err) {
				return fmt.Errorf("%w: %v", media.ErrAuthRequired, err)
			}
			return fmt.Errorf("%w: %v", media.ErrDownloadFailed, err)
		}
		return nil
	}

	var authErr, lastErr error
	for _, format := range audioFormats {
		err := c.tool.Fetch(ctx, locator, format, outPath)
		if err == nil {
			return nil
		}
		if authErr == nil && ytdlp.IsAuthError(err) {
			authErr = err
		}
		lastErr = err
		c.logger.Warn("format attempt failed",
			zap.String("locator", locator),
			zap.String("format", format),
			zap.Error(err))
	}

	if err := c.transcodeFallback(ctx, locator, outPath); err != nil {
		if authErr != nil {
			return fmt.Errorf("%w: %v", media.ErrAuthRequired, authErr)
		}
		return fmt.Errorf("%w: %v (last format error: %v)", media.ErrDownloadFailed, err, lastErr)
	}
	return nil
}

// transcodeFallback fetches the best raw audio stream and converts it
// locally. Attempted exactly once, after the whole chain has failed.
func (c *Chain) transcodeFallback(ctx context.Context, locator, outPath string) error {
	raw := outPath + ".src"
	if err := c.tool.Fetch(ctx, locator, rawAudioFormat, raw); err != nil {
		return err
	}
	defer os.Remove(raw)

	c.logger.Info("transcoding raw audio stream", zap.String("locator", locator))
	return c.transcoder.ToMP3(ctx, raw, outPath)
}
