// Package ytdlp shells out to the yt-dlp binary for metadata probing,
// search, and format-selected downloads.
package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

// Runner invokes yt-dlp. The cookie file is applied on every call whenever
// it exists and is non-empty.
type Runner struct {
	binary     string
	cookieFile string
	logger     *zap.Logger
}

func NewRunner(binary, cookieFile string, logger *zap.Logger) *Runner {
	return &Runner{binary: binary, cookieFile: cookieFile, logger: logger}
}

type probeJSON struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
	Uploader    string  `json:"uploader"`
	ChannelURL  string  `json:"channel_url"`
	ViewCount   int64   `json:"view_count"`
	URL         string  `json:"url"`
	Thumbnails  []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
	Entries []probeJSON `json:"entries"`
}

func (p probeJSON) thumbnail() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Thumbnails) > 0 {
		return p.Thumbnails[len(p.Thumbnails)-1].URL
	}
	return ""
}

// Probe fetches metadata without downloading any media. The generic "best"
// format avoids spurious format-selection failures on metadata-only runs.
func (r *Runner) Probe(ctx context.Context, locator string) (*media.VideoMetadata, error) {
	args := r.probeArgs(locator)
	out, err := r.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var data probeJSON
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	return &media.VideoMetadata{
		Title:           data.Title,
		DurationSeconds: int(data.Duration),
		ThumbnailURL:    data.thumbnail(),
		Description:     data.Description,
	}, nil
}

// Fetch downloads the locator into outPath using the given format specifier.
// An .mp3 destination implies audio extraction through yt-dlp's own
// postprocessor.
func (r *Runner) Fetch(ctx context.Context, locator, format, outPath string) error {
	args := r.fetchArgs(locator, format, outPath)
	_, err := r.run(ctx, args)
	return err
}

// Search runs a flat-playlist ytsearch and returns up to limit candidates.
func (r *Runner) Search(ctx context.Context, query string, limit int) ([]media.SearchResult, error) {
	args := r.searchArgs(query, limit)
	out, err := r.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var data probeJSON
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, fmt.Errorf("parse yt-dlp search output: %w", err)
	}

	results := make([]media.SearchResult, 0, len(data.Entries))
	for _, e := range data.Entries {
		dur := -1
		if e.Duration > 0 {
			dur = int(e.Duration)
		}
		url := e.URL
		if url == "" {
			url = "https://www.youtube.com/watch?v=" + e.ID
		}
		results = append(results, media.SearchResult{
			VideoID:         e.ID,
			Title:           e.Title,
			URL:             url,
			Thumbnail:       e.thumbnail(),
			DurationSeconds: dur,
			Views:           e.ViewCount,
			AuthorName:      e.Uploader,
			AuthorURL:       e.ChannelURL,
		})
	}
	return results, nil
}

func (r *Runner) probeArgs(locator string) []string {
	args := []string{"-J", "--no-playlist", "--skip-download", "-f", "best"}
	args = append(args, r.cookieArgs()...)
	return append(args, locator)
}

func (r *Runner) fetchArgs(locator, format, outPath string) []string {
	args := []string{"-f", format, "--no-playlist", "-o", outPath}
	if filepath.Ext(outPath) == ".mp3" {
		args = append(args, "-x", "--audio-format", "mp3")
	}
	args = append(args, r.cookieArgs()...)
	return append(args, locator)
}

func (r *Runner) searchArgs(query string, limit int) []string {
	args := []string{"-J", "--flat-playlist"}
	args = append(args, r.cookieArgs()...)
	return append(args, "ytsearch"+strconv.Itoa(limit)+":"+query)
}

func (r *Runner) cookieArgs() []string {
	if r.cookieFile == "" {
		return nil
	}
	info, err := os.Stat(r.cookieFile)
	if err != nil || info.Size() == 0 {
		return nil
	}
	return []string{"--cookies", r.cookieFile}
}

func (r *Runner) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	out, err := cmd.Output()
	if err != nil {
		detail := err.Error()
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			detail = string(exitErr.Stderr)
		}
		r.logger.Warn("yt-dlp failed",
			zap.Strings("args", args),
			zap.String("stderr", detail))
		return nil, &ToolError{Output: detail, Err: err}
	}
	return out, nil
}
