// Package search provides the fast structured lookup used by the metadata
// resolver and the /api/search endpoint.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

// Searcher is the candidate-lookup tool the client delegates to.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]media.SearchResult, error)
}

// Client answers identifier- and query-keyed lookups against a Searcher.
// Lookup failures count as zero results; the resolver escalates on its own.
type Client struct {
	tool   Searcher
	logger *zap.Logger
}

func NewClient(tool Searcher, logger *zap.Logger) *Client {
	return &Client{tool: tool, logger: logger}
}

// ByID looks up a video by its canonical identifier. Only an exact
// identifier match counts; search engines happily return lookalikes.
func (c *Client) ByID(ctx context.Context, id string) (*media.VideoMetadata, bool) {
	results, err := c.tool.Search(ctx, id, 5)
	if err != nil {
		c.logger.Debug("lookup by id failed", zap.String("id", id), zap.Error(err))
		return nil, false
	}
	for _, r := range results {
		if r.VideoID == id {
			return toMetadata(r), true
		}
	}
	return nil, false
}

// ByQuery looks up the best candidate for a raw locator string.
func (c *Client) ByQuery(ctx context.Context, query string) (*media.VideoMetadata, bool) {
	results, err := c.tool.Search(ctx, query, 1)
	if err != nil {
		c.logger.Debug("lookup by query failed", zap.String("query", query), zap.Error(err))
		return nil, false
	}
	if len(results) == 0 {
		return nil, false
	}
	return toMetadata(results[0]), true
}

// Query returns up to limit raw candidates for the search endpoint.
func (c *Client) Query(ctx context.Context, query string, limit int) ([]media.SearchResult, error) {
	return c.tool.Search(ctx, query, limit)
}

func toMetadata(r media.SearchResult) *media.VideoMetadata {
	dur := r.DurationSeconds
	if dur < 0 {
		dur = 0
	}
	return &media.VideoMetadata{
		Title:           r.Title,
		DurationSeconds: dur,
		ThumbnailURL:    r.Thumbnail,
	}
}
