// Package resolver turns a source locator into video metadata by trying a
// fast search lookup first and a heavyweight probe second.
package resolver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
	"github.com/vaibhavk10/YT-API/internal/ytdlp"
)

// Lookup is the fast structured lookup. A false return means zero results,
// never a hard failure.
type Lookup interface {
	ByID(ctx context.Context, id string) (*media.VideoMetadata, bool)
	ByQuery(ctx context.Context, query string) (*media.VideoMetadata, bool)
}

// Prober is the heavyweight metadata extractor, configured to skip the
// actual media download.
type Prober interface {
	Probe(ctx context.Context, locator string) (*media.VideoMetadata, error)
}

type Resolver struct {
	lookup Lookup
	probe  Prober
	logger *zap.Logger
}

func New(lookup Lookup, probe Prober, logger *zap.Logger) *Resolver {
	return &Resolver{lookup: lookup, probe: probe, logger: logger}
}

// Resolve produces metadata for the locator or fails with one of the
// media error kinds. No files are written here.
func (r *Resolver) Resolve(ctx context.Context, locator string) (*media.VideoMetadata, error) {
	id, ok := media.ExtractVideoID(locator)
	if !ok {
		return nil, media.ErrInvalidLocator
	}

	if md, ok := r.searchBoth(ctx, id, locator); ok {
		return md, nil
	}

	md, err := r.probe.Probe(ctx, locator)
	if err == nil {
		return md, nil
	}

	if ytdlp.IsFormatUnavailable(err) {
		// Format-selection misses on a metadata-only probe are usually
		// transient; the search index is the last resort.
		if md, ok := r.searchBoth(ctx, id, locator); ok {
			return md, nil
		}
	}
	if ytdlp.IsAuthError(err) {
		return nil, fmt.Errorf("%w: refresh the cookie file and retry", media.ErrAuthRequired)
	}

	r.logger.Warn("metadata resolution exhausted", zap.String("locator", locator), zap.Error(err))
	return nil, fmt.Errorf("%w: %v", media.ErrResolutionFailed, err)
}

// searchBoth tries the identifier first and the raw locator second.
func (r *Resolver) searchBoth(ctx context.Context, id, locator string) (*media.VideoMetadata, bool) {
	if md, ok := r.lookup.ByID(ctx, id); ok {
		return md, true
	}
	return r.lookup.ByQuery(ctx, locator)
}
