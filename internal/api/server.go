// Package api exposes the HTTP surface: download endpoints in two response
// shapes, search, file serving, and health.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
	"github.com/vaibhavk10/YT-API/internal/store"
	"github.com/vaibhavk10/YT-API/pkg/storage/objectstore"
)

// MetadataResolver resolves a locator into metadata.
type MetadataResolver interface {
	Resolve(ctx context.Context, locator string) (*media.VideoMetadata, error)
}

// Downloader runs the format fallback chain into a staged path.
type Downloader interface {
	Download(ctx context.Context, locator string, kind media.Kind, outPath string) error
}

// Searcher answers the /api/search endpoint.
type Searcher interface {
	Query(ctx context.Context, query string, limit int) ([]media.SearchResult, error)
}

// TunnelRequester asks a remote redirection service for a direct URL;
// "" means unavailable.
type TunnelRequester interface {
	RequestTunnel(ctx context.Context, locator string, kind media.Kind) string
}

// EventPublisher emits download events; nil disables emission.
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte, headers map[string]string) error
}

type Server struct {
	resolver MetadataResolver
	chain    Downloader
	files    *store.Store
	search   Searcher
	tunnel   TunnelRequester
	offload  objectstore.Client
	events   EventPublisher
	logger   *zap.Logger

	creator    string
	apiKey     string
	baseURL    string
	serverless bool

	rateRPS   float64
	rateBurst int
}

type Params struct {
	Resolver MetadataResolver
	Chain    Downloader
	Files    *store.Store
	Search   Searcher
	Tunnel   TunnelRequester
	Offload  objectstore.Client
	Events   EventPublisher
	Logger   *zap.Logger

	Creator    string
	APIKey     string
	BaseURL    string
	Serverless bool

	RateLimitRPS   float64
	RateLimitBurst int
}

func NewServer(p Params) *Server {
	return &Server{
		resolver:   p.Resolver,
		chain:      p.Chain,
		files:      p.Files,
		search:     p.Search,
		tunnel:     p.Tunnel,
		offload:    p.Offload,
		events:     p.Events,
		logger:     p.Logger,
		creator:    p.Creator,
		apiKey:     p.APIKey,
		baseURL:    p.BaseURL,
		serverless: p.Serverless,
		rateRPS:    p.RateLimitRPS,
		rateBurst:  p.RateLimitBurst,
	}
}

// download drives the full retrieval flow for one request: resolve, then
// tunnel (when preferred and available), else stage + fallback chain +
// finalize, with cleanup scheduled unconditionally once the file is staged.
func (s *Server) download(ctx context.Context, r *http.Request, locator string, kind media.Kind, preferTunnel bool) (*downloadResult, error) {
	md, err := s.resolver.Resolve(ctx, locator)
	if err != nil {
		return nil, err
	}

	job := media.DownloadJob{
		ID:        uuid.NewString(),
		Kind:      kind,
		Locator:   locator,
		CreatedAt: time.Now().UTC(),
	}

	if preferTunnel && s.tunnel != nil {
		if u := s.tunnel.RequestTunnel(ctx, locator, kind); u != "" {
			s.logger.Info("served via tunnel", zap.String("job", job.ID), zap.String("locator", locator))
			return &downloadResult{Metadata: md, Kind: kind, DownloadURL: u}, nil
		}
	}

	filename, path := s.files.Stage(kind)
	job.OutputPath = path
	// The artifact's lifetime starts at staging, not at success: a failed
	// chain may leave a partial file behind, and in serverless mode no
	// sweep exists to catch it.
	s.files.ScheduleCleanup(path)

	if err := s.chain.Download(ctx, locator, kind, path); err != nil {
		return nil, err
	}

	size, err := s.files.Finalize(path)
	if err != nil {
		return nil, err
	}

	res := &downloadResult{
		Metadata:    md,
		Kind:        kind,
		DownloadURL: s.publicURL(r, filename),
		Filename:    filename,
		SizeBytes:   size,
	}
	if s.offload != nil {
		if u, err := s.offloadArtifact(ctx, path, filename, size); err != nil {
			s.logger.Warn("offload failed, serving locally", zap.Error(err))
		} else {
			res.DownloadURL = u
		}
	}

	s.publishDownloadEvent(ctx, job, res)
	return res, nil
}

// offloadArtifact uploads the finished file to the object store and returns
// a presigned URL expiring on the same schedule as the local file.
func (s *Server) offloadArtifact(ctx context.Context, path, filename string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	metadata := map[string]string{"source": "ytapi"}
	if err := s.offload.Put(ctx, filename, f, size, metadata); err != nil {
		return "", fmt.Errorf("put artifact: %w", err)
	}
	return s.offload.Presign(ctx, filename, s.files.TTL())
}

// publicURL builds the short-lived local download link. With no configured
// base URL the request host is used.
func (s *Server) publicURL(r *http.Request, filename string) string {
	base := s.baseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/download/" + filename
}
