// Package tunnel asks a cobalt-style redirection service for a direct media
// URL, bypassing local storage. Unavailability is never a hard failure.
package tunnel

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

type Client struct {
	endpoint string
	httpc    *http.Client
	logger   *zap.Logger
}

func NewClient(endpoint string, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type request struct {
	URL          string `json:"url"`
	DownloadMode string `json:"downloadMode"`
	AudioFormat  string `json:"audioFormat,omitempty"`
}

// response covers the shapes the redirection service is known to answer
// with: a top-level url, or one nested under result.
type response struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Result struct {
		URL         string `json:"url"`
		DownloadURL string `json:"download_url"`
	} `json:"result"`
}

// RequestTunnel returns a direct download URL, or "" when the service is
// unavailable or answered without one. The caller falls back to a local
// download either way.
func (c *Client) RequestTunnel(ctx context.Context, locator string, kind media.Kind) string {
	req := request{URL: locator, DownloadMode: "auto"}
	if kind == media.Audio {
		req.DownloadMode = "audio"
		req.AudioFormat = "mp3"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return ""
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ""
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		c.logger.Debug("tunnel request failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("tunnel unavailable", zap.Int("status", resp.StatusCode))
		return ""
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Debug("tunnel response unparseable", zap.Error(err))
		return ""
	}

	switch {
	case parsed.URL != "":
		return parsed.URL
	case parsed.Result.URL != "":
		return parsed.Result.URL
	case parsed.Result.DownloadURL != "":
		return parsed.Result.DownloadURL
	}
	return ""
}
