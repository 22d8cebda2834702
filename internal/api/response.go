package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vaibhavk10/YT-API/internal/media"
)

// downloadResult is the single internal result both response shapes are
// rendered from, so the legacy and nested paths cannot drift.
type downloadResult struct {
	Metadata    *media.VideoMetadata
	Kind        media.Kind
	DownloadURL string
	Filename    string
	SizeBytes   int64
}

// flatResponse is the legacy shape.
type flatResponse struct {
	Status   bool    `json:"status"`
	Creator  string  `json:"creator"`
	Title    string  `json:"title"`
	DL       string  `json:"dl"`
	Thumb    *string `json:"thumb"`
	Duration int     `json:"duration"`
	Size     int64   `json:"size"`
	Format   string  `json:"format"`
}

type flatError struct {
	Status  bool   `json:"status"`
	Creator string `json:"creator"`
	Error   string `json:"error"`
}

// nestedResponse is the newer API-key-gated shape.
type nestedResponse struct {
	Status  int          `json:"status"`
	Success bool         `json:"success"`
	Creator string       `json:"creator"`
	Result  nestedResult `json:"result"`
}

type nestedResult struct {
	Quality     string `json:"quality"`
	Duration    string `json:"duration"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	DownloadURL string `json:"download_url"`
}

type nestedError struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Creator string `json:"creator"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) writeFlat(w http.ResponseWriter, res *downloadResult) {
	var thumb *string
	if res.Metadata.ThumbnailURL != "" {
		thumb = &res.Metadata.ThumbnailURL
	}
	writeJSON(w, http.StatusOK, flatResponse{
		Status:   true,
		Creator:  s.creator,
		Title:    res.Metadata.Title,
		DL:       res.DownloadURL,
		Thumb:    thumb,
		Duration: res.Metadata.DurationSeconds,
		Size:     res.SizeBytes,
		Format:   res.Kind.Ext(),
	})
}

func (s *Server) writeFlatError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, flatError{Status: false, Creator: s.creator, Error: msg})
}

func (s *Server) writeNested(w http.ResponseWriter, res *downloadResult) {
	quality := "128kbps"
	if res.Kind == media.Video {
		quality = "720p"
	}
	writeJSON(w, http.StatusOK, nestedResponse{
		Status:  http.StatusOK,
		Success: true,
		Creator: s.creator,
		Result: nestedResult{
			Quality:     quality,
			Duration:    formatDuration(res.Metadata.DurationSeconds),
			Title:       res.Metadata.Title,
			Thumbnail:   res.Metadata.ThumbnailURL,
			DownloadURL: res.DownloadURL,
		},
	})
}

func (s *Server) writeNestedError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, nestedError{Status: status, Success: false, Creator: s.creator, Error: msg})
}

// formatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// messageFor turns an internal error into the human-readable string the
// client sees. Raw tool output never leaks past the mapped kinds.
func messageFor(err error) string {
	switch {
	case errors.Is(err, media.ErrInvalidLocator):
		return "Invalid or unsupported URL"
	case errors.Is(err, media.ErrInvalidQuery):
		return `Query parameter "q" is required`
	case errors.Is(err, media.ErrAuthRequired):
		return "Upstream requires sign-in; refresh the cookies file and try again"
	case errors.Is(err, media.ErrMissingFile):
		return "Download finished but the file is missing"
	case errors.Is(err, media.ErrUnauthorized):
		return "Invalid API key"
	default:
		return err.Error()
	}
}
