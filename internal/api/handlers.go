package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

const maxSearchResults = 20

func (s *Server) handleFlatAudio(w http.ResponseWriter, r *http.Request) {
	s.handleFlat(w, r, media.Audio)
}

func (s *Server) handleFlatVideo(w http.ResponseWriter, r *http.Request) {
	s.handleFlat(w, r, media.Video)
}

func (s *Server) handleFlat(w http.ResponseWriter, r *http.Request, kind media.Kind) {
	locator := r.URL.Query().Get("url")
	if !media.ValidLocator(locator) {
		s.writeFlatError(w, http.StatusBadRequest, messageFor(media.ErrInvalidLocator))
		return
	}

	res, err := s.download(r.Context(), r, locator, kind, false)
	if err != nil {
		s.logger.Error("download failed", zap.String("locator", locator), zap.Error(err))
		s.writeFlatError(w, media.StatusFor(err), messageFor(err))
		return
	}
	s.writeFlat(w, res)
}

// handleNestedAudio is the API-key-gated variant. It prefers the tunnel
// pathway, avoiding local storage entirely when the redirector answers.
func (s *Server) handleNestedAudio(w http.ResponseWriter, r *http.Request) {
	if s.apiKey != "" && r.URL.Query().Get("apikey") != s.apiKey {
		s.writeNestedError(w, http.StatusUnauthorized, messageFor(media.ErrUnauthorized))
		return
	}

	locator := r.URL.Query().Get("url")
	if !media.ValidLocator(locator) {
		s.writeNestedError(w, http.StatusBadRequest, messageFor(media.ErrInvalidLocator))
		return
	}

	res, err := s.download(r.Context(), r, locator, media.Audio, true)
	if err != nil {
		s.logger.Error("download failed", zap.String("locator", locator), zap.Error(err))
		s.writeNestedError(w, media.StatusFor(err), messageFor(err))
		return
	}
	s.writeNested(w, res)
}

type searchEntry struct {
	VideoID   string          `json:"videoId"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Thumbnail string          `json:"thumbnail"`
	Duration  *searchDuration `json:"duration"`
	Views     int64           `json:"views"`
	Author    *searchAuthor   `json:"author"`
}

type searchDuration struct {
	Seconds   int    `json:"seconds"`
	Timestamp string `json:"timestamp"`
}

type searchAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		s.writeFlatError(w, media.StatusFor(media.ErrInvalidQuery), messageFor(media.ErrInvalidQuery))
		return
	}

	results, err := s.search.Query(r.Context(), query, maxSearchResults)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		s.writeFlatError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	entries := make([]searchEntry, 0, len(results))
	for _, res := range results {
		e := searchEntry{
			VideoID:   res.VideoID,
			Title:     res.Title,
			URL:       res.URL,
			Thumbnail: res.Thumbnail,
			Views:     res.Views,
		}
		if res.DurationSeconds >= 0 {
			e.Duration = &searchDuration{
				Seconds:   res.DurationSeconds,
				Timestamp: formatDuration(res.DurationSeconds),
			}
		}
		if res.AuthorName != "" {
			e.Author = &searchAuthor{Name: res.AuthorName, URL: res.AuthorURL}
		}
		entries = append(entries, e)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"creator": s.creator,
		"query":   query,
		"results": entries,
		"count":   len(entries),
	})
}

// handleFile streams a staged artifact until its TTL deletes it.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	f, err := s.files.Open(filename)
	if err != nil {
		s.writeFlatError(w, http.StatusNotFound, "File not found or expired")
		return
	}
	defer f.Close()

	kind := media.Video
	if filepath.Ext(filename) == ".mp3" {
		kind = media.Audio
	}
	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("file stream interrupted", zap.String("filename", filename), zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "API is running",
		"creator": s.creator,
	})
}

// handleIndex serves the static landing page when one exists, else an
// endpoint directory. Serverless deployments skip the filesystem check.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if !s.serverless {
		if _, err := os.Stat("static/index.html"); err == nil {
			http.ServeFile(w, r, "static/index.html")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"creator": s.creator,
		"endpoints": []string{
			"/api/downloader/ytmp3?url=",
			"/api/downloader/ytmp4?url=",
			"/api/download/ytmp3?apikey=&url=",
			"/api/search?q=",
			"/download/{filename}",
			"/health",
		},
	})
}
