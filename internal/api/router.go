package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wires all routes. No request timeout is applied: downloads run as
// long as the underlying tools take.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	if s.rateRPS > 0 {
		r.Use(rateLimit(s.rateRPS, s.rateBurst))
	}

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/downloader/ytmp3", s.handleFlatAudio)
	r.Get("/api/downloader/ytmp4", s.handleFlatVideo)
	r.Get("/api/download/ytmp3", s.handleNestedAudio)
	r.Get("/api/search", s.handleSearch)
	r.Get("/download/{filename}", s.handleFile)

	return r
}
