package api

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/media"
)

// DownloadEvent is emitted when an artifact finishes downloading. Emission
// is best-effort and never fails the request.
type DownloadEvent struct {
	JobID           string    `json:"job_id"`
	Locator         string    `json:"locator"`
	Kind            string    `json:"kind"`
	Filename        string    `json:"filename"`
	SizeBytes       int64     `json:"size_bytes"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

func (s *Server) publishDownloadEvent(ctx context.Context, job media.DownloadJob, res *downloadResult) {
	if s.events == nil {
		return
	}

	event := DownloadEvent{
		JobID:           job.ID,
		Locator:         job.Locator,
		Kind:            string(job.Kind),
		Filename:        res.Filename,
		SizeBytes:       res.SizeBytes,
		DurationSeconds: res.Metadata.DurationSeconds,
		CreatedAt:       job.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("marshal download event", zap.Error(err))
		return
	}

	headers := map[string]string{
		"job_id":     job.ID,
		"event_type": "download.completed",
	}
	if err := s.events.Publish(ctx, []byte(job.ID), payload, headers); err != nil {
		s.logger.Warn("publish download event", zap.Error(err))
	}
}
