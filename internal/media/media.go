package media

import "time"

// Kind selects the target artifact type for a download.
type Kind string

const (
	Audio Kind = "audio"
	Video Kind = "video"
)

// Ext returns the container extension artifacts of this kind are served with.
func (k Kind) Ext() string {
	if k == Audio {
		return "mp3"
	}
	return "mp4"
}

// ContentType returns the MIME type used when serving artifacts of this kind.
func (k Kind) ContentType() string {
	if k == Audio {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// VideoMetadata describes a remote media item. It is built once per request
// and discarded after the response is written.
type VideoMetadata struct {
	Title           string
	DurationSeconds int
	ThumbnailURL    string
	Description     string
}

// SearchResult is a single candidate returned by the search lookup.
// DurationSeconds is -1 when the source did not report a duration.
type SearchResult struct {
	VideoID         string
	Title           string
	URL             string
	Thumbnail       string
	DurationSeconds int
	Views           int64
	AuthorName      string
	AuthorURL       string
}

// DownloadJob tracks one request-scoped retrieval. The output file is owned
// by the cleanup timer once staged, regardless of outcome.
type DownloadJob struct {
	ID         string
	Kind       Kind
	Locator    string
	OutputPath string
	CreatedAt  time.Time
}
