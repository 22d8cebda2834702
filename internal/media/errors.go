package media

import "errors"

// Error kinds surfaced to the HTTP layer. Every external-tool failure is
// mapped onto one of these before it leaves a handler.
var (
	ErrInvalidLocator   = errors.New("invalid or unsupported URL")
	ErrInvalidQuery     = errors.New("missing search query")
	ErrAuthRequired     = errors.New("upstream requires sign-in")
	ErrResolutionFailed = errors.New("could not resolve video metadata")
	ErrDownloadFailed   = errors.New("download failed")
	ErrMissingFile      = errors.New("downloaded file not found")
	ErrUnauthorized     = errors.New("invalid API key")
)

// StatusFor maps an error kind onto the HTTP status mirroring its severity.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidLocator), errors.Is(err, ErrInvalidQuery):
		return 400
	case errors.Is(err, ErrUnauthorized):
		return 401
	default:
		return 500
	}
}
