package ytdlp

import "strings"

// ToolError carries the stderr of a failed yt-dlp invocation so callers can
// classify the failure.
type ToolError struct {
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output != "" {
		return "yt-dlp: " + strings.TrimSpace(e.Output)
	}
	return "yt-dlp: " + e.Err.Error()
}

func (e *ToolError) Unwrap() error { return e.Err }

var authSignals = []string{
	"sign in",
	"login required",
	"cookies",
	"account associated",
}

// IsAuthError reports whether the failure looks like an upstream sign-in
// demand. Classification is by message substring because the tool only
// reports string reasons.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range authSignals {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// IsFormatUnavailable reports whether the failure was a format-selection
// miss rather than a hard error.
func IsFormatUnavailable(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "requested format is not available")
}
