package media

import "regexp"

var (
	hostPattern = regexp.MustCompile(`^(https?://)?(www\.|m\.|music\.)?(youtube\.com|youtu\.be)/`)
	idPattern   = regexp.MustCompile(`(?:v=|youtu\.be/|/shorts/|/embed/|/live/)([A-Za-z0-9_-]{11})`)
	bareID      = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ValidLocator reports whether the locator matches a recognized host pattern.
// Anything else is rejected before any external tool runs.
func ValidLocator(locator string) bool {
	if locator == "" {
		return false
	}
	return hostPattern.MatchString(locator) || bareID.MatchString(locator)
}

// ExtractVideoID pulls the canonical 11-character identifier out of a
// locator. The second return is false when no identifier can be found.
func ExtractVideoID(locator string) (string, bool) {
	if bareID.MatchString(locator) {
		return locator, true
	}
	m := idPattern.FindStringSubmatch(locator)
	if m == nil {
		return "", false
	}
	return m[1], true
}
