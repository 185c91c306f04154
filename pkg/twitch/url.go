package twitch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// videoPathPattern matches VOD paths: /videos/{digits}
var videoPathPattern = regexp.MustCompile(`^/videos/(\d+)/?$`)

// bareIDPattern matches a video id passed without a URL.
var bareIDPattern = regexp.MustCompile(`^\d+$`)

// allowedHosts is the fixed set of hosts the analyzer will ever fetch for.
// Keeping this closed doubles as the SSRF guard: caller-supplied hosts are
// never contacted.
var allowedHosts = map[string]struct{}{
	"twitch.tv":     {},
	"www.twitch.tv": {},
	"m.twitch.tv":   {},
}

// ParseVideoURL extracts the VOD id from a Twitch video URL or a bare
// digits-only id. Anything else fails with ErrInvalidVideoURL.
func ParseVideoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidVideoURL)
	}

	if bareIDPattern.MatchString(raw) {
		return raw, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidVideoURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q, expected http or https", ErrInvalidVideoURL, parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if _, ok := allowedHosts[host]; !ok {
		return "", fmt.Errorf("%w: host %q is not a Twitch video host", ErrInvalidVideoURL, host)
	}

	matches := videoPathPattern.FindStringSubmatch(parsed.Path)
	if matches == nil {
		return "", fmt.Errorf("%w: path %q does not match /videos/<id>", ErrInvalidVideoURL, parsed.Path)
	}

	return matches[1], nil
}
