package twitch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidVideoURL is returned when the input is not a recognizable
// Twitch VOD URL or bare video id.
var ErrInvalidVideoURL = errors.New("not a recognized Twitch VOD URL")

// TransportError wraps connection-level failures (DNS, TLS, connect,
// request timeout). Always retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("comment feed transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx upstream response. Body holds a
// truncated excerpt for diagnostics.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("comment feed returned HTTP %d: %s", e.StatusCode, e.Body)
}

// FeedError reports a non-empty errors array in the feed payload.
type FeedError struct {
	Message string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("comment feed error: %s", e.Message)
}

// transientMarkers are substrings of feed-level error messages that
// suggest the failure will clear on its own.
var transientMarkers = []string{"timeout", "rate", "503", "502"}

// isRetryable classifies a fetch failure. Transport failures and
// 429/502/503 statuses are retryable; feed-level errors only when the
// message hints at transience; everything else is fatal.
func isRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
			return true
		}
		return false
	}

	var feedErr *FeedError
	if errors.As(err, &feedErr) {
		msg := strings.ToLower(feedErr.Message)
		for _, marker := range transientMarkers {
			if strings.Contains(msg, marker) {
				return true
			}
		}
	}

	return false
}
