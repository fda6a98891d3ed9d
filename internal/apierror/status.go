package apierror

import (
	"fmt"
	"net/http"
	"strings"
)

// maxBodyExcerpt bounds how much of an error response body is kept.
const maxBodyExcerpt = 512

// StatusError is returned when Humio answers with a non-success HTTP status.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

// NewStatusError builds a StatusError from a response and the already read
// body. Long bodies are truncated.
func NewStatusError(resp *http.Response, body []byte) *StatusError {
	e := &StatusError{StatusCode: resp.StatusCode}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		if resp.Request.URL != nil {
			e.URL = resp.Request.URL.Redacted()
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxBodyExcerpt {
		text = text[:maxBodyExcerpt] + "..."
	}
	e.Body = text
	return e
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsAuthError reports a 401 or 403 response.
func (e *StatusError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFoundError reports a 404 response.
func (e *StatusError) IsNotFoundError() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsRateLimitError reports a 429 response.
func (e *StatusError) IsRateLimitError() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsQueryError reports a 400 response, which Humio uses for query syntax
// errors.
func (e *StatusError) IsQueryError() bool {
	return e.StatusCode == http.StatusBadRequest
}

// IsNetworkError reports gateway failures that usually clear up on retry.
func (e *StatusError) IsNetworkError() bool {
	return IsRetryableStatus(e.StatusCode)
}

// IsRetryableStatus checks if an HTTP status code should trigger a retry.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
