package apierror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	humioerrors "github.com/sirseerhq/humiocli/internal/errors"
)

// Inspector provides methods for analyzing Humio API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsQueryError returns true if Humio rejected a query it could not parse or run.
	IsQueryError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool
}

// HumioErrorInspector implements the Inspector interface by matching the
// messages Humio and the Go HTTP stack produce.
type HumioErrorInspector struct{}

// NewInspector creates an Inspector that checks typed errors in the chain
// first and falls back to message matching.
func NewInspector() Inspector {
	return NewErrorChainInspector(&HumioErrorInspector{})
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *HumioErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "invalid token") ||
		strings.Contains(errStr, "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *HumioErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "could not find")
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *HumioErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests")
}

// IsQueryError checks if the error comes from an invalid query.
func (i *HumioErrorInspector) IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "400 bad request") ||
		strings.Contains(errStr, "syntax error") ||
		strings.Contains(errStr, "unknown function")
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *HumioErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "unexpected eof") ||
		strings.Contains(errStr, "network is unreachable")
}

// ErrorChainInspector wraps a base inspector and adds support for checking errors
// in the error chain using errors.Is and errors.As.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates a new ErrorChainInspector that checks both
// the error chain and falls back to string-based inspection.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

// IsAuthError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsAuthError(err error) bool {
	var authErr interface{ IsAuthError() bool }
	if errors.As(err, &authErr) {
		return authErr.IsAuthError()
	}
	return e.base.IsAuthError(err)
}

// IsNotFoundError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNotFoundError(err error) bool {
	var notFoundErr interface{ IsNotFoundError() bool }
	if errors.As(err, &notFoundErr) {
		return notFoundErr.IsNotFoundError()
	}
	return e.base.IsNotFoundError(err)
}

// IsRateLimitError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsRateLimitError(err error) bool {
	var rateLimitErr interface{ IsRateLimitError() bool }
	if errors.As(err, &rateLimitErr) {
		return rateLimitErr.IsRateLimitError()
	}
	return e.base.IsRateLimitError(err)
}

// IsQueryError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsQueryError(err error) bool {
	var queryErr interface{ IsQueryError() bool }
	if errors.As(err, &queryErr) {
		return queryErr.IsQueryError()
	}
	return e.base.IsQueryError(err)
}

// IsNetworkError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNetworkError(err error) bool {
	var networkErr interface{ IsNetworkError() bool }
	if errors.As(err, &networkErr) && networkErr.IsNetworkError() {
		return true
	}
	return e.base.IsNetworkError(err)
}

// IsRetryable reports whether a failed request is worth repeating. Context
// cancellation never is.
func IsRetryable(inspector Inspector, err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return inspector.IsNetworkError(err)
}

// Map wraps err with the sentinel error matching its class. Errors that
// already carry a sentinel, and unclassified errors, are returned unchanged.
// Rate limits are checked before authentication since a throttled request
// can also be reported as forbidden.
func Map(inspector Inspector, err error, subject string) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		humioerrors.ErrInvalidToken,
		humioerrors.ErrRepoNotFound,
		humioerrors.ErrRateLimit,
		humioerrors.ErrQueryFailed,
		humioerrors.ErrNetworkFailure,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	switch {
	case inspector.IsRateLimitError(err):
		return fmt.Errorf("Humio is rate limiting requests, wait before retrying: %v: %w", err, humioerrors.ErrRateLimit)
	case inspector.IsAuthError(err):
		return fmt.Errorf("authentication failed, provide a valid token via --token or HUMIO_TOKEN: %v: %w", err, humioerrors.ErrInvalidToken)
	case inspector.IsNotFoundError(err):
		return fmt.Errorf("%s not found, check the name and your access permissions: %w", subject, humioerrors.ErrRepoNotFound)
	case inspector.IsQueryError(err):
		return fmt.Errorf("%v: %w", err, humioerrors.ErrQueryFailed)
	case inspector.IsNetworkError(err):
		return fmt.Errorf("network error connecting to Humio, check the base URL and your connection: %v: %w", err, humioerrors.ErrNetworkFailure)
	default:
		return err
	}
}
