// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package humio

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirseerhq/humiocli/internal/apierror"
	"github.com/sirseerhq/humiocli/pkg/version"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxRetries is the maximum number of attempts
	MaxRetries int
	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoff returns the wait before attempt+1.
func (c *RetryConfig) backoff(attempt int) time.Duration {
	d := float64(c.InitialBackoff) * math.Pow(c.BackoffMultiplier, float64(attempt))
	if d > float64(c.MaxBackoff) {
		d = float64(c.MaxBackoff)
	}
	return time.Duration(d)
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}

// authTransport adds the bearer token and user agent to every request and
// counts requests. A non-zero limit caps the response body size.
type authTransport struct {
	token    string
	base     http.RoundTripper
	limit    int64
	requests *atomic.Int64
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	if t.requests != nil {
		t.requests.Add(1)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if t.limit > 0 && resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      t.limit,
		}
	}

	return resp, nil
}

// retryTransport adds exponential backoff retry logic for transient failures.
// Request bodies are replayed through GetBody, so requests built with
// http.NewRequest from a bytes or strings reader can be retried.
type retryTransport struct {
	base      http.RoundTripper
	config    *RetryConfig
	inspector apierror.Inspector
	sleep     func(time.Duration) <-chan time.Time
}

func newRetryTransport(base http.RoundTripper, config *RetryConfig) *retryTransport {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &retryTransport{
		base:      base,
		config:    config,
		inspector: apierror.NewInspector(),
		sleep:     time.After,
	}
}

// RoundTrip implements http.RoundTripper with retry logic.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	attempts := max(t.config.MaxRetries, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		attemptReq := req.Clone(req.Context())
		if attempt > 0 && req.Body != nil && req.Body != http.NoBody {
			if req.GetBody == nil {
				return nil, lastErr
			}
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := t.base.RoundTrip(attemptReq)

		if err == nil && !apierror.IsRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			if !apierror.IsRetryable(t.inspector, err) {
				return nil, err
			}
			lastErr = fmt.Errorf("attempt %d/%d: %w", attempt+1, attempts, err)
		} else {
			// The last gateway error is handed back so callers can report it.
			if attempt == attempts-1 {
				return resp, nil
			}
			lastErr = fmt.Errorf("attempt %d/%d: received status %d", attempt+1, attempts, resp.StatusCode)
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt < attempts-1 {
			select {
			case <-t.sleep(t.config.backoff(attempt)):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		}
	}

	return nil, lastErr
}
