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
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shurcooL/graphql"

	"github.com/sirseerhq/humiocli/internal/apierror"
)

// Client defines the interface for interacting with the Humio API.
// This interface allows for easy mocking in tests.
type Client interface {
	// Repositories lists every repository and view visible to the API token.
	Repositories(ctx context.Context) ([]Repository, error)

	// Search runs q in repo and calls fn for each event. Returning an error
	// from fn stops the search and is returned as is.
	Search(ctx context.Context, repo string, q Query, fn func(Event) error) error

	// Ingest sends one unstructured ingest request using the ingest token.
	Ingest(ctx context.Context, batches []IngestBatch) error

	// PutParser creates or replaces the parser name in repo.
	PutParser(ctx context.Context, repo, name, source string) error
}

// graphqlResponseLimit caps GraphQL response bodies.
const graphqlResponseLimit = 10 * 1024 * 1024 // 10MB

// DefaultPollInterval is how often query jobs are polled.
const DefaultPollInterval = 500 * time.Millisecond

// Options configures an HTTPClient.
type Options struct {
	BaseURL     string
	Token       string
	IngestToken string
	// Timeout bounds each request, 0 means no limit. Streaming searches
	// may run long, so prefer a context deadline for those.
	Timeout      time.Duration
	PollInterval time.Duration
	// Transport replaces http.DefaultTransport, mostly for tests.
	Transport http.RoundTripper
	// Retry configures retries of gateway errors and transient network
	// failures. Nil selects DefaultRetryConfig.
	Retry *RetryConfig
}

// HTTPClient implements Client against a Humio server.
type HTTPClient struct {
	baseURL      string
	api          *http.Client
	ingest       *http.Client
	graphql      *graphql.Client
	pollInterval time.Duration
	inspector    apierror.Inspector
	requests     *atomic.Int64
}

// NewClient creates a client. Token is used for searches, repository
// listing and parsers; IngestToken for ingest.
func NewClient(opts Options) *HTTPClient {
	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}
	retry := newRetryTransport(base, opts.Retry)

	requests := &atomic.Int64{}
	baseURL := strings.TrimRight(opts.BaseURL, "/")

	api := &http.Client{
		Timeout:   opts.Timeout,
		Transport: &authTransport{token: opts.Token, base: retry, requests: requests},
	}
	gql := &http.Client{
		Timeout:   opts.Timeout,
		Transport: &authTransport{token: opts.Token, base: retry, requests: requests, limit: graphqlResponseLimit},
	}
	ingest := &http.Client{
		Timeout:   opts.Timeout,
		Transport: &authTransport{token: opts.IngestToken, base: retry, requests: requests},
	}

	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	return &HTTPClient{
		baseURL:      baseURL,
		api:          api,
		ingest:       ingest,
		graphql:      graphql.NewClient(baseURL+"/graphql", gql),
		pollInterval: poll,
		inspector:    apierror.NewInspector(),
		requests:     requests,
	}
}

// RequestCount returns the number of API requests made so far. Retries of
// a request are not counted.
func (c *HTTPClient) RequestCount() int {
	return int(c.requests.Load())
}
