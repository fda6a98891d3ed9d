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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// queryRequest is the body of streaming searches and query jobs. Times are
// epoch milliseconds.
type queryRequest struct {
	QueryString string `json:"queryString"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	IsLive      bool   `json:"isLive"`
}

type queryJob struct {
	ID string `json:"id"`
}

type queryJobResult struct {
	Done      bool    `json:"done"`
	Cancelled bool    `json:"cancelled"`
	Events    []Event `json:"events"`
}

func newQueryRequest(q Query) queryRequest {
	return queryRequest{
		QueryString: q.String,
		Start:       q.Start.UnixMilli(),
		End:         q.End.UnixMilli(),
	}
}

func repositoryPath(repo string) string {
	return "/api/v1/repositories/" + url.PathEscape(repo)
}

// Search runs q in repo and calls fn for each event, either streaming
// results as they arrive or, when q.Async is set, through a query job.
func (c *HTTPClient) Search(ctx context.Context, repo string, q Query, fn func(Event) error) error {
	if q.Async {
		return c.searchAsync(ctx, repo, q, fn)
	}
	return c.searchStreaming(ctx, repo, q, fn)
}

func (c *HTTPClient) searchStreaming(ctx context.Context, repo string, q Query, fn func(Event) error) error {
	subject := fmt.Sprintf("repository %q", repo)
	resp, err := c.do(ctx, c.api, http.MethodPost, repositoryPath(repo)+"/query",
		newQueryRequest(q), "application/x-ndjson", subject)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	for {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return c.mapError(fmt.Errorf("failed to read search results: %w", err), subject)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

func (c *HTTPClient) searchAsync(ctx context.Context, repo string, q Query, fn func(Event) error) error {
	subject := fmt.Sprintf("repository %q", repo)
	base := repositoryPath(repo) + "/queryjobs"

	var job queryJob
	if err := c.doJSON(ctx, c.api, http.MethodPost, base, newQueryRequest(q), &job, subject); err != nil {
		return err
	}
	jobPath := base + "/" + url.PathEscape(job.ID)

	defer func() {
		// The job is removed even when ctx was cancelled.
		cleanup, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = c.doJSON(cleanup, c.api, http.MethodDelete, jobPath, nil, nil, subject)
	}()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var result queryJobResult
		if err := c.doJSON(ctx, c.api, http.MethodGet, jobPath, nil, &result, subject); err != nil {
			return err
		}
		if result.Cancelled {
			return fmt.Errorf("query job %s in %s was cancelled by the server", job.ID, subject)
		}
		if result.Done {
			for _, ev := range result.Events {
				if err := fn(ev); err != nil {
					return err
				}
			}
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
