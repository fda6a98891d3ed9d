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
	"fmt"
	"net/http"
	"net/url"
)

// Ingest sends one unstructured ingest request using the ingest token.
func (c *HTTPClient) Ingest(ctx context.Context, batches []IngestBatch) error {
	if len(batches) == 0 {
		return nil
	}
	return c.doJSON(ctx, c.ingest, http.MethodPost, "/api/v1/ingest/humio-unstructured",
		batches, nil, "ingest endpoint")
}

type parserRequest struct {
	Parser string `json:"parser"`
	Kind   string `json:"kind"`
}

// PutParser creates or replaces the parser name in repo.
func (c *HTTPClient) PutParser(ctx context.Context, repo, name, source string) error {
	path := repositoryPath(repo) + "/parsers/" + url.PathEscape(name)
	subject := fmt.Sprintf("repository %q", repo)
	return c.doJSON(ctx, c.api, http.MethodPut, path,
		parserRequest{Parser: source, Kind: "humio"}, nil, subject)
}
