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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirseerhq/humiocli/internal/apierror"
)

// errorBodyLimit caps how much of a failed response is kept for the error.
const errorBodyLimit = 4096

// do sends a JSON request and returns the response when the status is 2xx.
// Any other status is turned into an *apierror.StatusError and mapped to a
// sentinel error; the response body is closed in that case.
func (c *HTTPClient) do(ctx context.Context, client *http.Client, method, path string, body any, accept, subject string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, c.mapError(err, subject)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, c.mapError(apierror.NewStatusError(resp, msg), subject)
	}

	return resp, nil
}

// doJSON is do followed by decoding the response into out, if out is non-nil.
func (c *HTTPClient) doJSON(ctx context.Context, client *http.Client, method, path string, body, out any, subject string) error {
	resp, err := c.do(ctx, client, method, path, body, "application/json", subject)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.mapError(fmt.Errorf("failed to decode response: %w", err), subject)
	}
	return nil
}

// mapError maps transport and HTTP errors to our domain errors with
// actionable messages.
func (c *HTTPClient) mapError(err error, subject string) error {
	return apierror.Map(c.inspector, err, subject)
}
