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

// Package humio provides a client for the Humio log management API.
//
// The package offers:
//   - Repository and view listing over GraphQL, including permissions
//   - Streaming and asynchronous (query job) searches
//   - Unstructured ingest, with a Batcher that packs records under a size limit
//   - Parser creation and update
//   - Repository filtering, fuzzy name suggestions and search string generation
//
// Requests carry the API token (or ingest token) as a bearer token and are
// retried with exponential backoff on gateway errors and transient network
// failures. Errors are mapped to the sentinel errors in internal/errors.
//
// Example usage:
//
//	client := humio.NewClient(humio.Options{
//	    BaseURL: "https://cloud.humio.com",
//	    Token:   os.Getenv("HUMIO_TOKEN"),
//	})
//
//	repos, err := client.Repositories(ctx)
//	if err != nil {
//	    return err
//	}
//
//	err = client.Search(ctx, "sandbox", humio.Query{
//	    String: "error | count()",
//	    Start:  start,
//	    End:    end,
//	}, func(ev humio.Event) error {
//	    fmt.Println(ev.Rawstring())
//	    return nil
//	})
package humio
