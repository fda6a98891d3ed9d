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

// Package output writes search results and records as NDJSON (Newline
// Delimited JSON), one object per line.
//
// Objects are encoded with sorted map keys and without HTML escaping, so
// raw log lines containing markup stay readable and the output is stable
// between runs. Writer is safe for concurrent use and flushes every record
// to the underlying io.Writer as it is written.
//
// Example usage:
//
//	w := output.NewWriter(os.Stdout)
//	err := client.Search(ctx, repo, q, func(ev humio.Event) error {
//	    return w.Write(ev)
//	})
//	fmt.Fprintf(os.Stderr, "%d events\n", w.Count())
package output
