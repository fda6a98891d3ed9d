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
	"strings"
	"time"
)

// Repository describes a repository or view the token can see.
type Repository struct {
	Name string `json:"name"`
	// Type is "repository" or "view".
	Type string `json:"type"`

	ReadPermission        bool `json:"read_permission"`
	WritePermission       bool `json:"write_permission"`
	ParserAdminPermission bool `json:"parseradmin_permission"`
	AlertAdminPermission  bool `json:"alertadmin_permission"`
	DashboardPermission   bool `json:"dashboard_permission"`
	QueryPermission       bool `json:"query_permission"`
	FilePermission        bool `json:"file_permission"`

	// UncompressedBytes is zero for views.
	UncompressedBytes int64      `json:"uncompressed_bytes"`
	LastIngest        *time.Time `json:"last_ingest,omitempty"`
}

// Repository types.
const (
	TypeRepository = "repository"
	TypeView       = "view"
)

// IsView reports whether the search domain is a view.
func (r Repository) IsView() bool {
	return strings.EqualFold(r.Type, TypeView)
}

// Event is a single search result. Field values keep their JSON types.
type Event map[string]any

// Rawstring returns the @rawstring field and whether it was present.
func (e Event) Rawstring() (string, bool) {
	v, ok := e["@rawstring"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Query is a search over a fixed time range.
type Query struct {
	String string
	Start  time.Time
	End    time.Time
	// Async runs the search as a query job that is polled until done.
	// Otherwise results are streamed as they are found.
	Async bool
}

// IngestBatch is one element of an unstructured ingest request.
type IngestBatch struct {
	Fields   map[string]any `json:"fields,omitempty"`
	Messages []string       `json:"messages"`
}

// IngestStats summarizes an ingest run.
type IngestStats struct {
	Records int `json:"records"`
	Skipped int `json:"skipped"`
	Bytes   int `json:"bytes"`
	Batches int `json:"batches"`
}
