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

// Package metadata types define the structures recorded for an ingest run.
package metadata

import (
	"time"
)

// IngestMetadata is the complete record of one ingest run: what was asked
// for, what happened to each file and the totals.
type IngestMetadata struct {
	Version    string        `json:"hc_version"`
	RunID      string        `json:"run_id"`
	Parameters IngestParams  `json:"parameters"`
	Files      []FileResult  `json:"files"`
	Results    IngestResults `json:"results"`
}

// IngestParams captures the settings used for the run. Tokens are never
// recorded.
type IngestParams struct {
	BaseURL   string         `json:"base_url"`
	Separator string         `json:"separator"`
	Encoding  string         `json:"encoding,omitempty"`
	SoftLimit int            `json:"soft_limit"`
	DryRun    bool           `json:"dry_run"`
	Resume    bool           `json:"resume"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// FileResult describes the ingest of one file.
type FileResult struct {
	File       string  `json:"file"`
	Encoding   string  `json:"encoding"`
	Confidence float64 `json:"confidence"`
	Records    int     `json:"records"`
	Skipped    int     `json:"skipped"`
	Bytes      int     `json:"bytes"`
	Batches    int     `json:"batches"`
	// Error is set when the file was not ingested completely.
	Error string `json:"error,omitempty"`
}

// IngestResults holds the run totals.
type IngestResults struct {
	FilesIngested int       `json:"files_ingested"`
	FilesFailed   int       `json:"files_failed"`
	TotalRecords  int       `json:"total_records"`
	TotalSkipped  int       `json:"total_skipped"`
	TotalBytes    int       `json:"total_bytes"`
	TotalBatches  int       `json:"total_batches"`
	APICallCount  int       `json:"api_calls_made"`
	Duration      string    `json:"duration"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}
