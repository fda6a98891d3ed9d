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

// Package metadata records what an ingest run did: the parameters used, a
// result per file and the run totals, under a unique run id.
//
// The record is written as indented JSON with "hc ingest --metadata FILE",
// giving scripts and audits a machine readable summary of the run.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Tracker collects per-file results during an ingest run. Create one at the
// start of the run. It is safe for concurrent use.
type Tracker struct {
	mu           sync.Mutex
	runID        string
	startTime    time.Time
	apiCallCount int
	files        []FileResult
}

// New creates a tracker with a fresh run id, started now.
func New() *Tracker {
	return &Tracker{
		runID:     uuid.NewString(),
		startTime: time.Now(),
	}
}

// RunID returns the run id, which is also stored in ingest checkpoints.
func (t *Tracker) RunID() string {
	return t.runID
}

// AddFile records the result of one file.
func (t *Tracker) AddFile(result FileResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = append(t.files, result)
}

// SetAPICallCount records the number of API requests made during the run.
func (t *Tracker) SetAPICallCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apiCallCount = n
}

// GenerateMetadata creates the record for the run so far. Call it at the
// end of the run.
func (t *Tracker) GenerateMetadata(version string, params IngestParams) *IngestMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()
	results := IngestResults{
		APICallCount: t.apiCallCount,
		Duration:     completedAt.Sub(t.startTime).String(),
		StartedAt:    t.startTime,
		CompletedAt:  completedAt,
	}

	for _, f := range t.files {
		if f.Error != "" {
			results.FilesFailed++
		} else {
			results.FilesIngested++
		}
		results.TotalRecords += f.Records
		results.TotalSkipped += f.Skipped
		results.TotalBytes += f.Bytes
		results.TotalBatches += f.Batches
	}

	return &IngestMetadata{
		Version:    version,
		RunID:      t.runID,
		Parameters: params,
		Files:      append([]FileResult{}, t.files...),
		Results:    results,
	}
}

// SaveMetadata writes the record to path as indented JSON. The file is
// written to a temporary file first and renamed into place.
func SaveMetadata(metadata *IngestMetadata, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metadata directory: %w", err)
		}
	}

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to save metadata file: %w", err)
	}

	return nil
}

// LoadMetadata reads a record written by SaveMetadata.
func LoadMetadata(path string) (*IngestMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	var metadata IngestMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &metadata, nil
}

// WriteMetadataToWriter serializes metadata as indented JSON to w.
func WriteMetadataToWriter(metadata *IngestMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
