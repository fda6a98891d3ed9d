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

package state

import (
	"time"
)

// CurrentVersion is the current state schema version.
// Increment this when making breaking changes to the IngestState structure.
const CurrentVersion = 1

// IngestState is the checkpoint of one file being ingested.
type IngestState struct {
	// Version indicates the schema version of this state file.
	Version int `json:"version"`

	// Checksum is the SHA256 hash of the state content (excluding this field).
	Checksum string `json:"checksum"`

	// File is the absolute path of the ingested file.
	File string `json:"file"`

	// Size and ModTime identify the file contents the checkpoint refers to.
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`

	// Separator and Encoding determine how the file was split into records.
	Separator string `json:"separator"`
	Encoding  string `json:"encoding"`

	// RecordsSent counts records confirmed by the server, from the start of
	// the file.
	RecordsSent int `json:"records_sent"`

	// RunID is the id of the ingest run that wrote the checkpoint.
	RunID string `json:"run_id"`

	UpdatedAt time.Time `json:"updated_at"`
}
