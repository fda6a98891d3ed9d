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

// Package state persists ingest checkpoints so an interrupted ingest can
// resume where it stopped.
//
// A checkpoint records which file was being ingested (path, size and
// modification time), how it was split (separator and encoding) and how
// many records were already sent. Writes are atomic, using a
// write-to-temp-and-rename pattern, and carry a SHA256 checksum so a torn or
// edited file is rejected instead of silently skipping the wrong records.
//
// Checkpoints live in the state directory (~/.config/humio/state by
// default), one per input file.
//
// Example usage:
//
//	cp, err := state.NewIngestState("app.log", "^.", "utf-8")
//	if err != nil {
//	    return err
//	}
//	path, err := state.StateFilePath(stateDir, "app.log")
//	if err != nil {
//	    return err
//	}
//	cp.RecordsSent = 5000
//	err = state.SaveState(cp, path)
package state
