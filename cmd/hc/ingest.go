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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/humiocli/internal/encoding"
	humioerrors "github.com/sirseerhq/humiocli/internal/errors"
	"github.com/sirseerhq/humiocli/internal/events"
	"github.com/sirseerhq/humiocli/internal/humio"
	"github.com/sirseerhq/humiocli/internal/metadata"
	"github.com/sirseerhq/humiocli/internal/state"
	"github.com/sirseerhq/humiocli/pkg/version"
)

type ingestOptions struct {
	baseURL      string
	encoding     string
	separator    string
	softLimit    int
	dry          bool
	resume       bool
	fields       map[string]any
	metadataFile string
	stateDir     string
}

func newIngestCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [flags] FILE...",
		Short: "Ingest events from files",
		Long: `Ingest events from files with the provided event separator and ingest token.

If the ingest token is not associated with a parser, a JSON object with the
type field must minimally be included, for example: --fields '{"type":"parsername"}'

If no encoding is provided it is detected per file. Progress is checkpointed
after every request; --resume continues an interrupted ingest of an
unchanged file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver(cmd, map[string]any{
				"encoding":   a.cfg.Ingest.Encoding,
				"separator":  a.cfg.Ingest.Separator,
				"soft-limit": a.cfg.Ingest.SoftLimit,
			})
			if err != nil {
				return err
			}

			var fields map[string]any
			if err := json.Unmarshal([]byte(r.String("fields")), &fields); err != nil {
				return fmt.Errorf("fields must be a JSON object: %w", err)
			}

			opts := ingestOptions{
				baseURL:      r.String("base-url"),
				encoding:     r.String("encoding"),
				separator:    r.String("separator"),
				softLimit:    r.Int("soft-limit"),
				dry:          r.Bool("dry"),
				resume:       r.Bool("resume"),
				fields:       fields,
				metadataFile: r.String("metadata"),
				stateDir:     a.cfg.Ingest.StateDir,
			}

			client, err := a.connect(r, "ingest-token", opts.dry, a.cfg.Humio.Timeout)
			if err != nil {
				return err
			}
			return a.runIngest(cmd.Context(), client, opts, args)
		},
	}

	addConnectionFlags(cmd, "ingest-token", "Your *secret* ingest token found in your repository settings")
	cmd.Flags().String("encoding", "", "Encoding of the files, detected per file if not provided")
	cmd.Flags().String("separator", events.DefaultSeparator, "Pattern matching the start of a new event, "+
		`for example ^\d{4}-\d{2}-\d{2}[T\s]\d{2}:\d{2}:\d{2}`)
	cmd.Flags().Int("soft-limit", humio.DefaultSoftLimit, "Soft limit in bytes for the messages of each request. "+
		"Larger messages are sent by themselves with a warning")
	cmd.Flags().Bool("dry", false, "Prepare ingestion without sending anything")
	cmd.Flags().String("fields", "{}", "JSON object of fields to send with all events")
	cmd.Flags().Bool("resume", false, "Resume from the checkpoint of an interrupted ingest")
	cmd.Flags().String("metadata", "", "Write a JSON summary of the run to this file")

	return cmd
}

func (a *app) runIngest(ctx context.Context, client humio.Client, opts ingestOptions, files []string) error {
	if _, err := events.Compile(opts.separator); err != nil {
		return err
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("cannot ingest %s: %w", file, err)
		}
	}

	tracker := metadata.New()
	var runErr error
	for _, file := range files {
		result, err := a.ingestFile(ctx, client, tracker.RunID(), opts, file)
		tracker.AddFile(result)
		if err != nil {
			runErr = err
			break
		}
	}

	if counter, ok := client.(interface{ RequestCount() int }); ok {
		tracker.SetAPICallCount(counter.RequestCount())
	}

	if opts.metadataFile != "" {
		md := tracker.GenerateMetadata(version.Version, metadata.IngestParams{
			BaseURL:   opts.baseURL,
			Separator: opts.separator,
			Encoding:  opts.encoding,
			SoftLimit: opts.softLimit,
			DryRun:    opts.dry,
			Resume:    opts.resume,
			Fields:    opts.fields,
		})
		if err := metadata.SaveMetadata(md, opts.metadataFile); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to save metadata: %w", err))
		}
	}

	return runErr
}

// ingestFile sends one file. A file whose encoding is unknown is skipped
// and reported in the result without failing the run.
func (a *app) ingestFile(ctx context.Context, client humio.Client, runID string, opts ingestOptions, file string) (metadata.FileResult, error) {
	result := metadata.FileResult{File: file}

	label, confidence, err := a.detectEncoding(file, opts.encoding)
	result.Encoding, result.Confidence = label, confidence
	if err != nil {
		return a.skipFile(result, err)
	}

	r, err := encoding.Open(file, label)
	if err != nil {
		return a.skipFile(result, err)
	}
	defer r.Close()

	seg, err := events.NewSegmenter(r, opts.separator)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	batcher := humio.NewBatcher(client, opts.softLimit, a.logger)
	batcher.Fields = opts.fields
	batcher.DryRun = opts.dry

	var statePath string
	if !opts.dry {
		statePath = a.checkpoint(batcher, runID, opts, file, label)
	}

	stats, err := batcher.Run(ctx, seg.All())
	result.Records = stats.Records
	result.Skipped = stats.Skipped
	result.Bytes = stats.Bytes
	result.Batches = stats.Batches
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("ingest of %s stopped after %d records: %w", file, stats.Skipped+stats.Records, err)
	}

	if statePath != "" {
		if err := state.DeleteState(statePath); err != nil {
			a.logger.Warn("Failed to remove ingest checkpoint", "file", file, "error", err)
		}
	}

	verb := "Ingested"
	if opts.dry {
		verb = "Prepared"
	}
	fmt.Fprintf(a.stderr, "%s %d records from %s (%s in %d requests)\n",
		verb, stats.Records, file, humanize.Bytes(uint64(stats.Bytes)), stats.Batches)
	return result, nil
}

func (a *app) skipFile(result metadata.FileResult, err error) (metadata.FileResult, error) {
	result.Error = err.Error()
	if errors.Is(err, humioerrors.ErrUnknownEncoding) {
		a.logger.Error("Skipping file with unknown encoding",
			"file", result.File, "encoding", result.Encoding, "confidence", result.Confidence)
		return result, nil
	}
	return result, err
}

// checkpoint arranges for progress on file to be saved after each request
// and, with --resume, skips the records a matching checkpoint says were
// sent. It returns the checkpoint path, or "" when checkpoints are
// unavailable.
func (a *app) checkpoint(b *humio.Batcher, runID string, opts ingestOptions, file, label string) string {
	current, err := state.NewIngestState(file, opts.separator, label)
	if err != nil {
		a.logger.Warn("Ingest checkpoints disabled", "file", file, "error", err)
		return ""
	}
	path, err := state.StateFilePath(opts.stateDir, file)
	if err != nil {
		a.logger.Warn("Ingest checkpoints disabled", "file", file, "error", err)
		return ""
	}

	if opts.resume {
		previous, err := state.LoadState(path)
		switch {
		case err == nil && previous.Matches(current):
			b.Skip = previous.RecordsSent
			a.logger.Info("Resuming ingest from checkpoint",
				"file", file, "records_sent", previous.RecordsSent, "run_id", previous.RunID)
			fmt.Fprintf(a.stderr, "Resuming %s after %d records\n", file, previous.RecordsSent)
		case err == nil:
			a.logger.Warn("Checkpoint does not match the file, starting over", "file", file)
		case errors.Is(err, state.ErrNoState):
			a.logger.Info("No checkpoint to resume from", "file", file)
		default:
			a.logger.Warn("Ignoring unreadable checkpoint", "file", file, "error", err)
		}
	}

	current.RunID = runID
	b.OnBatch = func(consumed int) error {
		current.RecordsSent = consumed
		current.UpdatedAt = time.Now().UTC()
		if err := state.SaveState(current, path); err != nil {
			a.logger.Warn("Failed to save ingest checkpoint", "file", file, "error", err)
		}
		return nil
	}
	return path
}
