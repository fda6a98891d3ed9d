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
	"iter"
	"log/slog"
)

// DefaultSoftLimit is the default byte budget for the messages of one
// ingest request.
const DefaultSoftLimit = 1 << 20

// Batcher packs records into ingest requests whose messages stay within a
// soft byte limit. A record larger than the limit is logged and sent in a
// request of its own.
type Batcher struct {
	client    Client
	softLimit int
	logger    *slog.Logger

	// Fields are attached to every message.
	Fields map[string]any
	// DryRun counts batches without sending them.
	DryRun bool
	// Skip drops the first Skip records, for resuming an interrupted run.
	Skip int
	// OnBatch is called after each batch is sent with the number of records
	// consumed so far, skipped records included.
	OnBatch func(consumed int) error
}

// NewBatcher creates a batcher sending through client. A softLimit of zero
// or less selects DefaultSoftLimit.
func NewBatcher(client Client, softLimit int, logger *slog.Logger) *Batcher {
	if softLimit <= 0 {
		softLimit = DefaultSoftLimit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Batcher{client: client, softLimit: softLimit, logger: logger}
}

// Run consumes records until exhausted or an error occurs. The stats
// returned describe what was sent, even on error.
func (b *Batcher) Run(ctx context.Context, records iter.Seq2[string, error]) (IngestStats, error) {
	var (
		stats   IngestStats
		pending []string
		size    int
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if b.DryRun {
			b.logger.Info("dry run, batch not sent", "messages", len(pending), "bytes", size)
		} else if err := b.client.Ingest(ctx, []IngestBatch{{Fields: b.Fields, Messages: pending}}); err != nil {
			return fmt.Errorf("failed to ingest batch %d: %w", stats.Batches+1, err)
		}

		stats.Batches++
		stats.Records += len(pending)
		stats.Bytes += size
		pending = nil
		size = 0

		if b.OnBatch != nil {
			return b.OnBatch(stats.Skipped + stats.Records)
		}
		return nil
	}

	for record, err := range records {
		if err != nil {
			return stats, err
		}
		if stats.Skipped < b.Skip {
			stats.Skipped++
			continue
		}

		n := len(record)
		switch {
		case n > b.softLimit:
			if err := flush(); err != nil {
				return stats, err
			}
			b.logger.Warn("message exceeds soft limit, sending it by itself",
				"bytes", n, "soft_limit", b.softLimit)
			pending, size = []string{record}, n
			if err := flush(); err != nil {
				return stats, err
			}
			continue
		case size+n > b.softLimit:
			if err := flush(); err != nil {
				return stats, err
			}
		}
		pending = append(pending, record)
		size += n
	}

	return stats, flush()
}
