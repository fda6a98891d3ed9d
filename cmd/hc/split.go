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
	"fmt"
	"iter"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/humiocli/internal/events"
	"github.com/sirseerhq/humiocli/internal/output"
)

type splitOptions struct {
	separator string
	encoding  string
	json      bool
	delimiter string
	output    string
}

// splitRecord is one line of split --json output.
type splitRecord struct {
	Record string `json:"record"`
}

func newSplitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [flags] [FILE]",
		Short: "Split a log into events the way ingest does",
		Long: `Split a file or stdin into events with the same separator pattern ingest
uses, to check a separator before ingesting. Events are printed with
--delimiter between them, or as ND-JSON objects with --json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver(cmd, map[string]any{
				"separator": a.cfg.Ingest.Separator,
				"encoding":  a.cfg.Ingest.Encoding,
			})
			if err != nil {
				return err
			}

			delimiter, err := unescape(r.String("delimiter"))
			if err != nil {
				return fmt.Errorf("invalid delimiter: %w", err)
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return a.runSplit(path, splitOptions{
				separator: r.String("separator"),
				encoding:  r.String("encoding"),
				json:      r.Bool("json"),
				delimiter: delimiter,
				output:    r.String("output"),
			})
		},
	}

	cmd.Flags().String("separator", events.DefaultSeparator, "Pattern matching the start of a new event")
	cmd.Flags().String("encoding", "", "Encoding of the input, detected for files if not provided")
	cmd.Flags().Bool("json", false, `Print events as ND-JSON {"record": ...} objects`)
	cmd.Flags().String("delimiter", `\n`, `Text printed between events, backslash escapes such as \n are interpreted`)
	cmd.Flags().String("output", "-", "Output file, - for stdout")

	return cmd
}

func (a *app) runSplit(path string, opts splitOptions) error {
	r, err := a.openInput(path, opts.encoding)
	if err != nil {
		return err
	}
	defer r.Close()

	seg, err := events.NewSegmenter(r, opts.separator)
	if err != nil {
		return err
	}

	writer, err := a.splitWriter(opts.output)
	if err != nil {
		return err
	}
	defer writer.Close()

	count, err := writeRecords(writer, seg.All(), opts)
	if err != nil {
		return err
	}

	a.logger.Debug("Split input", "events", count, "separator", opts.separator)
	return writer.Close()
}

// splitWriter returns a writer for path, or for stdout when path is "-" or
// empty.
func (a *app) splitWriter(path string) (output.OutputWriter, error) {
	if path == "-" || path == "" {
		return output.NewWriter(a.stdout), nil
	}
	return output.NewFileWriter(path)
}

// writeRecords writes each record as a JSON line or as text, with the
// delimiter between consecutive records. It returns how many were written.
func writeRecords(w output.OutputWriter, records iter.Seq2[string, error], opts splitOptions) (int, error) {
	count := 0
	for record, err := range records {
		if err != nil {
			return count, err
		}
		switch {
		case opts.json:
			err = w.Write(splitRecord{Record: record})
		case count > 0:
			err = w.WriteString(opts.delimiter + record + "\n")
		default:
			err = w.WriteString(record + "\n")
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// unescape interprets Go string escapes such as \n and \t.
func unescape(s string) (string, error) {
	return strconv.Unquote(`"` + s + `"`)
}
