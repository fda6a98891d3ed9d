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
	"io"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/humiocli/internal/config"
	"github.com/sirseerhq/humiocli/internal/highlight"
	"github.com/sirseerhq/humiocli/internal/markup"
	"github.com/sirseerhq/humiocli/internal/render"
)

type fmtOptions struct {
	markup   markup.Options
	encoding string
	color    string
}

// newFmtCommand reads its flags directly rather than through a Resolver:
// HUMIO_STYLE and HUMIO_COLOR belong to search and must not leak in.
func newFmtCommand(a *app) *cobra.Command {
	var (
		style    string
		indent   string
		repair   bool
		noStrip  bool
		noClean  bool
		encLabel string
		color    string
	)

	cmd := &cobra.Command{
		Use:   "fmt [flags] [FILE]",
		Short: "Reformat XML-like markup for reading",
		Long: `Reformat XML-like markup from a file or stdin. Tags are put on their own
indented lines (--style pretty) or rendered as name: value lines
(--style kv). Malformed input is reformatted on a best effort basis.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("style") {
				style = a.cfg.Format.Style
			}
			if !cmd.Flags().Changed("indent") && a.cfg.Format.Indent != "" {
				indent = a.cfg.Format.Indent
			}

			s, err := markup.ParseStyle(style)
			if err != nil {
				return err
			}
			opts := fmtOptions{
				markup: markup.Options{
					Strip:  !noStrip,
					Clean:  !noClean,
					Repair: repair,
					Style:  s,
					Indent: indent,
				},
				encoding: encLabel,
				color:    color,
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return a.runFmt(path, opts)
		},
	}

	cmd.Flags().StringVar(&style, "style", "pretty", "Output style (pretty, kv)")
	cmd.Flags().StringVar(&indent, "indent", markup.DefaultIndent, "Indentation unit")
	cmd.Flags().BoolVar(&repair, "repair", false, "Name empty closing tags </> after the last opened tag")
	cmd.Flags().BoolVar(&noStrip, "no-strip", false, "Keep whitespace around tags")
	cmd.Flags().BoolVar(&noClean, "no-clean", false, "Keep namespace declarations and prefixes")
	cmd.Flags().StringVar(&encLabel, "encoding", "", "Encoding of the input, detected for files if not provided")
	cmd.Flags().StringVar(&color, "color", "never", "Syntax-highlight the output (auto, always, never)")

	return cmd
}

func (a *app) runFmt(path string, opts fmtOptions) error {
	if err := config.ValidateChoice("color", opts.color, config.ColorModes); err != nil {
		return err
	}

	r, err := a.openInput(path, opts.encoding)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	out := markup.Process(string(data), opts.markup)
	if render.UseColor(opts.color, a.stdout) {
		hl, err := highlight.New(a.cfg.Search.Style, a.logger)
		if err != nil {
			return err
		}
		out = hl.Highlight(out)
	}

	_, err = fmt.Fprintln(a.stdout, out)
	return err
}
