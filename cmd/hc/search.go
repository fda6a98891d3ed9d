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
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/humiocli/internal/config"
	"github.com/sirseerhq/humiocli/internal/highlight"
	"github.com/sirseerhq/humiocli/internal/humio"
	"github.com/sirseerhq/humiocli/internal/markup"
	"github.com/sirseerhq/humiocli/internal/output"
	"github.com/sirseerhq/humiocli/internal/render"
	"github.com/sirseerhq/humiocli/internal/timeexpr"
)

type searchOptions struct {
	repos     []string
	ignore    string
	start     string
	end       string
	color     string
	style     string
	outformat string
	sort      string
	async     bool
	fields    string
}

func newSearchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [flags] QUERY",
		Short: "Execute a Humio search in the provided time range",
		Long: `Execute a Humio search in the provided time range.

Time may be a snaptime such as -60m@m or a common timestamp such as
2024-01-02T10:00:00Z. Timestamps may be partial: 10:00 means today at 10:00.

Rawstrings are prettified and syntax-highlighted by default while aggregated
searches print ND-JSON results. Multiple arguments are joined into one query.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver(cmd, map[string]any{
				"repo":      a.cfg.Search.Repos,
				"start":     a.cfg.Search.Start,
				"end":       a.cfg.Search.End,
				"color":     a.cfg.Search.Color,
				"style":     a.cfg.Search.Style,
				"outformat": a.cfg.Search.OutFormat,
				"sort":      a.cfg.Search.Sort,
				"async":     a.cfg.Search.Async,
			})
			if err != nil {
				return err
			}

			opts := searchOptions{
				repos:     r.StringSlice("repo"),
				ignore:    r.String("ignore"),
				start:     r.String("start"),
				end:       r.String("end"),
				color:     r.String("color"),
				style:     r.String("style"),
				outformat: r.String("outformat"),
				sort:      r.String("sort"),
				async:     r.Bool("async") && !r.Bool("sync"),
				fields:    r.String("fields"),
			}

			client, err := a.connect(r, "token", false, 0)
			if err != nil {
				return err
			}
			return a.runSearch(cmd.Context(), client, opts, strings.Join(args, " "))
		},
	}

	addConnectionFlags(cmd, "token", "Your *secret* API token found in your account settings")
	cmd.Flags().StringArray("repo", []string{"sandbox"}, "Name of repository or view, supports wildcards and repeated use")
	cmd.Flags().String("ignore", "", "Regular expression of repository names to leave out")
	cmd.Flags().String("start", "@d", "Begin search at this snaptime or common timestring")
	cmd.Flags().String("end", "now", "End search at this snaptime or common timestring")
	cmd.Flags().String("color", "auto", "Colorize known @rawstring formats (auto, always, never)")
	cmd.Flags().String("style", highlight.DefaultStyle, "Style to use when syntax-highlighting ("+strings.Join(highlight.Styles(), ", ")+")")
	cmd.Flags().String("outformat", "pretty", "Output format: pretty and raw print @rawstrings with fallback to ND-JSON, ndjson prints events, "+
		"or-values and or-fields print search filter strings for use in new searches")
	cmd.Flags().String("sort", "@timestamp", "Field to sort results by, pass the empty string to disable")
	cmd.Flags().Bool("async", true, "Run the search as a query job")
	cmd.Flags().Bool("sync", false, "Run a streaming search, which allows results that do not fit in memory when sorting is disabled")
	cmd.Flags().String("fields", "{}", "JSON object of fields to inject into the query wherever {field} occurs. "+
		"A - (dash) reads a single line of JSON from stdin")

	return cmd
}

func (a *app) runSearch(ctx context.Context, client humio.Client, opts searchOptions, query string) error {
	if err := config.ValidateChoice("color", opts.color, config.ColorModes); err != nil {
		return err
	}
	if err := config.ValidateChoice("outformat", opts.outformat, config.OutFormats); err != nil {
		return err
	}

	fields, err := parseFields(opts.fields, a.stdin)
	if err != nil {
		return err
	}
	query = interpolate(query, fields)

	start, end, err := timeexpr.Range(opts.start, opts.end, a.now())
	if err != nil {
		return err
	}

	var ignore *regexp.Regexp
	if opts.ignore != "" {
		if ignore, err = regexp.Compile(opts.ignore); err != nil {
			return fmt.Errorf("invalid --ignore pattern: %w", err)
		}
	}

	printer, err := a.newEventPrinter(opts)
	if err != nil {
		return err
	}

	repos, err := client.Repositories(ctx)
	if err != nil {
		return err
	}
	targets := humio.FilterRepositories(repos, humio.RepositoryFilter{
		Patterns: opts.repos,
		Ignore:   ignore,
		Require:  humio.Readable,
	})
	if len(targets) == 0 {
		return noRepositoriesError(opts.repos, humio.FilterRepositories(repos, humio.RepositoryFilter{Require: humio.Readable}))
	}

	q := humio.Query{String: query, Start: start, End: end, Async: opts.async}
	a.logger.Info("Searching", "repos", humio.Names(targets), "query", query,
		"start", start, "end", end, "async", q.Async)

	searchStrings := opts.outformat == humio.FormatOrValues || opts.outformat == humio.FormatOrFields
	stream := opts.sort == "" && !searchStrings

	var collected []humio.Event
	for _, repo := range targets {
		err := client.Search(ctx, repo.Name, q, func(ev humio.Event) error {
			if stream {
				return printer.Print(ev)
			}
			collected = append(collected, ev)
			return nil
		})
		if err != nil {
			return fmt.Errorf("search in %s failed: %w", repo.Name, err)
		}
	}

	if searchStrings {
		result := humio.SearchStrings(collected, opts.outformat, humio.DefaultIgnoredFields, a.logger)
		var w output.OutputWriter = output.NewWriter(a.stdout)
		return w.Write(result)
	}

	sortEvents(collected, opts.sort)
	for _, ev := range collected {
		if err := printer.Print(ev); err != nil {
			return err
		}
	}
	return nil
}

// parseFields decodes the --fields JSON object. "-" reads one line from
// stdin.
func parseFields(raw string, stdin io.Reader) (map[string]any, error) {
	if raw == "-" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read fields from stdin: %w", err)
		}
		raw = line
	}
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("fields must be a JSON object: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

var reFieldToken = regexp.MustCompile(`\{([A-Za-z_@#][\w.@#-]*)\}`)

// interpolate replaces {name} with the value of field name. Strings are
// inserted as is and other values as JSON. Tokens without a field are kept
// so query syntax using braces survives.
func interpolate(query string, fields map[string]any) string {
	if len(fields) == 0 {
		return query
	}
	return reFieldToken.ReplaceAllStringFunc(query, func(token string) string {
		v, ok := fields[token[1:len(token)-1]]
		if !ok {
			return token
		}
		if s, ok := v.(string); ok {
			return s
		}
		data, err := json.Marshal(v)
		if err != nil {
			return token
		}
		return string(data)
	})
}

// sortEvents orders events by field. Missing values sort as 0, numbers
// before strings, and numeric strings as numbers.
func sortEvents(events []humio.Event, field string) {
	if field == "" {
		return
	}
	slices.SortStableFunc(events, func(a, b humio.Event) int {
		return compareValues(fieldValue(a, field), fieldValue(b, field))
	})
}

func fieldValue(ev humio.Event, field string) any {
	if v, ok := ev[field]; ok && v != nil {
		return v
	}
	return 0.0
}

func compareValues(a, b any) int {
	an, aok := number(a)
	bn, bok := number(b)
	switch {
	case aok && bok:
		return cmp.Compare(an, bn)
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// eventPrinter writes one event per line in the chosen output format.
type eventPrinter struct {
	w           io.Writer
	json        output.OutputWriter
	format      string
	markup      markup.Options
	highlighter *highlight.Highlighter
}

func (a *app) newEventPrinter(opts searchOptions) (*eventPrinter, error) {
	style, err := markup.ParseStyle(a.cfg.Format.Style)
	if err != nil {
		return nil, err
	}
	markupOpts := markup.DefaultOptions()
	markupOpts.Style = style
	if a.cfg.Format.Indent != "" {
		markupOpts.Indent = a.cfg.Format.Indent
	}

	hl, err := highlight.New(opts.style, a.logger)
	if err != nil {
		return nil, err
	}
	if !render.UseColor(opts.color, a.stdout) {
		hl = nil
	}

	return &eventPrinter{
		w:           a.stdout,
		json:        output.NewWriter(a.stdout),
		format:      opts.outformat,
		markup:      markupOpts,
		highlighter: hl,
	}, nil
}

// Print writes ev. Events without a @rawstring, and every event in ndjson
// format, are written as JSON with sorted keys.
func (p *eventPrinter) Print(ev humio.Event) error {
	raw, ok := ev.Rawstring()
	if p.format == "ndjson" || !ok {
		if p.highlighter == nil {
			return p.json.Write(ev)
		}
		var sb strings.Builder
		if err := output.NewWriter(&sb).Write(ev); err != nil {
			return err
		}
		raw = strings.TrimSuffix(sb.String(), "\n")
	} else if p.format == "pretty" {
		raw = markup.Process(raw, p.markup)
	}

	if p.highlighter != nil {
		raw = p.highlighter.Highlight(raw)
	}
	_, err := fmt.Fprintln(p.w, raw)
	return err
}
