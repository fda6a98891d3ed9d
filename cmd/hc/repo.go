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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/humiocli/internal/config"
	"github.com/sirseerhq/humiocli/internal/humio"
	"github.com/sirseerhq/humiocli/internal/output"
	"github.com/sirseerhq/humiocli/internal/render"
)

var repoFilters = []string{"", "read", "noread"}

type repoOptions struct {
	patterns []string
	color    string
	filter   string
	json     bool
}

func newRepoCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo [PATTERN...]",
		Short: "List available repositories and views",
		Long: `List available repositories and views with their permissions, size and
time of last ingest. Optional patterns are shell globs on the name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver(cmd, map[string]any{"color": a.cfg.Search.Color})
			if err != nil {
				return err
			}
			client, err := a.connect(r, "token", false, a.cfg.Humio.Timeout)
			if err != nil {
				return err
			}
			return a.runRepo(cmd.Context(), client, repoOptions{
				patterns: args,
				color:    r.String("color"),
				filter:   r.String("filter"),
				json:     r.Bool("json"),
			})
		},
	}

	addConnectionFlags(cmd, "token", "Your *secret* API token found in your account settings")
	cmd.Flags().String("color", "auto", "Colorize output (auto, always, never)")
	cmd.Flags().String("filter", "", "Only list repos with (read) or without (noread) read access")
	cmd.Flags().Bool("json", false, "Print repositories as ND-JSON instead of a table")

	return cmd
}

func (a *app) runRepo(ctx context.Context, client humio.Client, opts repoOptions) error {
	if err := config.ValidateChoice("color", opts.color, config.ColorModes); err != nil {
		return err
	}
	if err := config.ValidateChoice("filter", opts.filter, repoFilters); err != nil {
		return err
	}

	repos, err := client.Repositories(ctx)
	if err != nil {
		return err
	}

	f := humio.RepositoryFilter{Patterns: opts.patterns}
	switch opts.filter {
	case "read":
		f.Require = humio.Readable
	case "noread":
		f.Require = func(r humio.Repository) bool { return !r.ReadPermission }
	}
	repos = humio.FilterRepositories(repos, f)

	if opts.json {
		w := output.NewWriter(a.stdout)
		for _, repo := range repos {
			if err := w.Write(repo); err != nil {
				return err
			}
		}
		return nil
	}

	_, err = fmt.Fprintln(a.stdout, render.RepositoryTable(a.stdout, repos, render.UseColor(opts.color, a.stdout), a.now()))
	return err
}
