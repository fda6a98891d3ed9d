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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/humiocli/internal/encoding"
	"github.com/sirseerhq/humiocli/internal/humio"
)

func newMakeParserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "makeparser [flags] PARSERFILE",
		Short: "Create or update a parser from a file",
		Long: `Take a parser file and create or update a parser with the same name as the
file, without extension, in every repository matching --repo.

If no encoding is provided it is detected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.resolver(cmd, map[string]any{
				"repo":     a.cfg.Search.Repos,
				"encoding": a.cfg.Ingest.Encoding,
			})
			if err != nil {
				return err
			}
			client, err := a.connect(r, "token", false, a.cfg.Humio.Timeout)
			if err != nil {
				return err
			}
			return a.runMakeParser(cmd.Context(), client, r.StringSlice("repo"), r.String("encoding"), args[0])
		},
	}

	addConnectionFlags(cmd, "token", "Your *secret* API token found in your account settings")
	cmd.Flags().StringArray("repo", []string{"sandbox"}, "Repository to create or update the parser in, supports wildcards and repeated use")
	cmd.Flags().String("encoding", "", "Encoding of the parser file, detected if not provided")

	return cmd
}

func (a *app) runMakeParser(ctx context.Context, client humio.Client, patterns []string, label, path string) error {
	label, _, err := a.detectEncoding(path, label)
	if err != nil {
		return err
	}
	source, err := encoding.ReadFile(path, label)
	if err != nil {
		return err
	}

	repos, err := client.Repositories(ctx)
	if err != nil {
		return err
	}
	targets := humio.FilterRepositories(repos, humio.RepositoryFilter{Patterns: patterns})
	if len(targets) == 0 {
		return noRepositoriesError(patterns, repos)
	}

	name := parserName(path)
	for _, repo := range targets {
		if err := client.PutParser(ctx, repo.Name, name, source); err != nil {
			return fmt.Errorf("failed to update parser %s in %s: %w", name, repo.Name, err)
		}
		a.logger.Info("Updated parser", "parser", name, "repo", repo.Name)
		fmt.Fprintf(a.stderr, "Updated parser %s in %s\n", name, repo.Name)
	}
	return nil
}

// parserName is the file name without its last extension.
func parserName(path string) string {
	base := filepath.Base(path)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
		return name
	}
	return base
}
