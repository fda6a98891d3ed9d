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
	"github.com/spf13/cobra"

	"github.com/sirseerhq/humiocli/internal/config"
	"github.com/sirseerhq/humiocli/pkg/version"
)

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hc",
		Short: "Humio CLI for searching, ingesting and formatting logs",
		Long: `Humio CLI for working with the Humio API. Defaults to the search command.

For detailed help about each command try:

    hc <command> --help

All options may be provided by environment variables on the format
HUMIO_<OPTION>=<VALUE>. If a .env file exists at ~/.config/humio/.env it is
sourced on start without overwriting the existing environment.`,
		Version:           version.Version,
		SilenceUsage:      true, // Don't show usage on error
		SilenceErrors:     true, // We'll handle error printing ourselves
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: .humiocli.yaml or ~/.config/humio/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", config.DefaultEnvFile(), "Dotenv file to source")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("log-file", "", "Write logs to this rotated file instead of stderr")

	rootCmd.AddCommand(
		newSearchCommand(a),
		newRepoCommand(a),
		newIngestCommand(a),
		newMakeParserCommand(a),
		newFmtCommand(a),
		newSplitCommand(a),
	)

	return rootCmd
}
