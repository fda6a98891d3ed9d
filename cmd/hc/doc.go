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

// Package main implements hc, a command-line client for the Humio log
// platform. Without a subcommand hc runs a search.
//
// The CLI supports:
//   - Searching one or more repositories with relative time expressions
//   - Pretty printing XML-like @rawstrings with syntax highlighting
//   - Emitting search filter strings to pipe into a follow-up search
//   - Listing repositories and permissions
//   - Ingesting multi-line log files with resumable checkpoints
//   - Creating parsers from files
//   - Reformatting markup and splitting logs into records offline
//
// Usage:
//
//	hc [search] [flags] QUERY
//	hc repo|ingest|makeparser|fmt|split [flags] ...
//
// Example:
//
//	export HUMIO_BASE_URL=https://cloud.humio.com HUMIO_TOKEN=secret
//	hc --repo 'prod-*' --start -60m@m 'error | tail(10)'
//
// Every option can also be given as HUMIO_<OPTION>, and
// ~/.config/humio/.env is sourced without overwriting the environment.
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication/authorization error or no matching repository
//   - 3: Network error
package main
