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

// Package markup reindents text that looks like XML or similar markup.
//
// Nothing here parses XML. The input is split into a flat stream of tag and
// value tokens with regular expressions and rendered again with indentation,
// which keeps the formatter tolerant of truncated, malformed or mixed
// content that a real parser would reject. Log lines that merely contain a
// stray "<" come back unchanged.
//
// Basic usage:
//
//	out := markup.Process(`<a><b>x</b></a>`, markup.DefaultOptions())
//
// Two renderings are available: StylePretty indents tags one per line and
// StyleKeyValue flattens elements into "name: value" lines. With
// Options.Repair, empty closing tags ("</>") are given the name of the most
// recently opened tag.
package markup
