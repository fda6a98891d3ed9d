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
	"bytes"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
)

// Search string formats.
const (
	FormatOrValues = "or-values"
	FormatOrFields = "or-fields"
)

// SubsearchKey holds the conjunction of every field's disjunction.
const SubsearchKey = "SUBSEARCH"

// DefaultIgnoredFields are left out of search strings.
var DefaultIgnoredFields = []string{"@timestamp", "@rawstring"}

// maxSearchFields is the number of fields above which a warning is logged.
const maxSearchFields = 5

// SearchStrings builds a search string per field from the distinct values
// seen in events, formatted as '"value" or "value"' (FormatOrValues) or
// '"field"="value" or ...' (FormatOrFields), plus SUBSEARCH which joins
// them all as "(a) and (b)". Values and fields are sorted.
func SearchStrings(events []Event, format string, ignored []string, logger *slog.Logger) map[string]string {
	skip := make(map[string]bool, len(ignored))
	for _, f := range ignored {
		skip[f] = true
	}

	seen := make(map[string]map[string]bool)
	for _, ev := range events {
		for field, value := range ev {
			if skip[field] {
				continue
			}
			term := encodeJSON(value)
			if format == FormatOrFields {
				term = encodeJSON(field) + "=" + term
			}
			if seen[field] == nil {
				seen[field] = make(map[string]bool)
			}
			seen[field][term] = true
		}
	}

	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	if len(fields) > maxSearchFields && logger != nil {
		logger.Warn("search string includes more than 5 fields, did you forget to select relevant fields?",
			"fields", fields)
	}

	out := make(map[string]string, len(fields)+1)
	clauses := make([]string, 0, len(fields))
	for _, field := range fields {
		terms := make([]string, 0, len(seen[field]))
		for term := range seen[field] {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		out[field] = strings.Join(terms, " or ")
		clauses = append(clauses, out[field])
	}
	out[SubsearchKey] = "(" + strings.Join(clauses, ") and (") + ")"

	return out
}

// encodeJSON renders v as compact JSON without HTML escaping.
func encodeJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
