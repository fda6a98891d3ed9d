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
	"path"
	"regexp"

	"github.com/sahilm/fuzzy"
)

// RepositoryFilter selects repositories by name.
type RepositoryFilter struct {
	// Patterns are shell globs; a repository matching any of them is
	// selected. No patterns selects everything.
	Patterns []string
	// Ignore drops repositories whose name matches.
	Ignore *regexp.Regexp
	// StrictViews only selects a view when a pattern names it exactly.
	StrictViews bool
	// Require, when set, must return true for a repository to be selected.
	Require func(Repository) bool
}

// Readable is a Require predicate for repositories the token can search.
func Readable(r Repository) bool {
	return r.ReadPermission
}

// FilterRepositories returns the repositories selected by f, keeping their
// order.
func FilterRepositories(repos []Repository, f RepositoryFilter) []Repository {
	var selected []Repository
	for _, repo := range repos {
		if f.Ignore != nil && f.Ignore.MatchString(repo.Name) {
			continue
		}
		if f.Require != nil && !f.Require(repo) {
			continue
		}
		if !f.matches(repo) {
			continue
		}
		selected = append(selected, repo)
	}
	return selected
}

func (f RepositoryFilter) matches(repo Repository) bool {
	if len(f.Patterns) == 0 {
		return true
	}
	for _, pattern := range f.Patterns {
		if f.StrictViews && repo.IsView() {
			if pattern == repo.Name {
				return true
			}
			continue
		}
		// A malformed pattern only matches itself.
		if ok, err := path.Match(pattern, repo.Name); ok || (err != nil && pattern == repo.Name) {
			return true
		}
	}
	return false
}

// Names returns the repository names in order.
func Names(repos []Repository) []string {
	names := make([]string, len(repos))
	for i, r := range repos {
		names[i] = r.Name
	}
	return names
}

// Suggest returns up to limit candidates that fuzzily match name, best
// match first.
func Suggest(name string, candidates []string, limit int) []string {
	matches := fuzzy.Find(name, candidates)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
