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
	"reflect"
	"regexp"
	"testing"
)

func TestFilterRepositories(t *testing.T) {
	repos := []Repository{
		{Name: "sandbox", Type: TypeRepository, ReadPermission: true},
		{Name: "prod-logs", Type: TypeRepository, ReadPermission: true},
		{Name: "prod-audit", Type: TypeRepository},
		{Name: "prod-view", Type: TypeView, ReadPermission: true},
		{Name: "[odd]", Type: TypeRepository, ReadPermission: true},
	}

	tests := []struct {
		name   string
		filter RepositoryFilter
		want   []string
	}{
		{
			name:   "no patterns selects all",
			filter: RepositoryFilter{},
			want:   []string{"sandbox", "prod-logs", "prod-audit", "prod-view", "[odd]"},
		},
		{
			name:   "glob",
			filter: RepositoryFilter{Patterns: []string{"prod-*"}},
			want:   []string{"prod-logs", "prod-audit", "prod-view"},
		},
		{
			name:   "several patterns",
			filter: RepositoryFilter{Patterns: []string{"sandbox", "*-logs"}},
			want:   []string{"sandbox", "prod-logs"},
		},
		{
			name:   "readable only",
			filter: RepositoryFilter{Patterns: []string{"prod-*"}, Require: Readable},
			want:   []string{"prod-logs", "prod-view"},
		},
		{
			name:   "strict views need an exact name",
			filter: RepositoryFilter{Patterns: []string{"prod-*"}, StrictViews: true},
			want:   []string{"prod-logs", "prod-audit"},
		},
		{
			name:   "strict views exact match",
			filter: RepositoryFilter{Patterns: []string{"prod-view"}, StrictViews: true},
			want:   []string{"prod-view"},
		},
		{
			name:   "ignore",
			filter: RepositoryFilter{Patterns: []string{"*"}, Ignore: regexp.MustCompile("audit|view")},
			want:   []string{"sandbox", "prod-logs", "[odd]"},
		},
		{
			name:   "malformed pattern matches itself",
			filter: RepositoryFilter{Patterns: []string{"[odd"}},
			want:   nil,
		},
		{
			name:   "nothing matches",
			filter: RepositoryFilter{Patterns: []string{"missing"}},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRepositories(repos, tt.filter)
			var names []string
			if got != nil {
				names = Names(got)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("FilterRepositories() = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"sandbox", "prod-logs", "prod-audit", "staging"}

	got := Suggest("sandbx", candidates, 3)
	if len(got) == 0 || got[0] != "sandbox" {
		t.Errorf("Suggest(sandbx) = %v, want sandbox first", got)
	}

	if got := Suggest("prod", candidates, 1); len(got) != 1 {
		t.Errorf("Suggest with limit 1 returned %v", got)
	}

	if got := Suggest("zzz", candidates, 3); len(got) != 0 {
		t.Errorf("Suggest(zzz) = %v, want none", got)
	}
}
