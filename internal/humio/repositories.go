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
	"context"
	"sort"
	"time"

	"github.com/shurcooL/graphql"
)

// searchDomainsQuery lists repositories and views with the actions the
// token is allowed to perform on each.
type searchDomainsQuery struct {
	SearchDomains []struct {
		Name     graphql.String
		Typename graphql.String `graphql:"__typename"`

		Read        graphql.Boolean `graphql:"read: isActionAllowed(action: ReadEvents)"`
		Write       graphql.Boolean `graphql:"write: isActionAllowed(action: IngestEvents)"`
		ParserAdmin graphql.Boolean `graphql:"parsers: isActionAllowed(action: ChangeParsers)"`
		AlertAdmin  graphql.Boolean `graphql:"alerts: isActionAllowed(action: ChangeAlertsAndNotifiers)"`
		Dashboards  graphql.Boolean `graphql:"dashboards: isActionAllowed(action: ChangeDashboards)"`
		Queries     graphql.Boolean `graphql:"queries: isActionAllowed(action: ChangeSavedQueries)"`
		Files       graphql.Boolean `graphql:"files: isActionAllowed(action: ChangeFiles)"`

		Repository struct {
			UncompressedByteSize int64
			TimeOfLatestIngest   *time.Time
		} `graphql:"... on Repository"`
	} `graphql:"searchDomains"`
}

// Repositories lists every repository and view visible to the API token,
// sorted by name.
func (c *HTTPClient) Repositories(ctx context.Context) ([]Repository, error) {
	var query searchDomainsQuery
	if err := c.graphql.Query(ctx, &query, nil); err != nil {
		return nil, c.mapError(err, "repository list")
	}

	repos := make([]Repository, 0, len(query.SearchDomains))
	for _, d := range query.SearchDomains {
		repo := Repository{
			Name:                  string(d.Name),
			Type:                  TypeRepository,
			ReadPermission:        bool(d.Read),
			WritePermission:       bool(d.Write),
			ParserAdminPermission: bool(d.ParserAdmin),
			AlertAdminPermission:  bool(d.AlertAdmin),
			DashboardPermission:   bool(d.Dashboards),
			QueryPermission:       bool(d.Queries),
			FilePermission:        bool(d.Files),
			UncompressedBytes:     d.Repository.UncompressedByteSize,
			LastIngest:            d.Repository.TimeOfLatestIngest,
		}
		if string(d.Typename) == "View" {
			repo.Type = TypeView
		}
		repos = append(repos, repo)
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	return repos, nil
}
