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

package render

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/sirseerhq/humiocli/internal/humio"
)

const (
	markYes   = "✓"
	markNo    = "✗"
	noEvents  = "no events"
	colorGood = lipgloss.Color("2")
	colorBad  = lipgloss.Color("1")
)

var repositoryHeaders = []string{
	"Repository name", "Last ingest", "Real size",
	"Read", "Write", "Parsers", "Alerts", "Dashboards", "Queries", "Files",
}

// RepositoryTable renders repos as a table. Readable repository names and
// granted permissions are green, the rest red, when color is set. Ingest
// ages are relative to now.
func RepositoryTable(w io.Writer, repos []humio.Repository, color bool, now time.Time) string {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	rows := make([][]string, len(repos))
	for i, repo := range repos {
		rows[i] = []string{
			repo.Name,
			lastIngest(repo, now),
			humanize.Bytes(uint64(max(repo.UncompressedBytes, 0))),
			mark(repo.ReadPermission),
			mark(repo.WritePermission),
			mark(repo.ParserAdminPermission),
			mark(repo.AlertAdminPermission),
			mark(repo.DashboardPermission),
			mark(repo.QueryPermission),
			mark(repo.FilePermission),
		}
	}

	cell := r.NewStyle().PaddingRight(1)
	header := cell.Bold(true)
	good := cell.Foreground(colorGood)
	bad := cell.Foreground(colorBad)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(r.NewStyle()).
		Headers(repositoryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if row < 0 || row >= len(rows) {
				return cell
			}
			value := rows[row][col]
			switch {
			case col == 0 && repos[row].ReadPermission:
				return good
			case col == 0:
				return bad
			case value == markYes:
				return good
			case value == markNo, value == noEvents:
				return bad
			default:
				return cell
			}
		})

	return t.String()
}

func mark(granted bool) string {
	if granted {
		return markYes
	}
	return markNo
}

func lastIngest(repo humio.Repository, now time.Time) string {
	if repo.LastIngest == nil || repo.LastIngest.IsZero() {
		return noEvents
	}
	return humanize.RelTime(*repo.LastIngest, now, "ago", "from now")
}
