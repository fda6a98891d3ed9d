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
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirseerhq/humiocli/internal/humio"
)

func searchArgs(extra ...string) []string {
	return append([]string{"--base-url", testBaseURL, "--token", "secret", "--color", "never"}, extra...)
}

func TestSearch_Pretty(t *testing.T) {
	client := humio.NewMockClientWithOptions(humio.WithEvents("sandbox", []humio.Event{
		{"@timestamp": 2.0, "@rawstring": "<a><b>x</b></a>"},
		{"@timestamp": 1.0, "@rawstring": "plain line"},
		{"@timestamp": 3.0, "count": 7.0},
	}))

	res := runHC(t, client, "", searchArgs("error", "|", "tail(10)")...)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}

	want := "plain line\n\n<a>\n    <b>x</b>\n</a>\n{\"@timestamp\":3,\"count\":7}\n"
	if res.stdout != want {
		t.Errorf("stdout = %q, want %q", res.stdout, want)
	}

	if len(client.Searches) != 1 {
		t.Fatalf("searches = %d, want 1", len(client.Searches))
	}
	s := client.Searches[0]
	if s.Repo != "sandbox" || s.Query.String != "error | tail(10)" || !s.Query.Async {
		t.Errorf("search = %+v", s)
	}
	startOfDay := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	if !s.Query.Start.Equal(startOfDay) || !s.Query.End.Equal(testNow) {
		t.Errorf("range = %v - %v", s.Query.Start, s.Query.End)
	}

	if len(res.options) != 1 || res.options[0].Token != "secret" || res.options[0].BaseURL != testBaseURL {
		t.Errorf("client options = %+v", res.options)
	}
}

func TestSearch_OutputFormats(t *testing.T) {
	events := []humio.Event{
		{"@timestamp": 1.0, "@rawstring": "<a>1</a>", "host": "web-2"},
		{"@timestamp": 2.0, "@rawstring": "<a>2</a>", "host": "web-1"},
	}

	tests := []struct {
		format string
		want   string
	}{
		{"raw", "<a>1</a>\n<a>2</a>\n"},
		{"ndjson", `{"@rawstring":"<a>1</a>","@timestamp":1,"host":"web-2"}` + "\n" +
			`{"@rawstring":"<a>2</a>","@timestamp":2,"host":"web-1"}` + "\n"},
		{"or-values", `{"SUBSEARCH":"(\"web-1\" or \"web-2\")","host":"\"web-1\" or \"web-2\""}` + "\n"},
		{"or-fields", `{"SUBSEARCH":"(\"host\"=\"web-1\" or \"host\"=\"web-2\")","host":"\"host\"=\"web-1\" or \"host\"=\"web-2\""}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			client := humio.NewMockClientWithOptions(humio.WithEvents("sandbox", events))
			res := runHC(t, client, "", searchArgs("--outformat", tt.format, "*")...)
			if res.code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
			}
			if res.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.want)
			}
		})
	}
}

func TestSearch_SortDisabledStreams(t *testing.T) {
	client := humio.NewMockClientWithOptions(humio.WithEvents("sandbox", []humio.Event{
		{"@timestamp": 2.0, "@rawstring": "second"},
		{"@timestamp": 1.0, "@rawstring": "first"},
	}))

	res := runHC(t, client, "", searchArgs("--sort", "", "--sync", "*")...)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}
	if res.stdout != "second\nfirst\n" {
		t.Errorf("stdout = %q", res.stdout)
	}
	if client.Searches[0].Query.Async {
		t.Error("--sync should run a streaming search")
	}
}

func TestSearch_Repositories(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantRepos []string
		wantCode  int
		wantErr   string
	}{
		{
			name:      "glob matches repositories and views",
			args:      []string{"--repo", "prod-*"},
			wantRepos: []string{"prod-logs", "prod-view"},
		},
		{
			name:      "repeated repo flag",
			args:      []string{"--repo", "sandbox", "--repo", "prod-logs"},
			wantRepos: []string{"sandbox", "prod-logs"},
		},
		{
			name:      "ignore pattern",
			args:      []string{"--repo", "*", "--ignore", "^prod"},
			wantRepos: []string{"sandbox"},
		},
		{
			name:     "unreadable repository is not searched",
			args:     []string{"--repo", "audit"},
			wantCode: 2,
			wantErr:  "no matching repositories",
		},
		{
			name:     "typo gets a suggestion",
			args:     []string{"--repo", "sandbx"},
			wantCode: 2,
			wantErr:  "did you mean: sandbox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := humio.NewMockClient()
			res := runHC(t, client, "", searchArgs(append(tt.args, "error")...)...)
			if res.code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d, stderr = %s", res.code, tt.wantCode, res.stderr)
			}
			if tt.wantErr != "" && !strings.Contains(res.stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", res.stderr, tt.wantErr)
			}

			var repos []string
			for _, s := range client.Searches {
				repos = append(repos, s.Repo)
			}
			if !reflect.DeepEqual(repos, tt.wantRepos) {
				t.Errorf("searched %v, want %v", repos, tt.wantRepos)
			}
		})
	}
}

func TestSearch_FieldsFromStdin(t *testing.T) {
	client := humio.NewMockClient()

	res := runHC(t, client, `{"SUBSEARCH":"(\"web-1\")","limit":10}`+"\n",
		searchArgs("--fields", "-", "host={SUBSEARCH} | head({limit}) | {unknown}")...)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}

	want := `host=("web-1") | head(10) | {unknown}`
	if got := client.Searches[0].Query.String; got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		client   *humio.MockClient
		args     []string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing token",
			client:   humio.NewMockClient(),
			args:     []string{"--base-url", testBaseURL, "error"},
			wantCode: 1,
			wantErr:  "missing --token or HUMIO_TOKEN",
		},
		{
			name:     "missing base url",
			client:   humio.NewMockClient(),
			args:     []string{"--token", "x", "error"},
			wantCode: 1,
			wantErr:  "missing --base-url",
		},
		{
			name:     "invalid base url",
			client:   humio.NewMockClient(),
			args:     []string{"--base-url", "cloud.humio.com", "--token", "x", "error"},
			wantCode: 1,
			wantErr:  "invalid base URL",
		},
		{
			name:     "authentication failure",
			client:   humio.NewMockClientWithOptions(humio.WithAuthFailure()),
			args:     searchArgs("error"),
			wantCode: 2,
		},
		{
			name:     "invalid time",
			client:   humio.NewMockClient(),
			args:     searchArgs("--start", "yesterday-ish", "error"),
			wantCode: 1,
		},
		{
			name:     "invalid outformat",
			client:   humio.NewMockClient(),
			args:     searchArgs("--outformat", "xml", "error"),
			wantCode: 1,
			wantErr:  "invalid outformat",
		},
		{
			name:     "invalid fields",
			client:   humio.NewMockClient(),
			args:     searchArgs("--fields", "[1]", "error"),
			wantCode: 1,
			wantErr:  "fields must be a JSON object",
		},
		{
			name:     "missing query",
			client:   humio.NewMockClient(),
			args:     []string{"search", "--token", "x"},
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runHC(t, tt.client, "", tt.args...)
			if res.code != tt.wantCode {
				t.Errorf("exit code = %d, want %d, stderr = %s", res.code, tt.wantCode, res.stderr)
			}
			if !strings.Contains(res.stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", res.stderr, tt.wantErr)
			}
		})
	}
}

func TestInterpolate(t *testing.T) {
	fields := map[string]any{
		"host":   "web-1",
		"status": 500.0,
		"@id":    "x",
		"tags":   []any{"a"},
	}

	tests := []struct {
		query string
		want  string
	}{
		{"host={host}", "host=web-1"},
		{"status={status}", "status=500"},
		{"{@id}", "x"},
		{"tags={tags}", `tags=["a"]`},
		{"{missing}", "{missing}"},
		{"case { a | b }", "case { a | b }"},
	}

	for _, tt := range tests {
		if got := interpolate(tt.query, fields); got != tt.want {
			t.Errorf("interpolate(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}

	if got := interpolate("{host}", nil); got != "{host}" {
		t.Errorf("interpolate without fields = %q", got)
	}
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		raw     string
		stdin   string
		want    map[string]any
		wantErr bool
	}{
		{raw: "{}", want: map[string]any{}},
		{raw: "", want: map[string]any{}},
		{raw: "null", want: map[string]any{}},
		{raw: `{"a":"b"}`, want: map[string]any{"a": "b"}},
		{raw: "-", stdin: `{"a":1}` + "\n" + `{"b":2}`, want: map[string]any{"a": 1.0}},
		{raw: "-", stdin: `{"a":1}`, want: map[string]any{"a": 1.0}},
		{raw: "-", stdin: "", want: map[string]any{}},
		{raw: `"text"`, wantErr: true},
		{raw: "{", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseFields(tt.raw, strings.NewReader(tt.stdin))
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFields(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFields(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSortEvents(t *testing.T) {
	events := []humio.Event{
		{"id": "a", "n": "10"},
		{"id": "b", "n": 9.0},
		{"id": "c"},
		{"id": "d", "n": "zebra"},
		{"id": "e", "n": "apple"},
		{"id": "f", "n": json.Number("-1")},
	}

	sortEvents(events, "n")

	var got []string
	for _, ev := range events {
		got = append(got, ev["id"].(string))
	}
	want := []string{"f", "c", "b", "a", "e", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortEvents_Disabled(t *testing.T) {
	events := []humio.Event{{"n": 2.0}, {"n": 1.0}}
	sortEvents(events, "")
	if events[0]["n"] != 2.0 {
		t.Error("empty sort field should keep the order")
	}
}
