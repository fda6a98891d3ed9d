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

// Package testutil provides common test helpers for humiocli
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Test credentials accepted by MockServer.
const (
	TestToken       = "api-token"
	TestIngestToken = "ingest-token"
)

// Domain is a repository or view served by MockServer.
type Domain struct {
	Name        string
	View        bool
	Read        bool
	Write       bool
	ParserAdmin bool
	Bytes       int64
	LastIngest  time.Time
	Events      []map[string]any
}

// IngestBatch is one element of a received ingest request.
type IngestBatch struct {
	Fields   map[string]any `json:"fields,omitempty"`
	Messages []string       `json:"messages"`
}

// MockServer imitates the parts of the Humio API the client uses: the
// searchDomains GraphQL query, streaming searches, query jobs, unstructured
// ingest and parser updates.
type MockServer struct {
	*httptest.Server

	requests atomic.Int32

	mu       sync.Mutex
	domains  []Domain
	jobPolls int
	ingested [][]IngestBatch
	parsers  map[string]string
	jobs     map[string]int
	deleted  []string
}

// NewMockServer starts a server serving domains. It is closed when the test
// ends.
func NewMockServer(t *testing.T, domains ...Domain) *MockServer {
	t.Helper()
	m := newMockServer(domains)
	m.start(t, m.routes())
	return m
}

func newMockServer(domains []Domain) *MockServer {
	return &MockServer{
		domains: domains,
		parsers: make(map[string]string),
		jobs:    make(map[string]int),
	}
}

func (m *MockServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql", m.auth(TestToken, m.handleGraphQL))
	mux.HandleFunc("POST /api/v1/repositories/{repo}/query", m.auth(TestToken, m.handleQuery))
	mux.HandleFunc("POST /api/v1/repositories/{repo}/queryjobs", m.auth(TestToken, m.handleCreateJob))
	mux.HandleFunc("GET /api/v1/repositories/{repo}/queryjobs/{id}", m.auth(TestToken, m.handlePollJob))
	mux.HandleFunc("DELETE /api/v1/repositories/{repo}/queryjobs/{id}", m.auth(TestToken, m.handleDeleteJob))
	mux.HandleFunc("PUT /api/v1/repositories/{repo}/parsers/{name}", m.auth(TestToken, m.handleParser))
	mux.HandleFunc("POST /api/v1/ingest/humio-unstructured", m.auth(TestIngestToken, m.handleIngest))
	return mux
}

func (m *MockServer) start(t *testing.T, h http.Handler) {
	t.Helper()
	m.Server = httptest.NewServer(h)
	t.Cleanup(m.Close)
}

// DefaultDomains returns a small mix of readable, unreadable and view
// search domains with a few events.
func DefaultDomains() []Domain {
	return []Domain{
		{
			Name: "sandbox", Read: true, Write: true, ParserAdmin: true,
			Bytes: 1536, LastIngest: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
			Events: []map[string]any{
				{"@timestamp": float64(1715774400000), "@rawstring": "<msg><level>error</level></msg>", "host": "web-1"},
				{"@timestamp": float64(1715770800000), "@rawstring": "plain line", "host": "web-2"},
			},
		},
		{Name: "audit", Write: true},
		{
			Name: "prod-view", View: true, Read: true,
			Events: []map[string]any{
				{"@timestamp": float64(1715772600000), "@rawstring": "from view", "host": "web-1"},
			},
		},
	}
}

// SetJobPolls sets how many polls a query job stays unfinished.
func (m *MockServer) SetJobPolls(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobPolls = n
}

// RequestCount returns the number of requests received.
func (m *MockServer) RequestCount() int {
	return int(m.requests.Load())
}

// Ingested returns the received ingest requests in order.
func (m *MockServer) Ingested() [][]IngestBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]IngestBatch(nil), m.ingested...)
}

// Messages returns every ingested message in order.
func (m *MockServer) Messages() []string {
	var out []string
	for _, req := range m.Ingested() {
		for _, b := range req {
			out = append(out, b.Messages...)
		}
	}
	return out
}

// Parser returns the source stored for repo/name.
func (m *MockServer) Parser(repo, name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.parsers[repo+"/"+name]
	return src, ok
}

// DeletedJobs returns the IDs of query jobs that were deleted.
func (m *MockServer) DeletedJobs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func (m *MockServer) auth(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "The supplied access token is invalid", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (m *MockServer) domain(name string) (Domain, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}

func (m *MockServer) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	nodes := make([]map[string]any, 0, len(m.domains))
	for _, d := range m.domains {
		node := map[string]any{
			"name":       d.Name,
			"__typename": "Repository",
			"read":       d.Read,
			"write":      d.Write,
			"parsers":    d.ParserAdmin,
			"alerts":     false,
			"dashboards": false,
			"queries":    d.Read,
			"files":      false,
		}
		if d.View {
			node["__typename"] = "View"
		} else {
			node["uncompressedByteSize"] = d.Bytes
			if !d.LastIngest.IsZero() {
				node["timeOfLatestIngest"] = d.LastIngest.Format(time.RFC3339)
			}
		}
		nodes = append(nodes, node)
	}
	m.mu.Unlock()

	writeJSON(w, map[string]any{"data": map[string]any{"searchDomains": nodes}})
}

// searchable resolves the repository in the path, writing a 404 when it is
// unknown or not readable.
func (m *MockServer) searchable(w http.ResponseWriter, r *http.Request) (Domain, bool) {
	d, ok := m.domain(r.PathValue("repo"))
	if !ok || !d.Read {
		http.Error(w, "Could not find repository "+strconv.Quote(r.PathValue("repo")), http.StatusNotFound)
		return Domain{}, false
	}

	var body struct {
		QueryString string `json:"queryString"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid query request", http.StatusBadRequest)
		return Domain{}, false
	}
	return d, true
}

func (m *MockServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	d, ok := m.searchable(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for _, ev := range d.Events {
		_ = enc.Encode(ev)
	}
}

func (m *MockServer) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := m.searchable(w, r); !ok {
		return
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.jobs[id] = 0
	m.mu.Unlock()

	writeJSON(w, map[string]any{"id": id})
}

func (m *MockServer) handlePollJob(w http.ResponseWriter, r *http.Request) {
	d, ok := m.domain(r.PathValue("repo"))
	id := r.PathValue("id")

	m.mu.Lock()
	polls, known := m.jobs[id]
	pending := polls < m.jobPolls
	if known {
		m.jobs[id] = polls + 1
	}
	m.mu.Unlock()

	if !ok || !known {
		http.Error(w, "no such query job", http.StatusNotFound)
		return
	}

	if pending {
		writeJSON(w, map[string]any{"done": false, "events": []any{}})
		return
	}
	events := d.Events
	if events == nil {
		events = []map[string]any{}
	}
	writeJSON(w, map[string]any{"done": true, "events": events})
}

func (m *MockServer) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	delete(m.jobs, r.PathValue("id"))
	m.deleted = append(m.deleted, r.PathValue("id"))
	m.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (m *MockServer) handleParser(w http.ResponseWriter, r *http.Request) {
	repo, name := r.PathValue("repo"), r.PathValue("name")
	if _, ok := m.domain(repo); !ok {
		http.Error(w, "Could not find repository "+strconv.Quote(repo), http.StatusNotFound)
		return
	}

	var body struct {
		Parser string `json:"parser"`
		Kind   string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Kind == "" {
		http.Error(w, "invalid parser request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.parsers[repo+"/"+name] = body.Parser
	m.mu.Unlock()

	writeJSON(w, map[string]any{"parser": body.Parser})
}

func (m *MockServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	var batches []IngestBatch
	if err := json.NewDecoder(r.Body).Decode(&batches); err != nil {
		http.Error(w, "invalid ingest request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.ingested = append(m.ingested, batches)
	m.mu.Unlock()

	writeJSON(w, map[string]any{})
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *MockServer {
	t.Helper()
	m := newMockServer(nil)
	m.start(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.Add(1)
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
	return m
}

// NewTransientErrorServer creates a MockServer whose first failCount
// requests fail with errorCode.
func NewTransientErrorServer(t *testing.T, failCount, errorCode int, domains ...Domain) *MockServer {
	t.Helper()
	m := newMockServer(domains)
	next := m.routes()
	var failures atomic.Int32

	m.start(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failures.Add(1) <= int32(failCount) {
			m.requests.Add(1)
			w.WriteHeader(errorCode)
			_, _ = w.Write([]byte(http.StatusText(errorCode)))
			return
		}
		next.ServeHTTP(w, r)
	}))
	return m
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
