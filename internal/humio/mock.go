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
	"fmt"
	"sync"
	"time"

	humioerrors "github.com/sirseerhq/humiocli/internal/errors"
)

// MockClient is a mock implementation of the Humio Client interface for testing.
type MockClient struct {
	mu sync.Mutex

	// Repos returned by Repositories
	Repos []Repository
	// Events returned by Search, per repository
	Events map[string][]Event

	// Error to return from every call
	Error error
	// IngestError is returned by Ingest only
	IngestError error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Track calls for verification
	CallCount int
	Searches  []MockSearch
	Ingested  [][]IngestBatch
	Parsers   map[string]string // "repo/name" -> source
}

// MockSearch records one Search call.
type MockSearch struct {
	Repo  string
	Query Query
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	return &MockClient{
		Repos:   generateTestRepositories(),
		Events:  map[string][]Event{},
		Parsers: map[string]string{},
	}
}

func (m *MockClient) call(ctx context.Context) error {
	m.CallCount++

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", humioerrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("network timeout: %w", humioerrors.ErrNetworkFailure)
	}
	return m.Error
}

// Repositories implements the Client interface
func (m *MockClient) Repositories(ctx context.Context) ([]Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call(ctx); err != nil {
		return nil, err
	}
	return append([]Repository(nil), m.Repos...), nil
}

// Search implements the Client interface
func (m *MockClient) Search(ctx context.Context, repo string, q Query, fn func(Event) error) error {
	m.mu.Lock()
	m.Searches = append(m.Searches, MockSearch{Repo: repo, Query: q})
	err := m.call(ctx)
	events := m.Events[repo]
	m.mu.Unlock()

	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}

// Ingest implements the Client interface
func (m *MockClient) Ingest(ctx context.Context, batches []IngestBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call(ctx); err != nil {
		return err
	}
	if m.IngestError != nil {
		return m.IngestError
	}

	copied := make([]IngestBatch, len(batches))
	for i, b := range batches {
		copied[i] = IngestBatch{Fields: b.Fields, Messages: append([]string(nil), b.Messages...)}
	}
	m.Ingested = append(m.Ingested, copied)
	return nil
}

// PutParser implements the Client interface
func (m *MockClient) PutParser(ctx context.Context, repo, name, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.call(ctx); err != nil {
		return err
	}
	m.Parsers[repo+"/"+name] = source
	return nil
}

// Messages returns every ingested message in order.
func (m *MockClient) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, req := range m.Ingested {
		for _, b := range req {
			out = append(out, b.Messages...)
		}
	}
	return out
}

// generateTestRepositories creates sample repositories for testing
func generateTestRepositories() []Repository {
	lastIngest := time.Now().UTC().Add(-2 * time.Hour)

	return []Repository{
		{
			Name:                  "sandbox",
			Type:                  TypeRepository,
			ReadPermission:        true,
			WritePermission:       true,
			ParserAdminPermission: true,
			UncompressedBytes:     1_500_000,
			LastIngest:            &lastIngest,
		},
		{
			Name:              "prod-logs",
			Type:              TypeRepository,
			ReadPermission:    true,
			UncompressedBytes: 82_000_000_000,
			LastIngest:        &lastIngest,
		},
		{
			Name: "audit",
			Type: TypeRepository,
		},
		{
			Name:           "prod-view",
			Type:           TypeView,
			ReadPermission: true,
		},
	}
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithRepositories sets specific repositories to return
func WithRepositories(repos []Repository) MockClientOption {
	return func(m *MockClient) {
		m.Repos = repos
	}
}

// WithEvents sets the events returned when searching repo
func WithEvents(repo string, events []Event) MockClientOption {
	return func(m *MockClient) {
		m.Events[repo] = events
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
