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
	"context"
	"errors"
	"iter"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func records(items ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func batchSizes(m *MockClient) []int {
	var sizes []int
	for _, req := range m.Ingested {
		for _, b := range req {
			sizes = append(sizes, len(b.Messages))
		}
	}
	return sizes
}

func TestBatcher_PacksUnderSoftLimit(t *testing.T) {
	mock := NewMockClient()
	b := NewBatcher(mock, 10, nil)

	stats, err := b.Run(context.Background(), records("aaaa", "bbbb", "cc", "dddd"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := IngestStats{Records: 4, Bytes: 14, Batches: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if got := batchSizes(mock); !reflect.DeepEqual(got, []int{3, 1}) {
		t.Errorf("batch sizes = %v, want [3 1]", got)
	}
	if got := mock.Messages(); !reflect.DeepEqual(got, []string{"aaaa", "bbbb", "cc", "dddd"}) {
		t.Errorf("messages = %v", got)
	}
}

func TestBatcher_OversizeRecordSentAlone(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	mock := NewMockClient()
	b := NewBatcher(mock, 5, logger)

	stats, err := b.Run(context.Background(), records("ab", "far too long", "cd"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Batches != 3 || stats.Records != 3 {
		t.Errorf("stats = %+v, want 3 batches of 3 records", stats)
	}
	if got := batchSizes(mock); !reflect.DeepEqual(got, []int{1, 1, 1}) {
		t.Errorf("batch sizes = %v, want [1 1 1]", got)
	}
	if !strings.Contains(logs.String(), "exceeds soft limit") {
		t.Errorf("expected oversize warning, got %q", logs.String())
	}
}

func TestBatcher_Fields(t *testing.T) {
	mock := NewMockClient()
	b := NewBatcher(mock, 0, nil)
	b.Fields = map[string]any{"type": "syslog"}

	if _, err := b.Run(context.Background(), records("one")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(mock.Ingested) != 1 || mock.Ingested[0][0].Fields["type"] != "syslog" {
		t.Errorf("ingested = %+v", mock.Ingested)
	}
}

func TestBatcher_DryRun(t *testing.T) {
	mock := NewMockClient()
	b := NewBatcher(mock, 4, nil)
	b.DryRun = true

	stats, err := b.Run(context.Background(), records("abc", "def", "ghi"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Batches != 3 || stats.Records != 3 || stats.Bytes != 9 {
		t.Errorf("stats = %+v", stats)
	}
	if mock.CallCount != 0 {
		t.Errorf("dry run sent %d requests", mock.CallCount)
	}
}

func TestBatcher_SkipAndCheckpoint(t *testing.T) {
	mock := NewMockClient()
	b := NewBatcher(mock, 2, nil)
	b.Skip = 2

	var consumed []int
	b.OnBatch = func(n int) error {
		consumed = append(consumed, n)
		return nil
	}

	stats, err := b.Run(context.Background(), records("a", "b", "c", "d", "e"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Skipped != 2 || stats.Records != 3 {
		t.Errorf("stats = %+v, want 2 skipped and 3 sent", stats)
	}
	if got := mock.Messages(); !reflect.DeepEqual(got, []string{"c", "d", "e"}) {
		t.Errorf("messages = %v", got)
	}
	if !reflect.DeepEqual(consumed, []int{4, 5}) {
		t.Errorf("checkpoints = %v, want [4 5]", consumed)
	}
}

func TestBatcher_Errors(t *testing.T) {
	readErr := errors.New("read failed")
	failing := func(yield func(string, error) bool) {
		if !yield("ok", nil) {
			return
		}
		yield("", readErr)
	}

	t.Run("record error", func(t *testing.T) {
		mock := NewMockClient()
		_, err := NewBatcher(mock, 0, nil).Run(context.Background(), failing)
		if !errors.Is(err, readErr) {
			t.Errorf("error = %v, want read error", err)
		}
		if len(mock.Ingested) != 0 {
			t.Error("pending records should not be sent after a read error")
		}
	})

	t.Run("ingest error", func(t *testing.T) {
		ingestErr := errors.New("boom")
		mock := NewMockClient()
		mock.IngestError = ingestErr

		stats, err := NewBatcher(mock, 0, nil).Run(context.Background(), records("a"))
		if !errors.Is(err, ingestErr) {
			t.Errorf("error = %v, want ingest error", err)
		}
		if stats.Batches != 0 {
			t.Errorf("failed batch counted: %+v", stats)
		}
	})

	t.Run("checkpoint error", func(t *testing.T) {
		saveErr := errors.New("disk full")
		b := NewBatcher(NewMockClient(), 0, nil)
		b.OnBatch = func(int) error { return saveErr }

		if _, err := b.Run(context.Background(), records("a")); !errors.Is(err, saveErr) {
			t.Errorf("error = %v, want checkpoint error", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		mock := NewMockClient()
		if _, err := NewBatcher(mock, 0, nil).Run(ctx, records("a")); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func BenchmarkBatcher(b *testing.B) {
	line := strings.Repeat("x", 200)
	items := make([]string, 10000)
	for i := range items {
		items[i] = line
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		batcher := NewBatcher(NewMockClient(), 64*1024, nil)
		batcher.DryRun = true
		if _, err := batcher.Run(context.Background(), records(items...)); err != nil {
			b.Fatal(err)
		}
	}
}
