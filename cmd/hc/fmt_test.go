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
	"errors"
	"iter"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirseerhq/humiocli/internal/humio"
)

func TestFmt(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{
			name:  "pretty from stdin",
			stdin: "<a><b>x</b></a>",
			want:  "\n<a>\n    <b>x</b>\n</a>\n",
		},
		{
			name:  "key value with custom indent",
			args:  []string{"--style", "kv", "--indent", "  "},
			stdin: "<a><b>x</b></a>",
			want:  "\na: \n  b: x\n",
		},
		{
			name:  "repair",
			args:  []string{"--repair", "--indent", "  "},
			stdin: "<a><b>x</></>",
			want:  "\n<a>\n  <b>x</b>\n</a>\n",
		},
		{
			name:  "namespaces kept with no-clean",
			args:  []string{"--no-clean", "--indent", "  "},
			stdin: "<ns:a><ns:b>v</ns:b></ns:a>",
			want:  "\n<ns:a>\n  <ns:b>v</ns:b>\n</ns:a>\n",
		},
		{
			name:  "whitespace kept with no-strip",
			args:  []string{"--no-strip"},
			stdin: "<a> x </a>",
			want:  "\n<a> x </a>\n",
		},
		{
			name:  "plain text passes through",
			stdin: "just a log line",
			want:  "just a log line\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runHC(t, humio.NewMockClient(), tt.stdin, append([]string{"fmt"}, tt.args...)...)
			if res.code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
			}
			if res.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.want)
			}
		})
	}
}

func TestFmt_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	if err := os.WriteFile(path, []byte(`<?xml version="1.0"?><r><i id="1"/></r>`), 0o600); err != nil {
		t.Fatal(err)
	}

	res := runHC(t, humio.NewMockClient(), "", "fmt", "--indent", "  ", path)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}
	want := "<?xml version=\"1.0\"?>\n<r>\n  <i id=\"1\"/>\n</r>\n"
	if res.stdout != want {
		t.Errorf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestFmt_Color(t *testing.T) {
	res := runHC(t, humio.NewMockClient(), "<a>x</a>", "fmt", "--color", "always")
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "\x1b[") {
		t.Errorf("expected escape codes, got %q", res.stdout)
	}
}

func TestFmt_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown style", []string{"fmt", "--style", "yaml"}},
		{"unknown color", []string{"fmt", "--color", "rainbow"}},
		{"missing file", []string{"fmt", filepath.Join(t.TempDir(), "nope.xml")}},
		{"unknown encoding", []string{"fmt", "--encoding", "klingon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := runHC(t, humio.NewMockClient(), "<a/>", tt.args...); res.code != 1 {
				t.Errorf("exit code = %d, want 1", res.code)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{
			name:  "one event per line",
			stdin: "a\nb\n",
			want:  "a\n\nb\n",
		},
		{
			name:  "continuation lines",
			args:  []string{"--separator", `^\S`},
			stdin: "a\n  more\nb\n",
			want:  "a\n  more\n\nb\n",
		},
		{
			name:  "custom delimiter",
			args:  []string{"--delimiter", `---\n`},
			stdin: "a\nb\n",
			want:  "a\n---\nb\n",
		},
		{
			name:  "json",
			args:  []string{"--json", "--separator", `^\S`},
			stdin: "a\n  <x>\nb",
			want:  "{\"record\":\"a\\n  <x>\"}\n{\"record\":\"b\"}\n",
		},
		{
			name:  "empty input is one empty event",
			args:  []string{"--json"},
			stdin: "",
			want:  "{\"record\":\"\"}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runHC(t, humio.NewMockClient(), tt.stdin, append([]string{"split"}, tt.args...)...)
			if res.code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
			}
			if res.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.want)
			}
		})
	}
}

func TestSplit_OutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.log")
	out := filepath.Join(dir, "out.ndjson")
	if err := os.WriteFile(in, []byte("one\ntwo\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	res := runHC(t, humio.NewMockClient(), "", "split", "--json", "--output", out, in)
	if res.code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", res.code, res.stderr)
	}
	if res.stdout != "" {
		t.Errorf("stdout = %q, want nothing", res.stdout)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{\"record\":\"one\"}\n{\"record\":\"two\"}\n" {
		t.Errorf("output file = %q", data)
	}
}

// recordingWriter is an output.OutputWriter that keeps what it was given.
type recordingWriter struct {
	records []any
	text    []string
	failAt  int
}

func (w *recordingWriter) Write(record any) error {
	return w.add(func() { w.records = append(w.records, record) })
}

func (w *recordingWriter) WriteString(s string) error {
	return w.add(func() { w.text = append(w.text, s) })
}

func (w *recordingWriter) add(keep func()) error {
	if w.failAt > 0 && len(w.records)+len(w.text)+1 == w.failAt {
		return errors.New("write failed")
	}
	keep()
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestWriteRecords(t *testing.T) {
	records := func(recs ...string) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) {
			for _, r := range recs {
				if !yield(r, nil) {
					return
				}
			}
		}
	}

	tests := []struct {
		name      string
		opts      splitOptions
		failAt    int
		wantCount int
		wantText  []string
		wantJSON  []any
		wantErr   bool
	}{
		{
			name:      "text with delimiter between records",
			opts:      splitOptions{delimiter: "--\n"},
			wantCount: 3,
			wantText:  []string{"a\n", "--\nb\n", "--\nc\n"},
		},
		{
			name:      "json records",
			opts:      splitOptions{json: true, delimiter: "--\n"},
			wantCount: 3,
			wantJSON:  []any{splitRecord{Record: "a"}, splitRecord{Record: "b"}, splitRecord{Record: "c"}},
		},
		{
			name:      "write failure stops early",
			opts:      splitOptions{delimiter: "\n"},
			failAt:    2,
			wantCount: 1,
			wantText:  []string{"a\n"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &recordingWriter{failAt: tt.failAt}
			count, err := writeRecords(w, records("a", "b", "c"), tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("writeRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
			if !reflect.DeepEqual(w.text, tt.wantText) {
				t.Errorf("text = %q, want %q", w.text, tt.wantText)
			}
			if !reflect.DeepEqual(w.records, tt.wantJSON) {
				t.Errorf("records = %v, want %v", w.records, tt.wantJSON)
			}
		})
	}
}

func TestWriteRecords_SegmenterError(t *testing.T) {
	boom := errors.New("read failed")
	records := func(yield func(string, error) bool) {
		if yield("a", nil) {
			yield("", boom)
		}
	}

	w := &recordingWriter{}
	count, err := writeRecords(w, records, splitOptions{delimiter: "\n"})
	if !errors.Is(err, boom) {
		t.Fatalf("writeRecords() error = %v, want %v", err, boom)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSplit_InvalidSeparator(t *testing.T) {
	res := runHC(t, humio.NewMockClient(), "a\n", "split", "--separator", "[")
	if res.code != 1 {
		t.Errorf("exit code = %d, want 1", res.code)
	}
}

func TestUnescape(t *testing.T) {
	tests := map[string]string{
		`\n`:        "\n",
		`\t|\t`:     "\t|\t",
		"plain":     "plain",
		`\u00e9`:    "é",
		`say \"x\"`: `say "x"`,
	}
	for in, want := range tests {
		got, err := unescape(in)
		if err != nil || got != want {
			t.Errorf("unescape(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := unescape(`\q`); err == nil {
		t.Error("expected error for invalid escape")
	}
}
