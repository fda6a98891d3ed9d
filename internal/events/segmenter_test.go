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

package events

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func collect(t *testing.T, input, sep string) []string {
	t.Helper()

	seg, err := NewSegmenter(strings.NewReader(input), sep)
	if err != nil {
		t.Fatalf("NewSegmenter(%q) error = %v", sep, err)
	}

	var got []string
	for seg.Next() {
		got = append(got, seg.Record())
	}
	if err := seg.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	return got
}

func TestSegmenter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
		want  []string
	}{
		{
			name:  "dated multiline events",
			input: "2020-01-01 A\nmore A\n2020-01-02 B\n",
			sep:   `^\d{4}-\d{2}-\d{2}`,
			want:  []string{"2020-01-01 A\nmore A", "2020-01-02 B"},
		},
		{
			name:  "default separator gives one event per line",
			input: "one\ntwo\nthree\n",
			sep:   DefaultSeparator,
			want:  []string{"one", "two", "three"},
		},
		{
			name:  "empty input yields one empty event",
			input: "",
			sep:   DefaultSeparator,
			want:  []string{""},
		},
		{
			name:  "separator never matches",
			input: "alpha\nbeta\r\ngamma\n",
			sep:   `NOPE`,
			want:  []string{"alpha\nbeta\r\ngamma"},
		},
		{
			name:  "leading text before first separator is its own event",
			input: "preamble\n# one\nbody\n# two\n",
			sep:   `^#`,
			want:  []string{"preamble", "# one\nbody", "# two"},
		},
		{
			name:  "several separators on one line",
			input: "a=1;b=2;c=3\n",
			sep:   `[abc]=`,
			want:  []string{"a=1;", "b=2;", "c=3"},
		},
		{
			name:  "separator mid line continues previous event",
			input: "start\nx START y\n",
			sep:   `START`,
			want:  []string{"start\nx ", "START y"},
		},
		{
			name:  "blank line is an empty event with default separator",
			input: "one\n\ntwo\n",
			sep:   DefaultSeparator,
			want:  []string{"one", "", "two"},
		},
		{
			name:  "blank lines stay in their event with anchored separator",
			input: "one\n\ntwo\n",
			sep:   `^o`,
			want:  []string{"one\n\ntwo"},
		},
		{
			name:  "only one terminator is chomped",
			input: "E1  \n\n\nE2\r\n",
			sep:   `^E`,
			want:  []string{"E1  \n\n", "E2"},
		},
		{
			name:  "final line without terminator",
			input: "E1\nE2",
			sep:   `^E`,
			want:  []string{"E1", "E2"},
		},
		{
			name:  "capture groups in pattern do not change splitting",
			input: "(a) x\n(b) y\n",
			sep:   `^\((a|b)\)`,
			want:  []string{"(a) x", "(b) y"},
		},
		{
			name:  "bare carriage returns end lines",
			input: "a\rb\r",
			sep:   DefaultSeparator,
			want:  []string{"a", "b"},
		},
		{
			name:  "mixed terminators",
			input: "a\r\nb\rc\n",
			sep:   DefaultSeparator,
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "anchored separator after carriage return",
			input: "E1\r  more\rE2\r",
			sep:   `^E`,
			want:  []string{"E1\r  more", "E2"},
		},
		{
			name:  "empty matches next to a match are skipped",
			input: "aXbXc\n",
			sep:   `X*`,
			want:  []string{"a", "Xb", "Xc", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, tt.input, tt.sep)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("records = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSegmenter_Reassembly(t *testing.T) {
	inputs := []string{
		"2020-01-01 A\nmore A\n2020-01-02 B\n",
		"x\ny\nz",
		"a=1;b=2\nc=3\n",
		"\n\n\n",
		"a\rb\r\nc\r",
		"x\r\r\ny",
	}
	seps := []string{DefaultSeparator, `^\d`, `[abc]=`, `y`}

	for _, input := range inputs {
		for _, sep := range seps {
			seg, err := NewSegmenter(strings.NewReader(input), sep)
			if err != nil {
				t.Fatalf("NewSegmenter(%q) error = %v", sep, err)
			}

			// Rebuild the input from the raw chunks: every record must be a
			// prefix of the remaining input, optionally followed by the
			// terminator that Chomp removed.
			rest := input
			for seg.Next() {
				rec := seg.Record()
				if !strings.HasPrefix(rest, rec) {
					t.Fatalf("input %q sep %q: record %q is not next in %q", input, sep, rec, rest)
				}
				rest = rest[len(rec):]
				for _, term := range []string{"\r\n", "\n", "\r"} {
					if strings.HasPrefix(rest, term) {
						rest = rest[len(term):]
						break
					}
				}
			}
			if rest != "" {
				t.Errorf("input %q sep %q: unconsumed input %q", input, sep, rest)
			}
		}
	}
}

func TestNewSegmenter_InvalidPattern(t *testing.T) {
	r := &countingReader{r: strings.NewReader("data\n")}

	_, err := NewSegmenter(r, `(unclosed`)
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}

	var patternErr *PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("error = %T, want *PatternError", err)
	}
	if patternErr.Pattern != "(unclosed" {
		t.Errorf("Pattern = %q, want %q", patternErr.Pattern, "(unclosed")
	}
	if r.reads != 0 {
		t.Errorf("input was read %d times before pattern validation", r.reads)
	}
}

func TestSegmenter_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(
		strings.NewReader("E1\nE2\nE3 partial"),
		iotest.ErrReader(boom),
	)

	seg, err := NewSegmenter(r, `^E`)
	if err != nil {
		t.Fatalf("NewSegmenter() error = %v", err)
	}

	var got []string
	for seg.Next() {
		got = append(got, seg.Record())
	}

	want := []string{"E1", "E2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("records = %q, want %q", got, want)
	}

	var ioErr *IOError
	if !errors.As(seg.Err(), &ioErr) {
		t.Fatalf("Err() = %v, want *IOError", seg.Err())
	}
	if !errors.Is(seg.Err(), boom) {
		t.Errorf("Err() does not wrap the read error: %v", seg.Err())
	}
	if seg.Next() {
		t.Error("Next() returned true after failure")
	}
}

func TestSegmenter_All(t *testing.T) {
	seg, err := NewSegmenter(strings.NewReader("a\nb\nc\n"), DefaultSeparator)
	if err != nil {
		t.Fatalf("NewSegmenter() error = %v", err)
	}

	var got []string
	for rec, err := range seg.All() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, rec)
		if rec == "b" {
			break
		}
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("records = %q", got)
	}

	// Iteration resumes where the caller stopped.
	if !seg.Next() || seg.Record() != "c" {
		t.Errorf("Next() after break = %q, want %q", seg.Record(), "c")
	}
}

func TestSegmenter_LazyReads(t *testing.T) {
	r := &countingReader{r: iotest.OneByteReader(strings.NewReader("E1\nE2\nE3\n"))}

	seg, err := NewSegmenter(r, `^E`)
	if err != nil {
		t.Fatalf("NewSegmenter() error = %v", err)
	}
	if !seg.Next() {
		t.Fatal("expected first record")
	}
	if seg.Record() != "E1" {
		t.Errorf("first record = %q", seg.Record())
	}
	if r.bytes >= len("E1\nE2\nE3\n") {
		t.Errorf("whole input consumed before first record was returned")
	}
}

func TestSegmenter_CRLFAcrossReads(t *testing.T) {
	// One byte per read puts "\r" and "\n" in different reads.
	r := iotest.OneByteReader(strings.NewReader("a\r\nb\r\n\r\nc"))

	seg, err := NewSegmenter(r, DefaultSeparator)
	if err != nil {
		t.Fatalf("NewSegmenter() error = %v", err)
	}

	var got []string
	for seg.Next() {
		got = append(got, seg.Record())
	}
	if err := seg.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if want := []string{"a", "b", "", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("records = %q, want %q", got, want)
	}
}

func TestScanLines(t *testing.T) {
	tests := []struct {
		data    string
		atEOF   bool
		advance int
		token   string
	}{
		{"abc", false, 0, ""},
		{"abc", true, 3, "abc"},
		{"a\nb", false, 2, "a\n"},
		{"a\r\nb", false, 3, "a\r\n"},
		{"a\rb", false, 2, "a\r"},
		{"a\r", false, 0, ""},
		{"a\r", true, 2, "a\r"},
		{"", true, 0, ""},
	}

	for _, tt := range tests {
		advance, token, err := scanLines([]byte(tt.data), tt.atEOF)
		if err != nil {
			t.Fatalf("scanLines(%q, %v) error = %v", tt.data, tt.atEOF, err)
		}
		if advance != tt.advance || string(token) != tt.token {
			t.Errorf("scanLines(%q, %v) = %d, %q; want %d, %q",
				tt.data, tt.atEOF, advance, token, tt.advance, tt.token)
		}
	}
}

func TestChomp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"abc\n", "abc"},
		{"abc\r\n", "abc"},
		{"abc\r", "abc"},
		{"abc\n\n", "abc\n"},
		{"abc\n\r", "abc\n"},
		{"  abc \t\n", "  abc \t"},
	}

	for _, tt := range tests {
		if got := Chomp(tt.in); got != tt.want {
			t.Errorf("Chomp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type countingReader struct {
	r     io.Reader
	reads int
	bytes int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	n, err := c.r.Read(p)
	c.bytes += n
	return n, err
}
