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
	"bufio"
	"bytes"
	"io"
	"iter"
	"regexp"
	"strings"
)

// DefaultSeparator starts a new event on every line with at least one
// character, which makes every line its own event.
const DefaultSeparator = "^."

// MaxLineSize bounds a single physical line. Longer lines fail with an
// *IOError wrapping bufio.ErrTooLong.
const MaxLineSize = 64 << 20

// Segmenter yields events from a line-oriented reader. It is not safe for
// concurrent use; independent Segmenters may run concurrently.
type Segmenter struct {
	scanner *bufio.Scanner
	sep        *regexp.Regexp

	// buffer holds the event still being built. It may be extended by
	// following lines until the next separator match.
	buffer string

	// ready holds finalized events not yet handed to the caller.
	ready []string

	record string
	err    error
	done   bool
}

// NewSegmenter compiles separator and returns a Segmenter reading from r.
// The pattern is compiled in multiline, dot-matches-newline mode so that ^
// anchors at the start of each line. An invalid pattern is reported as a
// *PatternError before anything is read.
func NewSegmenter(r io.Reader, separator string) (*Segmenter, error) {
	sep, err := Compile(separator)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	scanner.Split(scanLines)

	return &Segmenter{
		scanner: scanner,
		sep:     sep,
	}, nil
}

// Compile compiles a separator the way NewSegmenter does.
func Compile(separator string) (*regexp.Regexp, error) {
	sep, err := regexp.Compile("(?ms)" + separator)
	if err != nil {
		return nil, &PatternError{Pattern: separator, Err: err}
	}
	return sep, nil
}

// Next advances to the next event, which is then available through Record.
// It returns false when the input is exhausted or a read fails; Err reports
// which.
func (s *Segmenter) Next() bool {
	for len(s.ready) == 0 {
		if s.done {
			s.record = ""
			return false
		}
		s.fill()
	}

	s.record = s.ready[0]
	s.ready[0] = ""
	s.ready = s.ready[1:]
	return true
}

// Record returns the event produced by the most recent call to Next.
func (s *Segmenter) Record() string {
	return s.record
}

// Err returns the first non-EOF read error, wrapped in an *IOError.
func (s *Segmenter) Err() error {
	return s.err
}

// All returns an iterator over the remaining events. A read failure is
// yielded once, after every event finalized before it.
func (s *Segmenter) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for s.Next() {
			if !yield(s.Record(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield("", err)
		}
	}
}

// fill reads one physical line and moves any events it completes to ready.
func (s *Segmenter) fill() {
	if s.scanner.Scan() {
		s.split(s.scanner.Text())
		return
	}

	if err := s.scanner.Err(); err != nil {
		s.err = &IOError{Err: err}
		s.buffer = ""
		s.done = true
		return
	}
	s.ready = append(s.ready, Chomp(s.buffer))
	s.buffer = ""
	s.done = true
}

// scanLines is a bufio.SplitFunc that cuts after "\n", "\r\n" or a lone
// "\r" and keeps the terminator on the line.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	switch {
	case i < 0:
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	case data[i] == '\n':
		return i + 1, data[:i+1], nil
	case i+1 < len(data):
		if data[i+1] == '\n' {
			return i + 2, data[:i+2], nil
		}
		return i + 1, data[:i+1], nil
	case atEOF:
		return i + 1, data[:i+1], nil
	default:
		// A trailing "\r" may be the first half of "\r\n".
		return 0, nil, nil
	}
}

// split applies the separator to a single line. Text ahead of the first
// match continues the current event; every match starts a new one and the
// last of those stays buffered since later lines may still belong to it.
func (s *Segmenter) split(line string) {
	matches := s.sep.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		s.buffer += line
		return
	}

	s.buffer += line[:matches[0][0]]
	if s.buffer != "" {
		s.ready = append(s.ready, Chomp(s.buffer))
	}

	for i := 0; i < len(matches)-1; i++ {
		s.ready = append(s.ready, Chomp(line[matches[i][0]:matches[i+1][0]]))
	}
	s.buffer = line[matches[len(matches)-1][0]:]
}

// Chomp removes exactly one trailing line terminator ("\r\n", "\n" or "\r")
// and leaves all other whitespace alone.
func Chomp(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	if strings.HasSuffix(s, "\n") || strings.HasSuffix(s, "\r") {
		return s[:len(s)-1]
	}
	return s
}
