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

// Package encoding detects the character encoding of input files and
// decodes them to UTF-8.
package encoding

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	humioerrors "github.com/sirseerhq/humiocli/internal/errors"
)

// SampleSize is how much of a file Detect reads.
const SampleSize = 64 * 1024

// LowConfidence is the threshold below which a detection deserves a warning.
const LowConfidence = 0.9

// Detection is the outcome of sniffing a file.
type Detection struct {
	Encoding   string  `json:"encoding"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language,omitempty"`
}

// Detect sniffs the start of the file at path. Input that is valid UTF-8,
// including plain ASCII and empty files, is reported as utf-8 with full
// confidence. An empty Encoding means nothing matched.
func Detect(path string) (Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Detection{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sample := make([]byte, SampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Detection{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DetectBytes(sample[:n], n == SampleSize), nil
}

// DetectBytes is Detect for data already in memory. truncated tells that
// data may end in the middle of a character.
func DetectBytes(data []byte, truncated bool) Detection {
	if validUTF8(data, truncated) {
		return Detection{Encoding: "utf-8", Confidence: 1}
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return Detection{}
	}
	return Detection{
		Encoding:   strings.ToLower(result.Charset),
		Confidence: float64(result.Confidence) / 100,
		Language:   result.Language,
	}
}

func validUTF8(data []byte, truncated bool) bool {
	if utf8.Valid(data) {
		return true
	}
	if !truncated {
		return false
	}
	// Allow one incomplete character at the cut.
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		if utf8.Valid(data[:len(data)-i]) {
			return !utf8.FullRune(data[len(data)-i:])
		}
	}
	return false
}

// aliases maps detector names the WHATWG index does not know.
var aliases = map[string]string{
	"gb-18030": "gb18030",
}

// Lookup resolves an encoding label.
func Lookup(label string) (xencoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(label))
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	switch name {
	case "utf-32be", "utf-32":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM), nil
	case "utf-32le":
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%q: %w", label, humioerrors.ErrUnknownEncoding)
	}
	return enc, nil
}

// Open opens the file at path and decodes it from label to UTF-8.
func Open(path, label string) (io.ReadCloser, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &decodingReader{
		Reader: transform.NewReader(f, enc.NewDecoder()),
		file:   f,
	}, nil
}

// ReadFile reads a whole file decoded from label.
func ReadFile(path, label string) (string, error) {
	r, err := Open(path, label)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s as %s: %w", path, label, err)
	}
	return string(data), nil
}

type decodingReader struct {
	io.Reader
	file *os.File
}

func (r *decodingReader) Close() error {
	return r.file.Close()
}
