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

package markup

import (
	"fmt"
	"strings"
)

// Style selects how tokens are rendered.
type Style int

const (
	// StylePretty puts tags on their own indented lines.
	StylePretty Style = iota
	// StyleKeyValue renders elements as "name: value" lines.
	StyleKeyValue
)

// DefaultIndent is the indentation unit used by DefaultOptions.
const DefaultIndent = "    "

func (s Style) String() string {
	switch s {
	case StylePretty:
		return "pretty"
	case StyleKeyValue:
		return "kv"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle parses "pretty" or "kv" (also "key-value"), case-insensitively.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pretty":
		return StylePretty, nil
	case "kv", "key-value", "keyvalue":
		return StyleKeyValue, nil
	default:
		return StylePretty, &FormatError{Value: s}
	}
}

// FormatError reports an output style the formatter does not know.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unknown markup style %q (valid: pretty, kv)", e.Value)
}

// Options controls Process.
type Options struct {
	// Strip removes whitespace immediately around tags before tokenizing.
	Strip bool
	// Clean removes namespace declarations and tag name prefixes.
	Clean bool
	// Repair names empty closing tags after the last opened tag. It only
	// applies to StylePretty.
	Repair bool
	Style  Style
	Indent string
}

// DefaultOptions strips and cleans, does not repair, and pretty prints with
// four spaces of indentation.
func DefaultOptions() Options {
	return Options{
		Strip:  true,
		Clean:  true,
		Style:  StylePretty,
		Indent: DefaultIndent,
	}
}

// Process reformats text according to opts. Leading text that is clearly
// not markup is kept verbatim in front of the result.
func Process(text string, opts Options) string {
	preface, tokens := prepare(text, opts)

	var parts []string
	switch opts.Style {
	case StyleKeyValue:
		parts = KeyValue(tokens, opts.Indent)
	default:
		parts = Prettify(tokens, opts.Indent)
	}

	return preface + strings.Join(parts, "")
}

// prepare runs the steps ahead of rendering and returns the preface and
// the tokens to render.
func prepare(text string, opts Options) (string, []Token) {
	if opts.Strip {
		text = StripSpace(text)
	}
	if opts.Clean {
		text = Clean(text)
	}

	preface, rest := SplitPreface(text)
	tokens := Tokenize(rest)

	if opts.Repair && opts.Style != StyleKeyValue {
		tokens = Repair(tokens)
	}
	return preface, tokens
}
