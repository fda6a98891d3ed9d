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

// Package highlight colors event text for terminals. JSON objects are
// lexed as JSON and everything else as XML, which also suits plain log
// lines. Highlighting never fails: on any error the input is returned
// unchanged and a warning is logged.
package highlight

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "paraiso-dark"

var supported = []string{
	"bw",
	"monokai",
	"paraiso-dark",
	"paraiso-light",
	"solarized-dark",
	"solarized-light",
	"tango",
}

// Styles lists the style names New accepts.
func Styles() []string {
	var names []string
	for _, name := range supported {
		if _, ok := styles.Registry[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Highlighter renders text with ANSI 256-color escapes.
type Highlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
	logger    *slog.Logger
}

// New returns a Highlighter for one of Styles.
func New(style string, logger *slog.Logger) (*Highlighter, error) {
	if style == "" {
		style = DefaultStyle
	}
	found := false
	for _, name := range Styles() {
		if name == style {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown style %q (valid: %s)", style, strings.Join(Styles(), ", "))
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Highlighter{
		style:     styles.Get(style),
		formatter: formatters.Get("terminal256"),
		logger:    logger,
	}, nil
}

// Highlight returns text with color escapes, trimmed of surrounding
// whitespace.
func (h *Highlighter) Highlight(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("An unexpected error occurred during highlighting", "error", r)
			out = text
		}
	}()

	colored, err := h.render(text)
	if err != nil {
		h.logger.Warn("An unexpected error occurred during highlighting", "error", err)
		return text
	}
	return strings.TrimSpace(colored)
}

func (h *Highlighter) render(text string) (string, error) {
	lexer := lexers.Get(lexerName(text))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, iterator); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func lexerName(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return "json"
	}
	return "xml"
}
