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

import "strings"

// Repair replaces each empty closing tag "</>" with a closing tag named
// after the most recently opened element. Every closing tag pops the open
// element stack, named or not; an empty closing tag with nothing open is
// left as is. The input slice is not modified.
func Repair(tokens []Token) []Token {
	var open []string
	repaired := make([]Token, 0, len(tokens))

	for _, tok := range tokens {
		switch {
		case opensElement(tok.Text):
			open = append(open, elementName(tok.Text))
		case closesElement(tok.Text):
			if len(open) == 0 {
				break
			}
			name := open[len(open)-1]
			open = open[:len(open)-1]
			if tok.Text == "</>" {
				tok.Text = "</" + name + ">"
			}
		}
		repaired = append(repaired, tok)
	}

	return repaired
}

// Prettify renders tokens with every opening, self-closing and trailing
// closing tag on a new line indented by depth. Depth never drops below
// zero, so unbalanced input still renders.
func Prettify(tokens []Token, indent string) []string {
	depth := 0
	out := make([]string, 0, len(tokens))

	for i, tok := range tokens {
		if tok.Kind != KindTag {
			out = append(out, valueText(tokens, i))
			continue
		}

		switch Classify(tok.Text) {
		case Closing:
			depth = max(depth-1, 0)
			if endsElement(previous(tokens, i)) {
				out = append(out, "\n"+strings.Repeat(indent, depth)+tok.Text)
			} else {
				out = append(out, tok.Text)
			}
		case Prolog:
			out = append(out, strings.Repeat(indent, depth)+tok.Text)
		case SelfClosing:
			out = append(out, "\n"+strings.Repeat(indent, depth)+tok.Text)
		case Declaration:
			out = append(out, tok.Text)
		default:
			out = append(out, "\n"+strings.Repeat(indent, depth)+tok.Text)
			depth++
		}
	}

	return out
}

// KeyValue renders tokens as indented "name: value" lines. Closing tags
// only reduce depth and prologs are dropped. Attributes stay part of the
// name.
func KeyValue(tokens []Token, indent string) []string {
	depth := 0
	out := make([]string, 0, len(tokens))

	for i, tok := range tokens {
		if tok.Kind != KindTag {
			out = append(out, valueText(tokens, i))
			continue
		}

		text := tok.Text
		switch Classify(text) {
		case Closing:
			depth = max(depth-1, 0)
		case Prolog:
		case SelfClosing:
			out = append(out, "\n"+strings.Repeat(indent, depth)+text[1:len(text)-2]+":")
		case Declaration:
			out = append(out, text)
		default:
			out = append(out, "\n"+strings.Repeat(indent, depth)+text[1:len(text)-1]+": ")
			depth++
		}
	}

	return out
}

// valueText starts a value on a new line when it follows a finished element.
func valueText(tokens []Token, i int) string {
	if endsElement(previous(tokens, i)) {
		return "\n" + tokens[i].Text
	}
	return tokens[i].Text
}

func previous(tokens []Token, i int) string {
	if i == 0 {
		return ""
	}
	return tokens[i-1].Text
}

func endsElement(s string) bool {
	return strings.HasPrefix(s, "</") || strings.HasSuffix(s, "/>")
}
