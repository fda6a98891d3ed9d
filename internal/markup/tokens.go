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
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// space and digit are the Unicode whitespace and decimal digit classes;
// RE2's \s and \d only match ASCII.
const (
	space = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`
	digit = `\p{Nd}`
)

var (
	// reTag rejects "<1", "<-", "<[" and "< " so comparisons and array
	// literals in log text are not mistaken for tags.
	reTag             = regexp.MustCompile(`<[^<>\[` + space + digit + `-][^>]*>`)
	reSpacedTag       = regexp.MustCompile(`[` + space + `]*(<[^<>]+>)[` + space + `]*`)
	reNamespace       = regexp.MustCompile(` xmlns[^"']+['"][^"']+["']`)
	reNamespacePrefix = regexp.MustCompile(`(</?)[^:<> ]{0,20}:`)
	rePreface         = regexp.MustCompile(`(<[^<>]+)(<)`)
)

// TokenKind tells tags from the text between them.
type TokenKind int

const (
	KindValue TokenKind = iota
	KindTag
)

// Token is one piece of tokenized markup. Concatenating the Text of all
// tokens returned by Tokenize gives back its input.
type Token struct {
	Kind TokenKind
	Text string
}

// TagClass is the role of a tag token.
type TagClass int

const (
	Opening TagClass = iota
	Closing
	SelfClosing
	Prolog      // <?...?>
	Declaration // <!...>, including comments and CDATA
)

// Classify determines the role of a tag. The checks run in a fixed order,
// so "<!x/>" is self-closing and "</x/>" is closing.
func Classify(tag string) TagClass {
	if len(tag) < 3 {
		return Opening
	}
	switch {
	case tag[1] == '/':
		return Closing
	case tag[1] == '?':
		return Prolog
	case tag[len(tag)-2] == '/':
		return SelfClosing
	case tag[1] == '!':
		return Declaration
	default:
		return Opening
	}
}

// StripSpace removes every run of whitespace directly before or after a tag.
func StripSpace(text string) string {
	return reSpacedTag.ReplaceAllString(text, "${1}")
}

// Clean removes xmlns declarations and the namespace prefix of opening and
// closing tag names. Clean(Clean(s)) == Clean(s) for typical markup.
func Clean(text string) string {
	text = reNamespace.ReplaceAllString(text, "")
	return reNamespacePrefix.ReplaceAllString(text, "${1}")
}

// SplitPreface separates leading text that cannot be markup: when a "<" is
// followed by another "<" before any ">", everything up to the second "<"
// is returned as preface and left untouched by formatting.
func SplitPreface(text string) (preface, rest string) {
	loc := rePreface.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text
	}
	return text[:loc[3]], text[loc[4]:]
}

// Tokenize splits text into alternating tag and value tokens. Empty values
// between adjacent tags are dropped.
func Tokenize(text string) []Token {
	matches := reTag.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		if m[0] > last {
			tokens = append(tokens, Token{Kind: KindValue, Text: text[last:m[0]]})
		}
		tokens = append(tokens, Token{Kind: KindTag, Text: text[m[0]:m[1]]})
		last = m[1]
	}
	if last < len(text) {
		tokens = append(tokens, Token{Kind: KindValue, Text: text[last:]})
	}

	return tokens
}

// Join concatenates token text.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

// opensElement reports whether repair treats s as pushing a name: a "<"
// followed by a name character, ending at its first ">" which must not
// close an empty element. Prologs and declarations qualify, and so does a
// value such as "<1>" that is too numeric to tokenize as a tag.
func opensElement(s string) bool {
	if len(s) < 3 || s[0] != '<' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[1:])
	if r == '<' || r == '>' || r == '/' || unicode.IsSpace(r) {
		return false
	}
	end := strings.IndexByte(s[2:], '>')
	if end < 0 {
		return false
	}
	end += 2
	return s[end-1] != '/'
}

// closesElement reports whether repair pops for s. The ">" must appear on
// the same line as the "</".
func closesElement(s string) bool {
	if !strings.HasPrefix(s, "</") {
		return false
	}
	end := strings.IndexAny(s[2:], ">\n")
	return end >= 0 && s[2+end] == '>'
}

// elementName is the text after "<" up to the first space or the last
// character.
func elementName(s string) string {
	name, _, _ := strings.Cut(s[1:len(s)-1], " ")
	return name
}
