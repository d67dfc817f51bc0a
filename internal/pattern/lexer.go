package pattern

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gofex/gofex/internal/match"
)

// lexMeta rewrites every $name metavariable in text to a marker identifier
// the ordinary Go parser accepts. Dollar signs inside string, rune, and
// comment literals are left alone. The returned text parses with the stock
// grammar; the marker spelling is owned by the match package.
func lexMeta(text string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		switch c {
		case '"', '\'':
			end, err := scanQuoted(text, i, rune(c))
			if err != nil {
				return "", err
			}
			out.WriteString(text[i:end])
			i = end
		case '`':
			end := strings.IndexByte(text[i+1:], '`')
			if end < 0 {
				return "", &SyntaxError{Pattern: text, Offset: i, Msg: "unterminated raw string literal"}
			}
			out.WriteString(text[i : i+end+2])
			i += end + 2
		case '/':
			if i+1 < len(text) && text[i+1] == '/' {
				end := strings.IndexByte(text[i:], '\n')
				if end < 0 {
					end = len(text) - i
				}
				out.WriteString(text[i : i+end])
				i += end
			} else if i+1 < len(text) && text[i+1] == '*' {
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return "", &SyntaxError{Pattern: text, Offset: i, Msg: "unterminated comment"}
				}
				out.WriteString(text[i : i+end+4])
				i += end + 4
			} else {
				out.WriteByte(c)
				i++
			}
		case '$':
			name, width := scanIdent(text[i+1:])
			if name == "" {
				return "", &SyntaxError{
					Pattern: text,
					Offset:  i,
					Msg:     "expected metavariable name immediately after $",
				}
			}
			out.WriteString(match.MetaIdent(name))
			i += 1 + width
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// scanQuoted returns the index just past a quoted literal starting at start.
func scanQuoted(text string, start int, quote rune) (int, error) {
	i := start + 1
	for i < len(text) {
		switch text[i] {
		case '\\':
			i += 2
		case byte(quote):
			return i + 1, nil
		case '\n':
			return 0, &SyntaxError{Pattern: text, Offset: start, Msg: "unterminated literal"}
		default:
			i++
		}
	}
	return 0, &SyntaxError{Pattern: text, Offset: start, Msg: "unterminated literal"}
}

// scanIdent returns the identifier at the start of s and its byte width.
func scanIdent(s string) (string, int) {
	i := 0
	for i < len(s) {
		r, w := utf8.DecodeRuneInString(s[i:])
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			i += w
			continue
		}
		break
	}
	return s[:i], i
}
