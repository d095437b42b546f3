package rewriter

import (
	"go/ast"
	"go/token"
	"strings"
	"unicode"
)

// directivePrefix marks a declaration (or, on the package clause, a
// whole file) for tracing:
//
//	//gotrace:trace prefix_enter="[ENTER]" enable=a,b pause
const directivePrefix = "//gotrace:trace"

type directive struct {
	pos  token.Pos
	args string
}

// findDirectives returns every trace directive in a doc comment group.
// More than one on a single declaration is a configuration error the
// caller reports.
func findDirectives(doc *ast.CommentGroup) []directive {
	if doc == nil {
		return nil
	}
	var found []directive
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue // some other gotrace: directive family
		}
		found = append(found, directive{pos: c.Pos(), args: strings.TrimSpace(rest)})
	}
	return found
}

// tokenizeDirective splits a directive's argument text into raw
// key/value and flag tokens. Values may be double-quoted with \" and
// \\ escapes; unquoted values run to the next whitespace.
func tokenizeDirective(raw string, pos token.Position) ([]optionToken, []Diagnostic) {
	var tokens []optionToken
	var diags []Diagnostic

	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}

		start := i
		for i < len(runes) && runes[i] != '=' && !unicode.IsSpace(runes[i]) {
			i++
		}
		key := string(runes[start:i])

		if i >= len(runes) || runes[i] != '=' {
			tokens = append(tokens, optionToken{key: key})
			continue
		}
		i++ // consume '='

		value, next, ok := scanValue(runes, i)
		if !ok {
			diags = append(diags, diagf(pos, "unterminated quoted value for option %q", key))
			return tokens, diags
		}
		i = next
		tokens = append(tokens, optionToken{key: key, value: value, hasValue: true})
	}
	return tokens, diags
}

func scanValue(runes []rune, i int) (value string, next int, ok bool) {
	if i >= len(runes) || runes[i] != '"' {
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		return string(runes[start:i]), i, true
	}

	var sb strings.Builder
	i++ // opening quote
	for i < len(runes) {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\') {
				sb.WriteRune(runes[i+1])
				i += 2
				continue
			}
			sb.WriteRune('\\')
			i++
		case '"':
			return sb.String(), i + 1, true
		default:
			sb.WriteRune(runes[i])
			i++
		}
	}
	return "", i, false
}
