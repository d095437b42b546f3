package rewriter

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// compileTemplate translates a named-placeholder template into a fmt
// format string using explicit argument indexes, plus the ordered list
// of names that supply those arguments.
//
// `{name}` resolves name against available and compiles to `%[N]v`,
// where N is the 1-based position of the name's first use; later
// occurrences of the same name reuse its position. `{name:spec}`
// carries a display spec through verbatim: the spec's final rune is the
// fmt verb and the rest precedes the index, so `{x:08.2f}` compiles to
// `%08.2[1]f`. `{{` and `}}` produce literal braces, a lone `}` is an
// error, and a literal `%` is escaped. Whitespace inside a placeholder
// is only tolerated between the identifier and the closing brace.
func compileTemplate(template string, available []string) (string, []string, error) {
	var out strings.Builder
	var used []string
	avail := slices.Clone(available)

	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '{':
			if i+1 < len(runes) && runes[i+1] == '{' {
				out.WriteByte('{')
				i++
				continue
			}
			frag, end, err := compilePlaceholder(runes, i+1, &avail, &used)
			if err != nil {
				return "", used, err
			}
			out.WriteString(frag)
			i = end
		case '}':
			if i+1 < len(runes) && runes[i+1] == '}' {
				out.WriteByte('}')
				i++
				continue
			}
			return "", used, errors.New("invalid format string: unmatched `}`; to print `}`, escape it as `}}`")
		case '%':
			out.WriteString("%%")
		default:
			out.WriteRune(c)
		}
	}
	return out.String(), used, nil
}

// compilePlaceholder scans one `{...}` placeholder starting just after
// the opening brace and returns the compiled fmt fragment along with
// the index of the closing brace.
func compilePlaceholder(runes []rune, start int, avail, used *[]string) (string, int, error) {
	var ident strings.Builder
	i := start
	closed := false

scan:
	for ; i < len(runes); i++ {
		switch c := runes[i]; {
		case c == '}':
			closed = true
			break scan
		case c == '\n':
			return "", i, errors.New("invalid format string: newline inside placeholder")
		case unicode.IsSpace(c):
			// Only trailing whitespace before the closing brace is legal.
			for i++; i < len(runes); i++ {
				switch c := runes[i]; {
				case c == '}':
					closed = true
					break scan
				case c == '\n':
					return "", i, errors.New("invalid format string: newline inside placeholder")
				case !unicode.IsSpace(c):
					return "", i, errors.Newf("invalid format string: expected `}`, found %q", string(c))
				}
			}
			break scan
		default:
			ident.WriteRune(c)
		}
	}
	if !closed {
		return "", i, errors.New("invalid format string: expected `}` but the string ended; to print `{`, escape it as `{{`")
	}

	name, spec, _ := strings.Cut(ident.String(), ":")

	if idx := slices.Index(*used, name); idx >= 0 {
		return formatVerb(idx+1, spec), i, nil
	}
	if idx := slices.Index(*avail, name); idx >= 0 {
		*avail = slices.Delete(*avail, idx, idx+1)
		*used = append(*used, name)
		return formatVerb(len(*used), spec), i, nil
	}
	return "", i, errors.Newf("cannot find `%s` among the traced names", name)
}

// formatVerb renders one explicit-index fmt verb. An empty spec means
// the default `v` verb.
func formatVerb(pos int, spec string) string {
	verb := "v"
	flags := ""
	if spec != "" {
		r := []rune(spec)
		verb = string(r[len(r)-1])
		flags = string(r[:len(r)-1])
	}
	return fmt.Sprintf("%%%s[%d]%s", flags, pos, verb)
}

// escapePercent makes a literal string safe for embedding in a fmt
// format string.
func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
