package rewriter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

func TestCompileTemplate(t *testing.T) {
	datadriven.RunTest(t, "testdata/interp", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "compile":
			var available []string
			for _, arg := range td.CmdArgs {
				if arg.Key == "available" {
					available = arg.Vals
				}
			}
			template := strings.TrimSuffix(td.Input, "\n")
			format, used, err := compileTemplate(template, available)
			if err != nil {
				return fmt.Sprintf("error: %v", err)
			}
			return fmt.Sprintf("format: %q\nused: [%s]", format, strings.Join(used, " "))

		default:
			return fmt.Sprintf("unrecognized command %q", td.Cmd)
		}
	})
}

func TestCompileTemplateWhitespace(t *testing.T) {
	// Trailing whitespace before the closing brace is tolerated.
	format, used, err := compileTemplate("{a  }", []string{"a"})
	require.NoError(t, err)
	require.Equal(t, "%[1]v", format)
	require.Equal(t, []string{"a"}, used)

	// Whitespace anywhere else inside a placeholder is not.
	_, _, err = compileTemplate("{a b}", []string{"a", "b"})
	require.ErrorContains(t, err, "expected `}`")

	_, _, err = compileTemplate("{ a}", []string{"a"})
	require.ErrorContains(t, err, "expected `}`")

	// A raw newline never closes a placeholder.
	_, _, err = compileTemplate("{a\n}", []string{"a"})
	require.ErrorContains(t, err, "newline")
}

func TestCompileTemplateLeavesAvailableUntouched(t *testing.T) {
	available := []string{"a", "b"}
	_, used, err := compileTemplate("{unknownName}", available)
	require.ErrorContains(t, err, "unknownName")
	require.Empty(t, used)
	require.Equal(t, []string{"a", "b"}, available)
}

func TestCompileTemplateEmptySpec(t *testing.T) {
	// A dangling colon behaves like no spec at all.
	format, _, err := compileTemplate("{a:}", []string{"a"})
	require.NoError(t, err)
	require.Equal(t, "%[1]v", format)
}

func TestCompileTemplateReturnPlaceholder(t *testing.T) {
	format, used, err := compileTemplate("returning {r}", []string{returnPlaceholder})
	require.NoError(t, err)
	require.Equal(t, "returning %[1]v", format)
	require.Equal(t, []string{"r"}, used)

	// A template that never mentions r consumes nothing.
	_, used, err = compileTemplate("all done", []string{returnPlaceholder})
	require.NoError(t, err)
	require.Empty(t, used)
}
