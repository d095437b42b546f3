package rewriter

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFromDirective(t *testing.T, raw string) (Options, []Diagnostic) {
	t.Helper()
	pos := token.Position{Filename: "test.go", Line: 1, Column: 1}
	tokens, diags := tokenizeDirective(raw, pos)
	require.Empty(t, diags)
	return buildOptions(tokens, BuiltinDefaults(), pos)
}

func TestBuildOptionsDefaults(t *testing.T) {
	opts, diags := buildFromDirective(t, "")
	require.Empty(t, diags)
	require.Equal(t, "[+]", opts.PrefixEnter)
	require.Equal(t, "[-]", opts.PrefixExit)
	require.False(t, opts.Pause)
	require.False(t, opts.Pretty)
	require.False(t, opts.Logging)
	require.Nil(t, opts.FormatEnter)
	require.Nil(t, opts.FormatExit)
	require.False(t, opts.Filter.Excludes("anything"))
}

func TestBuildOptionsValues(t *testing.T) {
	opts, diags := buildFromDirective(t,
		`prefix_enter="[ ENTER ]" prefix_exit=[EXIT] pause pretty logging`)
	require.Empty(t, diags)
	require.Equal(t, "[ ENTER ]", opts.PrefixEnter)
	require.Equal(t, "[EXIT]", opts.PrefixExit)
	require.True(t, opts.Pause)
	require.True(t, opts.Pretty)
	require.True(t, opts.Logging)
}

func TestBuildOptionsFilters(t *testing.T) {
	opts, diags := buildFromDirective(t, "enable=a,b")
	require.Empty(t, diags)
	require.False(t, opts.Filter.Excludes("a"))
	require.False(t, opts.Filter.Excludes("b"))
	require.True(t, opts.Filter.Excludes("c"))

	opts, diags = buildFromDirective(t, "disable=b")
	require.Empty(t, diags)
	require.False(t, opts.Filter.Excludes("a"))
	require.True(t, opts.Filter.Excludes("b"))
}

func TestBuildOptionsEnableDisableConflict(t *testing.T) {
	_, diags := buildFromDirective(t, "enable=a disable=b")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, "enable and disable")

	// The conflict holds even when one list is empty.
	_, diags = buildFromDirective(t, "enable= disable=b")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, "enable and disable")
}

func TestBuildOptionsFormatPrettyConflict(t *testing.T) {
	_, diags := buildFromDirective(t, `format_enter="{a}" pretty`)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, "pretty")

	_, diags = buildFromDirective(t, `format_exit="returning {r}" pretty`)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, "pretty")
}

func TestBuildOptionsRejectsBadTokens(t *testing.T) {
	_, diags := buildFromDirective(t, "frobnicate=1")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, `unknown option "frobnicate"`)

	_, diags = buildFromDirective(t, "pause=yes")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, "takes no value")

	_, diags = buildFromDirective(t, "prefix_enter")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, "requires a value")

	_, diags = buildFromDirective(t, "pause pause")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, "duplicate option")
}

// A single directive reports every violation it has, not just the first.
func TestBuildOptionsAccumulates(t *testing.T) {
	_, diags := buildFromDirective(t, `bogus enable=a disable=b format_enter="{a}" pretty`)
	require.Len(t, diags, 3)
}

func TestBuildOptionsUsesDefaults(t *testing.T) {
	pos := token.Position{Filename: "test.go", Line: 1}
	defaults := Defaults{PrefixEnter: ">>", PrefixExit: "<<", Logging: true}
	opts, diags := buildOptions(nil, defaults, pos)
	require.Empty(t, diags)
	require.Equal(t, ">>", opts.PrefixEnter)
	require.Equal(t, "<<", opts.PrefixExit)
	require.True(t, opts.Logging)

	// Directive options still win over defaults.
	tokens, tokDiags := tokenizeDirective("prefix_enter=[+]", pos)
	require.Empty(t, tokDiags)
	opts, diags = buildOptions(tokens, defaults, pos)
	require.Empty(t, diags)
	require.Equal(t, "[+]", opts.PrefixEnter)
	require.Equal(t, "<<", opts.PrefixExit)
}
