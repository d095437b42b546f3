package rewriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gotrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix_enter: '>>'\nlogging: true\n"), 0644))

	defaults, err := LoadDefaults(path)
	require.NoError(t, err)
	require.Equal(t, ">>", defaults.PrefixEnter)
	// Keys absent from the file keep their builtin values.
	require.Equal(t, "[-]", defaults.PrefixExit)
	require.True(t, defaults.Logging)
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	_, err := LoadDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadDefaultsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gotrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prefix_enter: [unclosed"), 0644))
	_, err := LoadDefaults(path)
	require.Error(t, err)
}
