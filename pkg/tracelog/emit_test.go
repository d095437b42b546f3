package tracelog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := Output
	Output = &buf
	t.Cleanup(func() { Output = old })
	return &buf
}

// The shape every instrumented function ends up with: enter line, body
// in a closure bracketed by Inc/deferred Dec, exit line. fib-style
// nesting must indent one space per level and unwind cleanly.
func TestPrintNesting(t *testing.T) {
	buf := captureOutput(t)

	var d Depth
	bar := func(a, b int) int {
		d.Print("[ENTER] Entering bar(a = %[1]v, b = %[2]v)", a, b)
		fnReturnValue := func() int {
			d.Inc()
			defer d.Dec()
			return 2
		}()
		d.Print("[EXIT] Exiting bar = %v", fnReturnValue)
		return fnReturnValue
	}
	foo := func(a, b int) {
		d.Print("[+] Entering foo(a = %[1]v, b = %[2]v)", a, b)
		func() {
			d.Inc()
			defer d.Dec()
			bar(a, b)
		}()
		d.Print("[-] Exiting foo = %v", Unit)
	}
	foo(1, 2)

	want := "[+] Entering foo(a = 1, b = 2)\n" +
		" [ENTER] Entering bar(a = 1, b = 2)\n" +
		" [EXIT] Exiting bar = 2\n" +
		"[-] Exiting foo = ()\n"
	require.Equal(t, want, buf.String())
}

// Sibling calls at the same level print at the same depth.
func TestPrintSiblingCalls(t *testing.T) {
	buf := captureOutput(t)

	var d Depth
	leaf := func(n int) {
		d.Print("[+] Entering leaf(n = %[1]v)", n)
		func() {
			d.Inc()
			defer d.Dec()
		}()
		d.Print("[-] Exiting leaf = %v", Unit)
	}
	leaf(1)
	leaf(2)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		require.False(t, strings.HasPrefix(line, " "), "unexpected indentation: %q", line)
	}
}

func TestLogUsesTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	old := Logger
	Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))
	t.Cleanup(func() { Logger = old })

	var d Depth
	d.Inc()
	d.Log("[+] Entering f(a = %[1]v)", 7)
	d.Dec()

	out := buf.String()
	require.Contains(t, out, "DEBUG-4")
	require.Contains(t, out, "[+] Entering f(a = 7)")

	// A default-level handler suppresses trace lines entirely.
	buf.Reset()
	Logger = slog.New(slog.NewTextHandler(&buf, nil))
	d.Log("hidden")
	require.Empty(t, buf.String())
}

func TestTupleString(t *testing.T) {
	require.Equal(t, "()", Unit.String())
	require.Equal(t, "(1)", Tuple{1}.String())
	require.Equal(t, "(1, two, true)", Tuple{1, "two", true}.String())
}

func TestPrettyFormatting(t *testing.T) {
	type point struct {
		X, Y int
	}
	buf := captureOutput(t)

	var d Depth
	d.Print("[-] Exiting f = %# v", Pretty(point{X: 1, Y: 2}))

	out := buf.String()
	require.Contains(t, out, "X:")
	require.Contains(t, out, "Y:")
}
