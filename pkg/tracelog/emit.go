package tracelog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/kr/pretty"
)

// LevelTrace is the severity used by Log, one step below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

var (
	mu sync.Mutex

	// Output receives lines written by Print. Defaults to stdout.
	Output io.Writer = os.Stdout

	// Logger receives records emitted by Log. When nil, slog.Default()
	// is used.
	Logger *slog.Logger

	stdin = bufio.NewReader(os.Stdin)
)

// Print writes one trace line to Output, indented by the calling
// goroutine's current depth.
func (d *Depth) Print(format string, args ...any) {
	line := indent(d.Get()) + fmt.Sprintf(format, args...)
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(Output, line)
}

// Log emits one trace line through slog at LevelTrace, indented by the
// calling goroutine's current depth.
func (d *Depth) Log(format string, args ...any) {
	l := Logger
	if l == nil {
		l = slog.Default()
	}
	l.Log(context.Background(), LevelTrace, indent(d.Get())+fmt.Sprintf(format, args...))
}

func indent(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// Pause blocks until one line arrives on standard input. There is no
// timeout and no cancellation; the program simply waits.
func Pause() {
	_, _ = stdin.ReadString('\n')
}

// Pretty wraps v so the %# v verb renders a multi-line view of it.
func Pretty(v any) any {
	return pretty.Formatter(v)
}

// Tuple displays a function's return values as one unit: (1, 2).
type Tuple []any

// Unit is the value shown for functions that return nothing: ().
var Unit = Tuple(nil)

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
