package rewriter

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/cockroachdb/errors"
)

// Diagnostic is a build-time failure attached to a source position. The
// rewriter never fails at runtime of the traced program; everything it
// rejects is reported this way and surfaced before any output is written.
type Diagnostic struct {
	Pos token.Position
	Msg string
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", d.Pos, d.Msg)
	}
	return d.Msg
}

func diagf(pos token.Position, format string, args ...any) Diagnostic {
	return Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// DiagnosticError folds a diagnostic list into one error, one rendered
// diagnostic per line. Returns nil for an empty list.
func DiagnosticError(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	return errors.Newf("%s", strings.Join(lines, "\n"))
}
