package rewriter

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"

	"github.com/cockroachdb/errors"
)

// instrumentationMarker is prepended to every rewritten file. Files
// that already start with it are left untouched, so processing is
// idempotent.
const instrumentationMarker = "// INSTRUMENTED BY GOTRACE"

// Result is the outcome of processing one file. Diags non-empty means
// the file failed and Output must not be used; Modified false with nil
// Diags means the file carried no directives.
type Result struct {
	Output   []byte
	Modified bool
	Diags    []Diagnostic
}

// ProcessFile rewrites every trace directive in the file at path.
func ProcessFile(path string, defaults Defaults) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "reading %s", path)
	}
	return ProcessSource(path, src, defaults)
}

// ProcessSource rewrites every trace directive in src. filename is
// used for positions in diagnostics.
func ProcessSource(filename string, src []byte, defaults Defaults) (Result, error) {
	if bytes.HasPrefix(src, []byte(instrumentationMarker)) {
		return Result{Output: src}, nil
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return Result{}, errors.Wrapf(err, "parsing %s", filename)
	}

	w := newWalker(fset, file, defaults)
	modified := w.run()
	if len(w.diags) > 0 {
		return Result{Diags: w.diags}, nil
	}
	if !modified {
		return Result{Output: src}, nil
	}
	if w.needsImport {
		w.addTracelogImport()
	}

	out, err := render(fset, file)
	if err != nil {
		return Result{}, errors.Wrapf(err, "rendering %s", filename)
	}
	return Result{Output: out, Modified: true}, nil
}

// ProcessFileInPlace rewrites the file at path, overwriting it when
// the transformation changed anything. Returned diagnostics mean the
// file was left untouched.
func ProcessFileInPlace(path string, defaults Defaults) ([]Diagnostic, error) {
	res, err := ProcessFile(path, defaults)
	if err != nil || len(res.Diags) > 0 || !res.Modified {
		return res.Diags, err
	}
	if err := os.WriteFile(path, res.Output, 0644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", path)
	}
	return nil, nil
}

// render formats the rewritten file, prepends the marker line, and
// re-parses the output to guarantee the generated source is valid Go.
func render(fset *token.FileSet, file *ast.File) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(instrumentationMarker + "\n")
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, errors.Wrap(err, "formatting instrumented source")
	}
	out := buf.Bytes()
	if _, err := parser.ParseFile(token.NewFileSet(), "instrumented", out, parser.ParseComments); err != nil {
		return nil, errors.Wrap(err, "instrumented source is not valid Go")
	}
	return out, nil
}
