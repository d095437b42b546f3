package rewriter

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

const (
	// depthVarName is the nesting counter instrumented bodies use. It
	// must be declared once in the lexical scope of use; file-scope
	// directives declare it automatically.
	depthVarName = "traceDepth"

	// returnVarName binds the original body's result in the wrapper.
	returnVarName = "fnReturnValue"

	// returnPlaceholder is the reserved name that refers to the return
	// value inside a format_exit template.
	returnPlaceholder = "r"

	tracelogPkgName    = "tracelog"
	tracelogImportPath = "github.com/smith-xyz/gotrace/pkg/tracelog"
)

// synthesizeBody builds the instrumented replacement for fn's body:
// emit the entry line, run the original body inside a function literal
// that increments the depth counter and decrements it via defer (so the
// counter rebalances even when the body panics), emit the exit line,
// and return the captured results.
//
// The second return value reports whether the generated code references
// the tracelog package and therefore needs its import.
func synthesizeBody(opts Options, applied attrApplied, fn *ast.FuncDecl, fset *token.FileSet) (*ast.BlockStmt, bool, []Diagnostic) {
	argNames, diags := extractArgNames(opts, applied, fn.Type, fset)
	if len(diags) > 0 {
		return nil, false, diags
	}

	pos := fset.Position(fn.Pos())
	name := fn.Name.Name

	enterTmpl := defaultEnterTemplate(argNames)
	if opts.FormatEnter != nil {
		enterTmpl = *opts.FormatEnter
	}
	enterFormat, enterArgs, err := compileTemplate(enterTmpl, argNames)
	if err != nil {
		return nil, false, []Diagnostic{diagf(pos, "format_enter: %v", err)}
	}

	nresults := countResults(fn.Type)

	exitFormat := "%v"
	interpolate := true
	switch {
	case opts.FormatExit != nil:
		var usedExit []string
		exitFormat, usedExit, err = compileTemplate(*opts.FormatExit, []string{returnPlaceholder})
		if err != nil {
			return nil, false, []Diagnostic{diagf(pos, "format_exit: %v", err)}
		}
		interpolate = len(usedExit) > 0
	case opts.Pretty && nresults > 0:
		exitFormat = "%# v"
	}

	enterLine := escapePercent(opts.PrefixEnter) + " Entering " + escapePercent(name) + "(" + enterFormat + ")"
	exitLine := escapePercent(opts.PrefixExit) + " Exiting " + escapePercent(name) + " = " + exitFormat

	usesTracelog := false

	var stmts []ast.Stmt
	stmts = append(stmts, emitStmt(opts.Logging, enterLine, identExprs(enterArgs)))
	if opts.Pause {
		stmts = append(stmts, pauseStmt())
		usesTracelog = true
	}

	bindNames := resultBindings(nresults)
	call := wrappedBodyCall(fn)
	if nresults == 0 {
		stmts = append(stmts, &ast.ExprStmt{X: call})
	} else {
		stmts = append(stmts, &ast.AssignStmt{
			Lhs: identExprs(bindNames),
			Tok: token.DEFINE,
			Rhs: []ast.Expr{call},
		})
	}

	var exitArgs []ast.Expr
	if interpolate {
		value, usesPkg := exitValueExpr(nresults, bindNames)
		if opts.Pretty && nresults > 0 {
			value = callExpr(pkgSelector(tracelogPkgName, "Pretty"), value)
			usesPkg = true
		}
		exitArgs = []ast.Expr{value}
		usesTracelog = usesTracelog || usesPkg
	}
	stmts = append(stmts, emitStmt(opts.Logging, exitLine, exitArgs))
	if opts.Pause {
		stmts = append(stmts, pauseStmt())
	}
	if nresults > 0 {
		stmts = append(stmts, &ast.ReturnStmt{Results: identExprs(bindNames)})
	}

	return &ast.BlockStmt{List: stmts}, usesTracelog, nil
}

// defaultEnterTemplate lists every candidate as `name = {name}` in
// declaration order, so the default and custom paths share the
// interpolation compiler.
func defaultEnterTemplate(argNames []string) string {
	parts := make([]string, len(argNames))
	for i, n := range argNames {
		parts[i] = fmt.Sprintf("%s = {%s}", n, n)
	}
	return strings.Join(parts, ", ")
}

// wrappedBodyCall moves the original body into an immediately invoked
// function literal bracketed by the depth increment and a deferred
// decrement. The literal reuses the original result list, names
// included, so naked returns and defers that write named results keep
// their meaning.
func wrappedBodyCall(fn *ast.FuncDecl) ast.Expr {
	inner := make([]ast.Stmt, 0, len(fn.Body.List)+2)
	inner = append(inner,
		&ast.ExprStmt{X: callExpr(pkgSelector(depthVarName, "Inc"))},
		&ast.DeferStmt{Call: callExpr(pkgSelector(depthVarName, "Dec"))},
	)
	inner = append(inner, fn.Body.List...)

	return &ast.CallExpr{
		Fun: &ast.FuncLit{
			Type: &ast.FuncType{
				Params:  &ast.FieldList{},
				Results: fn.Type.Results,
			},
			Body: &ast.BlockStmt{List: inner},
		},
	}
}

func countResults(ftype *ast.FuncType) int {
	if ftype.Results == nil {
		return 0
	}
	n := 0
	for _, field := range ftype.Results.List {
		if len(field.Names) == 0 {
			n++
		} else {
			n += len(field.Names)
		}
	}
	return n
}

func resultBindings(nresults int) []string {
	switch nresults {
	case 0:
		return nil
	case 1:
		return []string{returnVarName}
	}
	names := make([]string, nresults)
	for i := range names {
		names[i] = returnVarName + strconv.Itoa(i)
	}
	return names
}

// exitValueExpr is the expression the exit line formats: the bound
// result, a tracelog.Tuple of the bound results, or tracelog.Unit for
// functions that return nothing.
func exitValueExpr(nresults int, bindNames []string) (ast.Expr, bool) {
	switch nresults {
	case 0:
		return pkgSelector(tracelogPkgName, "Unit"), true
	case 1:
		return ast.NewIdent(bindNames[0]), false
	}
	return &ast.CompositeLit{
		Type: pkgSelector(tracelogPkgName, "Tuple"),
		Elts: identExprs(bindNames),
	}, true
}

func emitStmt(logging bool, format string, args []ast.Expr) ast.Stmt {
	method := "Print"
	if logging {
		method = "Log"
	}
	callArgs := append([]ast.Expr{stringLit(format)}, args...)
	return &ast.ExprStmt{X: callExpr(pkgSelector(depthVarName, method), callArgs...)}
}

func pauseStmt() ast.Stmt {
	return &ast.ExprStmt{X: callExpr(pkgSelector(tracelogPkgName, "Pause"))}
}

func pkgSelector(pkg, name string) *ast.SelectorExpr {
	return &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(name)}
}

func callExpr(fun ast.Expr, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{Fun: fun, Args: args}
}

func stringLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

func identExprs(names []string) []ast.Expr {
	exprs := make([]ast.Expr, len(names))
	for i, n := range names {
		exprs[i] = ast.NewIdent(n)
	}
	return exprs
}
