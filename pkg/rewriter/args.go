package rewriter

import (
	"go/ast"
	"go/token"
)

// extractArgNames collects the displayable parameter names of a
// signature in declaration order. Multi-name fields (`a, b int`)
// flatten left to right. The receiver never appears here because it is
// not part of the parameter list. The enable/disable filter applies
// only when the directive was attached to this function directly.
//
// Unnamed and blank parameters cannot be referenced by the generated
// print call, so they are rejected rather than silently skipped.
func extractArgNames(opts Options, applied attrApplied, ftype *ast.FuncType, fset *token.FileSet) ([]string, []Diagnostic) {
	if ftype.Params == nil {
		return nil, nil
	}

	var names []string
	var diags []Diagnostic
	for _, field := range ftype.Params.List {
		if len(field.Names) == 0 {
			diags = append(diags, diagf(fset.Position(field.Pos()), "cannot trace unnamed parameter; name it or remove the directive"))
			continue
		}
		for _, name := range field.Names {
			if name.Name == "_" {
				diags = append(diags, diagf(fset.Position(name.Pos()), "cannot trace blank parameter; name it or remove the directive"))
				continue
			}
			if applied == appliedDirectly && opts.Filter.Excludes(name.Name) {
				continue
			}
			names = append(names, name.Name)
		}
	}
	return names, diags
}
