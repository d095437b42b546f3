package rewriter

import (
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// attrApplied records whether the directive in force was attached to
// the current node itself or inherited from an enclosing attachment.
// Filters are consulted only at the node the directive was applied to
// directly; it flips to appliedIndirectly the moment recursion enters a
// child.
type attrApplied int

const (
	appliedDirectly attrApplied = iota
	appliedIndirectly
)

// walker applies every directive in one file. Attachments nest file >
// type > function; the outermost one drives the recursion and inner
// directives on nodes it already covers are ignored, so a function is
// never instrumented twice.
//
// A file is the unit with inline content: methods of an annotated type
// declared in other files of the package are not visible here and are
// not transformed.
type walker struct {
	fset     *token.FileSet
	file     *ast.File
	defaults Defaults

	diags       []Diagnostic
	modified    bool
	needsImport bool
	handled     map[*ast.FuncDecl]bool
}

func newWalker(fset *token.FileSet, file *ast.File, defaults Defaults) *walker {
	return &walker{
		fset:     fset,
		file:     file,
		defaults: defaults,
		handled:  make(map[*ast.FuncDecl]bool),
	}
}

// run processes the file's directives and reports whether anything was
// transformed. Diagnostics accumulate in w.diags; a failing attachment
// does not stop the others from being checked.
func (w *walker) run() bool {
	if len(findDirectives(w.file.Doc)) > 0 {
		// The file attachment is outermost; valid or not, it owns every
		// declaration below it.
		if opts, ok := w.directiveOptions(w.file.Doc); ok {
			w.transformFileScope(opts)
		}
		return w.modified
	}

	// Type attachments first: they are outermore than directives on
	// their own methods.
	for _, decl := range w.file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		w.applyGenDirective(gen)
	}

	for _, decl := range w.file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		opts, ok := w.directiveOptions(fn.Doc)
		if !ok {
			continue
		}
		if w.handled[fn] {
			continue // an enclosing attachment already covered it
		}
		w.transformFunc(opts, appliedDirectly, fn)
	}

	return w.modified
}

// directiveOptions extracts and validates the directive on a doc
// comment, if any. Invalid directives record diagnostics and report
// no options.
func (w *walker) directiveOptions(doc *ast.CommentGroup) (Options, bool) {
	dirs := findDirectives(doc)
	if len(dirs) == 0 {
		return Options{}, false
	}
	pos := w.fset.Position(dirs[0].pos)
	if len(dirs) > 1 {
		w.diags = append(w.diags, diagf(w.fset.Position(dirs[1].pos), "duplicate trace directive"))
		return Options{}, false
	}

	tokens, diags := tokenizeDirective(dirs[0].args, pos)
	if len(diags) > 0 {
		w.diags = append(w.diags, diags...)
		return Options{}, false
	}
	opts, diags := buildOptions(tokens, w.defaults, pos)
	if len(diags) > 0 {
		w.diags = append(w.diags, diags...)
		return Options{}, false
	}
	return opts, true
}

// transformFileScope traces every function and method in the file. The
// name filter applies here, where the directive is direct; the
// functions themselves are then reached indirectly, so argument-level
// filtering is off inside them. Afterwards the depth counter is
// declared once, right after the imports.
func (w *walker) transformFileScope(opts Options) {
	for _, decl := range w.file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if fn.Body == nil {
			continue // assembly or external stub, nothing to wrap
		}
		if opts.Filter.Excludes(fn.Name.Name) {
			continue
		}
		w.transformFunc(opts, appliedIndirectly, fn)
	}
	w.injectDepthVar()
	w.needsImport = true
	w.modified = true
}

// applyGenDirective handles directives on type declarations, the
// whole-implementation attachment: every method of the annotated type
// in this file is traced. Directives on other declaration kinds are
// unsupported targets.
func (w *walker) applyGenDirective(gen *ast.GenDecl) {
	if opts, ok := w.directiveOptions(gen.Doc); ok {
		if gen.Tok != token.TYPE {
			w.diags = append(w.diags, diagf(w.fset.Position(gen.Pos()), "trace directive is only supported on functions, types, and the package clause"))
			return
		}
		for _, spec := range gen.Specs {
			w.transformTypeScope(opts, spec.(*ast.TypeSpec).Name.Name)
		}
	}

	if gen.Tok != token.TYPE {
		return
	}
	for _, spec := range gen.Specs {
		ts := spec.(*ast.TypeSpec)
		if opts, ok := w.directiveOptions(ts.Doc); ok {
			w.transformTypeScope(opts, ts.Name.Name)
		}
	}
}

func (w *walker) transformTypeScope(opts Options, typeName string) {
	for _, decl := range w.file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		if receiverTypeName(fn.Recv.List[0].Type) != typeName {
			continue
		}
		if fn.Body == nil {
			continue
		}
		if opts.Filter.Excludes(fn.Name.Name) {
			w.handled[fn] = true // excluded here; a directive on the method itself is still inner
			continue
		}
		w.transformFunc(opts, appliedIndirectly, fn)
	}
}

func (w *walker) transformFunc(opts Options, applied attrApplied, fn *ast.FuncDecl) {
	if w.handled[fn] {
		return
	}
	w.handled[fn] = true

	if fn.Body == nil {
		w.diags = append(w.diags, diagf(w.fset.Position(fn.Pos()), "cannot trace %s: function has no body", fn.Name.Name))
		return
	}

	body, usesTracelog, diags := synthesizeBody(opts, applied, fn, w.fset)
	if len(diags) > 0 {
		w.diags = append(w.diags, diags...)
		return
	}
	fn.Body = body
	w.needsImport = w.needsImport || usesTracelog
	w.modified = true
}

// injectDepthVar declares the depth counter once, as the first
// declaration after the imports.
func (w *walker) injectDepthVar() {
	depthDecl := &ast.GenDecl{
		Tok: token.VAR,
		Specs: []ast.Spec{&ast.ValueSpec{
			Names: []*ast.Ident{ast.NewIdent(depthVarName)},
			Type:  pkgSelector(tracelogPkgName, "Depth"),
		}},
	}

	insertAt := 0
	for i, decl := range w.file.Decls {
		if gen, ok := decl.(*ast.GenDecl); ok && gen.Tok == token.IMPORT {
			insertAt = i + 1
		}
	}

	decls := make([]ast.Decl, 0, len(w.file.Decls)+1)
	decls = append(decls, w.file.Decls[:insertAt]...)
	decls = append(decls, depthDecl)
	decls = append(decls, w.file.Decls[insertAt:]...)
	w.file.Decls = decls
}

// addTracelogImport makes the runtime support package available to the
// generated code. No-op when the file already imports it.
func (w *walker) addTracelogImport() {
	astutil.AddImport(w.fset, w.file, tracelogImportPath)
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	}
	return ""
}
