// Package rewriter instruments Go source at build time. A trace
// directive in a declaration's doc comment makes the rewriter replace
// the function body with one that prints structured entering/exiting
// lines, argument and return values included, indented by the current
// per-goroutine call depth:
//
//	//gotrace:trace
//	func foo(a, b int) { bar(a, b) }
//
//	[+] Entering foo(a = 1, b = 2)
//	 [+] Entering bar(a = 1, b = 2)
//	 [-] Exiting bar = 3
//	[-] Exiting foo = ()
//
// The directive attaches to a function or method, to a type (tracing
// every method of that type in the same file), or to the package
// clause (tracing every function in that file and declaring the depth
// counter automatically). Options:
//
//	prefix_enter=S   entry line prefix, default [+]
//	prefix_exit=S    exit line prefix, default [-]
//	enable=a,b       trace only the listed functions (or arguments)
//	disable=a,b      trace everything but the listed ones
//	pause            wait for a line on stdin after each trace line
//	pretty           pretty-print the return value
//	logging          emit through slog at trace level instead of stdout
//	format_enter=S   custom entry template, e.g. "i is {i}"
//	format_exit=S    custom exit template; {r} is the return value
//
// Templates interpolate `{name}` or `{name:verb}` placeholders against
// the function's parameter names; `{{` and `}}` print literal braces.
// enable and disable are mutually exclusive, as are the custom formats
// and pretty.
//
// Instrumented code calls into the tracelog package and expects a
// counter `var traceDepth tracelog.Depth` in scope; outside file-scope
// directives, declaring it is the caller's responsibility.
package rewriter
