package rewriter

import (
	"go/token"
	"strings"
)

type filterKind int

const (
	filterNone filterKind = iota
	filterEnable
	filterDisable
)

// Filter restricts which names participate in tracing: function names at
// file and type scope, argument names at function scope. The
// representation holds at most one of the enable/disable lists, so a
// filter can never be both.
type Filter struct {
	kind  filterKind
	names map[string]bool
}

func enableFilter(names []string) Filter {
	return Filter{kind: filterEnable, names: nameSet(names)}
}

func disableFilter(names []string) Filter {
	return Filter{kind: filterDisable, names: nameSet(names)}
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// Excludes reports whether name is filtered out: present in a disable
// list, or absent from an enable list.
func (f Filter) Excludes(name string) bool {
	switch f.kind {
	case filterEnable:
		return !f.names[name]
	case filterDisable:
		return f.names[name]
	default:
		return false
	}
}

// Options is the validated configuration of one directive. Built once
// per attachment, immutable afterwards.
type Options struct {
	PrefixEnter string
	PrefixExit  string
	Filter      Filter
	Pause       bool
	Pretty      bool
	Logging     bool

	// FormatEnter and FormatExit are custom interpolation templates;
	// nil means the format is auto-generated.
	FormatEnter *string
	FormatExit  *string
}

type optionToken struct {
	key      string
	value    string
	hasValue bool
}

// buildOptions validates a directive's token list into Options, seeded
// from defaults. All violations are collected; a single directive
// reports every problem it has.
func buildOptions(tokens []optionToken, defaults Defaults, pos token.Position) (Options, []Diagnostic) {
	opts := Options{
		PrefixEnter: defaults.PrefixEnter,
		PrefixExit:  defaults.PrefixExit,
		Logging:     defaults.Logging,
	}

	var diags []Diagnostic
	seen := make(map[string]bool)
	var enableNames, disableNames []string
	var hasEnable, hasDisable bool

	for _, tok := range tokens {
		if seen[tok.key] {
			diags = append(diags, diagf(pos, "duplicate option %q", tok.key))
			continue
		}
		seen[tok.key] = true

		switch tok.key {
		case "prefix_enter", "prefix_exit", "format_enter", "format_exit":
			if !tok.hasValue {
				diags = append(diags, diagf(pos, "option %q requires a value", tok.key))
				continue
			}
			switch tok.key {
			case "prefix_enter":
				opts.PrefixEnter = tok.value
			case "prefix_exit":
				opts.PrefixExit = tok.value
			case "format_enter":
				v := tok.value
				opts.FormatEnter = &v
			case "format_exit":
				v := tok.value
				opts.FormatExit = &v
			}
		case "enable", "disable":
			if !tok.hasValue {
				diags = append(diags, diagf(pos, "option %q requires a value", tok.key))
				continue
			}
			names := splitNameList(tok.value)
			if tok.key == "enable" {
				hasEnable, enableNames = true, names
			} else {
				hasDisable, disableNames = true, names
			}
		case "pause", "pretty", "logging":
			if tok.hasValue {
				diags = append(diags, diagf(pos, "option %q takes no value", tok.key))
				continue
			}
			switch tok.key {
			case "pause":
				opts.Pause = true
			case "pretty":
				opts.Pretty = true
			case "logging":
				opts.Logging = true
			}
		default:
			diags = append(diags, diagf(pos, "unknown option %q", tok.key))
		}
	}

	switch {
	case hasEnable && hasDisable:
		diags = append(diags, diagf(pos, "enable and disable cannot be used together"))
	case hasEnable:
		opts.Filter = enableFilter(enableNames)
	case hasDisable:
		opts.Filter = disableFilter(disableNames)
	}

	if opts.Pretty && (opts.FormatEnter != nil || opts.FormatExit != nil) {
		diags = append(diags, diagf(pos, "format_enter and format_exit cannot be combined with pretty"))
	}

	return opts, diags
}

func splitNameList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
