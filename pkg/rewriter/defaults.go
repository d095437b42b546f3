package rewriter

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Defaults are the option values in force before a directive's own
// options apply. They can be overridden project-wide with a YAML file.
type Defaults struct {
	PrefixEnter string `yaml:"prefix_enter"`
	PrefixExit  string `yaml:"prefix_exit"`
	Logging     bool   `yaml:"logging"`
}

// BuiltinDefaults returns the stock defaults: "[+]"/"[-]" prefixes,
// plain printing.
func BuiltinDefaults() Defaults {
	return Defaults{PrefixEnter: "[+]", PrefixExit: "[-]"}
}

// LoadDefaults reads a YAML defaults file. Keys absent from the file
// keep their builtin values.
func LoadDefaults(path string) (Defaults, error) {
	defaults := BuiltinDefaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, errors.Wrapf(err, "reading defaults file %s", path)
	}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return BuiltinDefaults(), errors.Wrapf(err, "parsing defaults file %s", path)
	}
	return defaults, nil
}
