package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smith-xyz/gotrace/pkg/rewriter"
)

const defaultConfigFile = "gotrace.yaml"

var (
	writeInPlace bool
	outputDir    string
	configPath   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "gotrace [flags] <file or directory> ...",
	Short: "rewrite Go source to trace function entry and exit",
	Long: `gotrace rewrites functions annotated with //gotrace:trace directives so
they print entering/exiting lines with argument and return values,
indented by per-goroutine call depth.

Without -w or -o the rewritten source is printed to stdout.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVarP(&writeInPlace, "write", "w", false, "overwrite source files in place")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "write rewritten files under this directory")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML defaults file (default gotrace.yaml if present)")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "log each file as it is processed")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if writeInPlace && outputDir != "" {
		return errors.New("-w and -o are mutually exclusive")
	}
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	defaults, err := loadDefaults()
	if err != nil {
		return err
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		diags []rewriter.Diagnostic
	)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, file := range files {
		g.Go(func() error {
			if verbose {
				slog.Debug("processing", "file", file.path)
			}
			fileDiags, err := processOne(file, defaults)
			if err != nil {
				return err
			}
			if len(fileDiags) > 0 {
				mu.Lock()
				diags = append(diags, fileDiags...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(diags) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), rewriter.DiagnosticError(diags))
		return errors.Newf("%d tracing error(s)", len(diags))
	}
	return nil
}

type inputFile struct {
	path string
	rel  string // relative path under the argument root, for -o
}

func loadDefaults() (rewriter.Defaults, error) {
	if configPath != "" {
		return rewriter.LoadDefaults(configPath)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return rewriter.LoadDefaults(defaultConfigFile)
	}
	return rewriter.BuiltinDefaults(), nil
}

func collectFiles(args []string) ([]inputFile, error) {
	var files []inputFile
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", arg)
		}
		if !info.IsDir() {
			files = append(files, inputFile{path: arg, rel: filepath.Base(arg)})
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != arg && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			rel, err := filepath.Rel(arg, path)
			if err != nil {
				return err
			}
			files = append(files, inputFile{path: path, rel: rel})
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", arg)
		}
	}
	return files, nil
}

func processOne(file inputFile, defaults rewriter.Defaults) ([]rewriter.Diagnostic, error) {
	if writeInPlace {
		return rewriter.ProcessFileInPlace(file.path, defaults)
	}

	res, err := rewriter.ProcessFile(file.path, defaults)
	if err != nil || len(res.Diags) > 0 {
		return res.Diags, err
	}

	if outputDir == "" {
		_, err := os.Stdout.Write(res.Output)
		return nil, err
	}

	dest := filepath.Join(outputDir, file.rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory for %s", dest)
	}
	if err := os.WriteFile(dest, res.Output, 0644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", dest)
	}
	return nil, nil
}
