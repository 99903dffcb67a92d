package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	goruntime "runtime"
	"time"

	"github.com/jward/tranp"
	"github.com/jward/tranp/internal/astindex"
	"github.com/jward/tranp/internal/module"
	"github.com/jward/tranp/internal/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <module> [module...]",
	Short: "Expand modules and print their symbol tables",
	Long:  "Loads each root module from the source roots, expands it with everything it imports and prints the resulting symbol table. With --db a single root is exported to SQLite.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return outputError("analyze", fmt.Errorf("getting cwd: %w", err))
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))
	if dbPath != "" && len(args) > 1 {
		return outputError("analyze", errors.New("--db accepts a single root module"))
	}

	a, err := newAnalyzer()
	if err != nil {
		return outputError("analyze", err)
	}

	sessions, err := analyzeAll(ctx, a, args)
	if err != nil {
		return outputError("analyze", err)
	}

	results := make([]CLIAnalysis, 0, len(sessions))
	total := 0
	for _, s := range sessions {
		res := CLIAnalysis{Root: s.Root(), Order: s.Order()}
		for name, r := range s.Table().All() {
			res.Symbols = append(res.Symbols, toCLISymbol(name, r))
		}
		total += len(res.Symbols)
		results = append(results, res)
	}

	if dbPath != "" {
		if err := sessions[0].Export(dbPath); err != nil {
			return outputError("analyze", err)
		}
		fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	}

	logger.Info("analyze complete", "roots", len(args), "symbols", total, "elapsed", time.Since(start))
	return outputResult(CLIResult{Command: "analyze", Results: results, TotalCount: &total})
}

// analyzeAll expands each root concurrently. Results keep argument order.
func analyzeAll(ctx context.Context, a *tranp.Analyzer, roots []string) ([]*tranp.Session, error) {
	sessions := make([]*tranp.Session, len(roots))

	limit := viper.GetInt(workersConfigKey)
	if limit <= 0 {
		limit = goruntime.NumCPU()
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, root := range roots {
		group.Go(func() error {
			s, err := a.Analyze(gctx, root)
			if err != nil {
				return err
			}
			sessions[i] = s
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return sessions, nil
}

var flagDepth int

var pathsCmd = &cobra.Command{
	Use:   "paths <file.py>",
	Short: "Print the full paths of a source file's parse tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaths,
}

func init() {
	pathsCmd.Flags().IntVar(&flagDepth, "depth", -1, "maximum depth below the root (negative: unlimited)")
}

func runPaths(cmd *cobra.Command, args []string) error {
	file := args[0]
	if _, ok := parser.LanguageForFile(file); !ok {
		return outputError("paths", fmt.Errorf("unsupported file type: %s", file))
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return outputError("paths", fmt.Errorf("reading %s: %w", file, err))
	}

	paths, err := indexPaths(cmd.Context(), src, flagDepth)
	if err != nil {
		return outputError("paths", err)
	}
	total := len(paths)
	return outputResult(CLIResult{Command: "paths", Results: paths, TotalCount: &total})
}

func indexPaths(ctx context.Context, src []byte, depth int) ([]CLIPath, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	root, err := parser.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	ix, err := astindex.FullPathfy(root, astindex.WithDepth(depth))
	if err != nil {
		return nil, err
	}

	out := make([]CLIPath, 0, ix.Len())
	for _, p := range ix.Paths() {
		e, err := ix.By(p)
		if err != nil {
			return nil, err
		}
		out = append(out, CLIPath{Path: p.String(), Tag: e.Tag(), Value: e.Value()})
	}
	return out, nil
}

var modulesCmd = &cobra.Command{
	Use:   "modules [dir]",
	Short: "List the module ids under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveTargetDir(args)
		if err != nil {
			return outputError("modules", err)
		}
		ids, err := module.Discover(dir)
		if err != nil {
			return outputError("modules", err)
		}
		mods := make([]CLIModule, 0, len(ids))
		for _, id := range ids {
			mods = append(mods, CLIModule{ID: id})
		}
		total := len(mods)
		return outputResult(CLIResult{Command: "modules", Results: mods, TotalCount: &total})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Parse every module under a directory and report syntax errors",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("check", err)
	}
	a, err := newAnalyzer()
	if err != nil {
		return outputError("check", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	diags, err := a.Check(ctx, dir)
	if err != nil {
		return outputError("check", err)
	}
	out := make([]CLIDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, CLIDiagnostic{Module: d.Module, Path: d.Path, Error: d.Err.Error()})
	}
	total := len(out)
	if err := outputResult(CLIResult{Command: "check", Results: out, TotalCount: &total}); err != nil {
		return err
	}
	if total > 0 {
		errorHandled = true
		return fmt.Errorf("%d module(s) failed to parse", total)
	}
	return nil
}

var symbolCmd = &cobra.Command{
	Use:   "symbol <name>",
	Short: "Look up a symbol in an exported database",
	Long:  "Reads a symbol back from the database written by 'tranp analyze --db'. With --derived, lists the symbols whose origin is name instead.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbol,
}

var flagDerived bool

func init() {
	symbolCmd.Flags().BoolVar(&flagDerived, "derived", false, "list symbols derived from name")
}

func runSymbol(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return outputError("symbol", fmt.Errorf("getting cwd: %w", err))
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))
	if dbPath == "" {
		return outputError("symbol", errors.New("--db is required"))
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return outputError("symbol", fmt.Errorf("database not found: %s (run 'tranp analyze --db' first)", dbPath))
	}

	qb, err := tranp.Open(dbPath)
	if err != nil {
		return outputError("symbol", err)
	}
	defer qb.Close()

	if flagDerived {
		infos, err := qb.Derived(args[0])
		if err != nil {
			return outputError("symbol", err)
		}
		syms := make([]CLISymbol, 0, len(infos))
		for _, info := range infos {
			syms = append(syms, storedToCLISymbol(info))
		}
		total := len(syms)
		return outputResult(CLIResult{Command: "symbol", Results: syms, TotalCount: &total})
	}

	info, err := qb.Symbol(args[0])
	if err != nil {
		return outputError("symbol", err)
	}
	if info == nil {
		return outputError("symbol", fmt.Errorf("%s: %w", args[0], tranp.ErrNotFound))
	}
	return outputResult(CLIResult{Command: "symbol", Results: storedToCLISymbol(info)})
}
