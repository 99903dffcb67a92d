package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jward/tranp"
	"github.com/jward/tranp/scripts"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	flagConfig     string
	flagDB         string
	flagFormat     string
	flagSrc        []string
	flagCore       []string
	flagScriptsDir string
	flagWorkers    int
	flagLogFile    string
	flagVerbose    bool
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// logger is configured by the root command before any subcommand runs.
var logger = slog.New(slog.DiscardHandler)

// stdout is swapped by tests.
var stdout io.Writer = os.Stdout

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tranp",
	Short:         "Semantic analysis of Python sources",
	Long:          "Tranp parses Python modules with tree-sitter, expands them with their imports and builds a symbol table of resolved types.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(flagConfig); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		if err := validateFormat(outputFormat()); err != nil {
			return err
		}
		logger = configureLogger(flagLogFile, flagVerbose)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "config file (default: ./tranp.yaml)")

	flags.StringVar(&flagFormat, "format", defaultFormat, "output format: json|yaml|text")
	bindFlagToConfig(flags.Lookup("format"), formatConfigKey)

	flags.StringVar(&flagDB, "db", "", "export database path")
	bindFlagToConfig(flags.Lookup("db"), dbConfigKey)

	flags.StringSliceVar(&flagSrc, "src", []string{"."}, "module search roots")
	bindFlagToConfig(flags.Lookup("src"), srcConfigKey)

	flags.StringSliceVar(&flagCore, "core", nil, "core module ids visible everywhere (default: typing, builtins)")
	bindFlagToConfig(flags.Lookup("core"), coreConfigKey)

	flags.StringVar(&flagScriptsDir, "scripts-dir", "", "load discriminator scripts from disk instead of embedded")
	bindFlagToConfig(flags.Lookup("scripts-dir"), scriptsConfigKey)

	flags.IntVar(&flagWorkers, "workers", 0, "parse workers for check (default: one per CPU)")
	bindFlagToConfig(flags.Lookup("workers"), workersConfigKey)

	flags.StringVar(&flagLogFile, "log-file", "", "log file path (default: .tranp.log)")
	bindFlagToConfig(flags.Lookup("log-file"), logFilenameKey)

	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log at debug level")
	bindFlagToConfig(flags.Lookup("verbose"), logVerboseKey)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(symbolCmd)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func outputFormat() string {
	return viper.GetString(formatConfigKey)
}

// newAnalyzer builds an Analyzer from flags and config.
func newAnalyzer() (*tranp.Analyzer, error) {
	roots := make([]string, 0)
	for _, src := range viper.GetStringSlice(srcConfigKey) {
		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, fmt.Errorf("resolving source root %q: %w", src, err)
		}
		roots = append(roots, abs)
	}

	opts := []tranp.Option{
		tranp.WithSourceRoots(roots...),
		tranp.WithWorkers(viper.GetInt(workersConfigKey)),
		tranp.WithLogger(logger),
	}
	if core := viper.GetStringSlice(coreConfigKey); len(core) > 0 {
		opts = append(opts, tranp.WithCore(core...))
	}
	if dir := viper.GetString(scriptsConfigKey); dir != "" {
		opts = append(opts, tranp.WithScriptsDir(dir))
	} else {
		opts = append(opts, tranp.WithScriptsFS(scripts.Discriminators()))
	}

	a, err := tranp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}
	return a, nil
}

// resolveTargetDir returns the absolute path of the directory to scan.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the export path from --db, relative paths being
// anchored at the repository root. Empty means no export.
func resolveDBPath(repoRoot string) string {
	db := viper.GetString(dbConfigKey)
	if db == "" || filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(repoRoot, db)
}

// outputResult writes result in the selected format.
func outputResult(result CLIResult) error {
	return writeResult(stdout, outputFormat(), result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. Text mode writes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	logger.Error("command failed", "command", command, "err", err)
	if outputFormat() == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	_ = writeResult(stdout, outputFormat(), CLIResult{Command: command, Error: err.Error()})
	return err
}
