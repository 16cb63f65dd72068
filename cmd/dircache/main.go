package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelscutari/dircache/internal/cache"
	"github.com/michaelscutari/dircache/internal/logging"
	"github.com/michaelscutari/dircache/internal/scan"
)

var version = "0.1.0"

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dircache",
	Short: "Cached directory listings with natural and time ordering",
	Long: `dircache scans directories into an in-memory cache, rescanning a
directory only when its modification time moves past the last scan. It
lists entries in natural, modified or created order, navigates between
sibling directories, and exports cached snapshots to SQLite.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	logLevel     string
	logFormat    string
	logOutput    string
	ignoreNames  []string
	excludeRegex []string
	maxDepth     int
	noRecurse    bool
	abortOnError bool
	cacheNested  bool
)

func init() {
	rootCmd.Version = version
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "console", "Log format: console, json")
	pf.StringVar(&logOutput, "log-output", "stderr", "Log destination: stderr, stdout or a file path")
	pf.StringSliceVar(&ignoreNames, "ignore", nil, "Extra base names to skip, case-insensitive (can be repeated)")
	pf.StringSliceVarP(&excludeRegex, "exclude", "e", nil, "Regex patterns on full paths to exclude (can be repeated)")
	pf.IntVar(&maxDepth, "max-depth", 0, "Maximum recursion depth (0 = unlimited)")
	pf.BoolVar(&noRecurse, "no-recurse", false, "Scan only the requested directory; child counts come from one listing")
	pf.BoolVar(&abortOnError, "abort-on-error", false, "Fail the scan when a nested directory cannot be read")
	pf.BoolVar(&cacheNested, "cache-nested", true, "Also cache every nested directory of a recursive scan")

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(siblingCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(tuiCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg := logging.Config{Level: logLevel, Format: logFormat, OutputPath: logOutput}
	if err := logging.Init(cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// newCache builds a cache from the persistent scan flags.
func newCache() (*cache.Cache, error) {
	log := logging.L()
	opts := scan.DefaultOptions().
		WithRecursive(!noRecurse).
		WithMaxDepth(maxDepth).
		WithAbortOnNestedError(abortOnError).
		WithLogger(log.Named("scan"))
	for _, name := range ignoreNames {
		opts.AddIgnoreName(name)
	}
	for _, pattern := range excludeRegex {
		if err := opts.AddExcludePattern(pattern); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	clock := cache.OSClock{}
	opts.WithClock(clock.Now)
	c := cache.New(cache.DefaultOptions().
		WithScanner(scan.NewScanner(opts)).
		WithClock(clock).
		WithCacheNested(cacheNested && !noRecurse).
		WithLogger(log.Named("cache")))
	log.Debug("cache ready",
		zap.Bool("recursive", !noRecurse),
		zap.Int("max_depth", maxDepth),
		zap.Int("ignore_names", len(opts.IgnoreNames)))
	return c, nil
}

// pathArg returns the first argument or the working directory.
func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
