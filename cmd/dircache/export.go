package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dircache/internal/logging"
	"github.com/michaelscutari/dircache/internal/snapshot"
)

var exportCmd = &cobra.Command{
	Use:   "export [path...]",
	Short: "Scan directories and export the cached snapshots to SQLite",
	Long: `Scan each path (and, with --cache-nested, every directory below it) and
write the cached snapshots into a new SQLite database in the output
directory. latest.db points at the newest export.`,
	RunE: runExport,
}

var (
	exportOut       string
	exportRetention int
	exportAll       bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "./data", "Output directory for databases")
	exportCmd.Flags().IntVar(&exportRetention, "retention", 5, "Number of exports to retain (0 = unlimited)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every cached directory, not just the given paths")
}

func runExport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	c, err := newCache()
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(exportOut)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, path := range args {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := c.EnsureFresh(path); err != nil {
			return err
		}
	}

	paths := args
	if exportAll {
		paths = c.Paths()
	}

	mgr := snapshot.NewManager(outDir, exportRetention, logging.L().Named("export"))
	dbPath, stats, err := mgr.Export(ctx, c, paths)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Export canceled.")
			return nil
		}
		return err
	}

	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("  Snapshots: %s\n", humanize.Comma(int64(stats.Snapshots)))
	fmt.Printf("  Entries:   %s\n", humanize.Comma(stats.Entries))
	if stats.Errors > 0 {
		fmt.Printf("  Skipped:   %s\n", humanize.Comma(stats.Errors))
	}
	return nil
}
