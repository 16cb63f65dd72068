package main

import (
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dircache/internal/db"
	"github.com/michaelscutari/dircache/internal/entry"

	_ "modernc.org/sqlite"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query an export database non-interactively",
	Long:  `Read a directory listing back from an export database for scripting.`,
	RunE:  runQuery,
}

var (
	queryDB    string
	queryPath  string
	querySort  string
	queryLimit int
	queryList  bool
)

func init() {
	queryCmd.Flags().StringVarP(&queryDB, "db", "d", "./data/latest.db", "Path to database file")
	queryCmd.Flags().StringVarP(&queryPath, "path", "p", "", "Directory path to query (default: first exported path)")
	queryCmd.Flags().StringVarP(&querySort, "sort", "s", "name", "Sort by: name, mtime, ctime, size")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 20, "Maximum number of results (0 = all)")
	queryCmd.Flags().BoolVarP(&queryList, "list", "l", false, "List the exported snapshots instead")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(queryDB); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	database, err := sql.Open("sqlite", queryDB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.ApplyReadPragmas(database); err != nil {
		return fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if queryList {
		return listSnapshots(database)
	}

	if queryPath == "" {
		snaps, err := db.ListSnapshots(database)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			return fmt.Errorf("database %s holds no snapshots", queryDB)
		}
		queryPath = snaps[0].Path
	}

	entries, err := db.LoadEntries(database, queryPath, querySort, queryLimit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SIZE\tFILES\tDIRS\tMODIFIED\tNAME\n")
	for _, e := range entries {
		files, dirs, name := "-", "-", e.Name
		if e.Kind == entry.KindDir {
			files = humanize.Comma(e.ChildFiles)
			dirs = humanize.Comma(e.ChildDirs)
			name += "/"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Bytes(uint64(e.TotalSize)),
			files,
			dirs,
			e.ModTime.Format("2006-01-02 15:04"),
			name,
		)
	}
	return w.Flush()
}

func listSnapshots(database *sql.DB) error {
	snaps, err := db.ListSnapshots(database)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCANNED\tFILES\tDIRS\tSIZE\tSKIPPED\tPATH\n")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ScannedAt.Format("2006-01-02 15:04:05"),
			humanize.Comma(s.FileCount),
			humanize.Comma(s.DirCount),
			humanize.Bytes(uint64(s.Totals.TotalSize)),
			s.ErrorCount,
			s.Path,
		)
	}
	return w.Flush()
}
