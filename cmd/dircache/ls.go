package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dircache/internal/cache"
	"github.com/michaelscutari/dircache/internal/entry"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a directory from the cache",
	Long: `Scan a directory if its cached snapshot is stale and list its entries.
Directories are listed before files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var (
	lsSort    string
	lsReverse bool
	lsDirs    bool
	lsFiles   bool
	lsLimit   int
)

func init() {
	lsCmd.Flags().StringVarP(&lsSort, "sort", "s", "name", "Sort by: name, mtime, ctime")
	lsCmd.Flags().BoolVarP(&lsReverse, "reverse", "r", false, "Reverse the sort order")
	lsCmd.Flags().BoolVar(&lsDirs, "dirs", false, "List directories only")
	lsCmd.Flags().BoolVar(&lsFiles, "files", false, "List files only")
	lsCmd.Flags().IntVarP(&lsLimit, "limit", "n", 0, "Maximum number of rows per kind (0 = all)")
}

func runLs(cmd *cobra.Command, args []string) error {
	order, err := cache.ParseOrder(lsSort)
	if err != nil {
		return err
	}
	c, err := newCache()
	if err != nil {
		return err
	}

	path := pathArg(args)
	if err := c.EnsureFresh(path); err != nil {
		return err
	}
	files, dirs, err := c.SortedBy(path, order, lsReverse)
	if err != nil {
		return err
	}

	var rows []entry.Entry
	if !lsFiles {
		rows = append(rows, limitRows(dirs, lsLimit)...)
	}
	if !lsDirs {
		rows = append(rows, limitRows(files, lsLimit)...)
	}
	return writeEntries(os.Stdout, rows, order)
}

func limitRows(rows []entry.Entry, n int) []entry.Entry {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func writeEntries(out io.Writer, rows []entry.Entry, order cache.Order) error {
	timeHeader := "MODIFIED"
	if order == cache.OrderCreated {
		timeHeader = "CREATED"
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SIZE\tFILES\tDIRS\t%s\tEXT\tNAME\n", timeHeader)
	for i := range rows {
		e := &rows[i]
		t := e.ModTime
		if order == cache.OrderCreated {
			t = e.ChangeTime
		}
		size, files, dirs := humanize.Bytes(uint64(e.Size)), "-", "-"
		name := e.Name()
		if e.Kind == entry.KindDir {
			size = humanize.Bytes(uint64(e.Totals.TotalSize))
			files = humanize.Comma(e.ChildFiles)
			dirs = humanize.Comma(e.ChildDirs)
			name += "/"
		} else if e.IsSymlink() {
			name += "@"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			size, files, dirs, humanize.Time(t), e.DotExtension(), name)
	}
	return w.Flush()
}
