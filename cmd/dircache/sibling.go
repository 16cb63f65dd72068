package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/dircache/internal/cache"
)

var siblingCmd = &cobra.Command{
	Use:   "sibling <parent> <name>",
	Short: "Find the directory a number of positions away from a sibling",
	Long: `Locate name among the subdirectories of parent, sorted as for ls, and
print the directory offset positions away. The result is clamped to the
first and last directory. name is matched trimmed and case-insensitively.`,
	Example: `  dircache sibling ~ Movies --offset 1
  dircache sibling ~ Applications -o -442`,
	Args: cobra.ExactArgs(2),
	RunE: runSibling,
}

var (
	siblingOffset  int
	siblingSort    string
	siblingReverse bool
	siblingIndex   bool
)

func init() {
	siblingCmd.Flags().IntVarP(&siblingOffset, "offset", "o", 0, "Positions to move, negative moves back")
	siblingCmd.Flags().StringVarP(&siblingSort, "sort", "s", "name", "Sort by: name, mtime, ctime")
	siblingCmd.Flags().BoolVarP(&siblingReverse, "reverse", "r", false, "Reverse the sort order")
	siblingCmd.Flags().BoolVar(&siblingIndex, "index", false, "Print the index before the path")
}

func runSibling(cmd *cobra.Command, args []string) error {
	order, err := cache.ParseOrder(siblingSort)
	if err != nil {
		return err
	}
	c, err := newCache()
	if err != nil {
		return err
	}

	parent, name := args[0], args[1]
	if err := c.EnsureFresh(parent); err != nil {
		return err
	}
	idx, ok, err := c.SiblingOffset(parent, name, siblingOffset, order, siblingReverse)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no directory named %q in %s", name, parent)
	}

	_, dirs, err := c.SortedBy(parent, order, siblingReverse)
	if err != nil {
		return err
	}
	if siblingIndex {
		fmt.Printf("%d\t%s\n", idx, dirs[idx].FullPath)
		return nil
	}
	fmt.Println(dirs[idx].FullPath)
	return nil
}
