package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/dircache/internal/cache"
	"github.com/michaelscutari/dircache/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [path]",
	Short: "Browse directories interactively",
	Long:  `Open an interactive browser over the cache. Directories are rescanned only when they change.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

var (
	tuiSort    string
	tuiReverse bool
)

func init() {
	tuiCmd.Flags().StringVarP(&tuiSort, "sort", "s", "name", "Initial sort: name, mtime, ctime")
	tuiCmd.Flags().BoolVarP(&tuiReverse, "reverse", "r", false, "Start with the sort order reversed")
}

func runTUI(cmd *cobra.Command, args []string) error {
	order, err := cache.ParseOrder(tuiSort)
	if err != nil {
		return err
	}
	c, err := newCache()
	if err != nil {
		return err
	}

	model := tui.NewModel(c, pathArg(args), order, tuiReverse)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
