package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Display snapshot metadata for a directory",
	Long:  `Scan a directory and print its snapshot metadata, totals and any skipped subdirectories.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, err := newCache()
	if err != nil {
		return err
	}

	path := pathArg(args)
	start := time.Now()
	if err := c.EnsureFresh(path); err != nil {
		return err
	}
	elapsed := time.Since(start)

	info, err := c.Info(path)
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot Information\n")
	fmt.Printf("====================\n\n")
	fmt.Printf("Path:         %s\n", info.Path)
	fmt.Printf("Scanned At:   %s\n", info.ScannedAt.Format(time.RFC3339))
	fmt.Printf("Scan Time:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Cached Paths: %s\n", humanize.Comma(int64(c.Len())))
	fmt.Printf("\nThis Directory\n")
	fmt.Printf("--------------\n")
	fmt.Printf("Files:        %s\n", humanize.Comma(info.FileCount))
	fmt.Printf("Directories:  %s\n", humanize.Comma(info.DirCount))
	fmt.Printf("\nSubtree\n")
	fmt.Printf("-------\n")
	fmt.Printf("Files:        %s\n", humanize.Comma(info.Totals.TotalFiles))
	fmt.Printf("Directories:  %s\n", humanize.Comma(info.Totals.TotalDirs))
	fmt.Printf("Size:         %s\n", humanize.Bytes(uint64(info.Totals.TotalSize)))
	if len(info.Errors) > 0 {
		fmt.Printf("\nSkipped (%d)\n", len(info.Errors))
		fmt.Printf("-----------\n")
		for _, se := range info.Errors {
			fmt.Printf("%s: %v\n", se.Path, se.Err)
		}
	}

	return nil
}
