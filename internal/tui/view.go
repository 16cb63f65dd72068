package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/michaelscutari/dircache/internal/cache"
	"github.com/michaelscutari/dircache/internal/entry"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.info == nil {
		if m.err != nil {
			return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
		}
		return "Loading..."
	}

	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	writeLine(titleStyle.Render("dircache - Directory Browser"))

	scanInfo := fmt.Sprintf("Scanned: %s | Size: %s | Files: %s | Dirs: %s",
		humanize.Time(m.info.ScannedAt),
		FormatSize(m.info.Totals.TotalSize),
		FormatCount(m.info.Totals.TotalFiles),
		FormatCount(m.info.Totals.TotalDirs),
	)
	if n := len(m.info.Errors); n > 0 {
		scanInfo += fmt.Sprintf(" | Skipped: %d", n)
	}
	writeLine(statsStyle.Render(scanInfo))

	pathLabel := fmt.Sprintf("Path: %s", truncateMiddle(m.currentPath, max(10, m.width-6)))
	writeLine(breadcrumbStyle.Render(pathLabel))

	status := fmt.Sprintf("Items: %s | Sort: %s", FormatCount(int64(len(m.entries))), sortLabel(m.order, m.reverse))
	if m.filter != "" {
		status += fmt.Sprintf(" | Filter: %q", m.filter)
	}
	if sel, ok := m.selected(); ok {
		status += fmt.Sprintf(" | Sel: %s (%s)", sel.Name(), FormatSize(entrySize(sel)))
	}
	writeLine(statusStyle.Render(status))

	if m.err != nil {
		writeLine(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.filterActive {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s_", m.filter)))
	} else if m.filter != "" {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s", m.filter)))
	}

	arrow := "^"
	if m.reverse {
		arrow = "v"
	}
	timeLabel := "MODIFIED"
	if m.order == cache.OrderCreated {
		timeLabel = "CREATED"
	}
	timeLabel = headerLabel(timeLabel, m.order != cache.OrderName, arrow)
	nameLabel := headerLabel("NAME", m.order == cache.OrderName, arrow)

	footerLines := 2
	visibleRows := m.height - headerLines - footerLines
	if visibleRows < 5 {
		visibleRows = 5
	}

	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(len(m.entries), startIdx+visibleRows)

	widths := calcColumnWidths(m.entries, startIdx, endIdx, m.order, timeLabel)
	nameWidth := calcNameWidth(m.width, widths)
	gap := strings.Repeat(" ", colGap)
	nameGap := strings.Repeat(" ", nameGapWidth)

	nameLabel = truncateRight(nameLabel, nameWidth)
	namePad := max(0, nameWidth-len(nameLabel))
	header := fmt.Sprintf("%*s%s%*s%s%*s%s%*s%s%s%s%s%*s",
		widths.size, "SIZE",
		gap,
		widths.files, "FILES",
		gap,
		widths.dirs, "DIRS",
		gap,
		widths.when, timeLabel,
		nameGap,
		nameLabel,
		strings.Repeat(" ", namePad),
		gap,
		barColWidth, "SIZE%",
	)
	writeLine(headerStyle.Render(header))

	for i := startIdx; i < endIdx; i++ {
		b.WriteString(m.formatEntry(m.entries[i], i == m.cursor, widths, nameWidth))
		b.WriteString("\n")
	}

	displayedRows := min(len(m.entries)-startIdx, visibleRows)
	for i := displayedRows; i < visibleRows; i++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := m.helpLine()
	if len(m.entries) > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, len(m.entries))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

type columnWidths struct {
	size  int
	files int
	dirs  int
	when  int
}

const (
	colGap        = 2
	nameGapWidth  = 2
	minNameWidth  = 10
	barBlockWidth = 10                                        // number of block characters
	barPctWidth   = 4                                         // " 78%" or "100%"
	barGapWidth   = 1                                         // space between blocks and pct
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth // 15
)

// entrySize is the subtree size of a directory or the size of a file.
func entrySize(e entry.Entry) int64 {
	if e.Kind == entry.KindDir {
		return e.Totals.TotalSize
	}
	return e.Size
}

func entryTime(e entry.Entry, order cache.Order) time.Time {
	if order == cache.OrderCreated {
		return e.ChangeTime
	}
	return e.ModTime
}

func countCell(e entry.Entry, n int64) string {
	if e.Kind != entry.KindDir {
		return "-"
	}
	return FormatCount(n)
}

func calcColumnWidths(entries []entry.Entry, startIdx, endIdx int, order cache.Order, timeLabel string) columnWidths {
	w := columnWidths{
		size:  len("SIZE"),
		files: len("FILES"),
		dirs:  len("DIRS"),
		when:  len(timeLabel),
	}

	for i := startIdx; i < endIdx; i++ {
		e := entries[i]
		w.size = max(w.size, len(FormatSize(entrySize(e))))
		w.files = max(w.files, len(countCell(e, e.ChildFiles)))
		w.dirs = max(w.dirs, len(countCell(e, e.ChildDirs)))
		w.when = max(w.when, len(FormatTime(entryTime(e, order))))
	}

	return w
}

func calcNameWidth(totalWidth int, w columnWidths) int {
	// columns + gaps between 4 data cols (3) + gap before name + gap before bar + bar
	used := w.size + w.files + w.dirs + w.when + (colGap * 4) + nameGapWidth + barColWidth
	return max(minNameWidth, totalWidth-used)
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func (m *Model) formatEntry(e entry.Entry, selected bool, widths columnWidths, nameWidth int) string {
	var rawName string
	switch {
	case e.Kind == entry.KindDir:
		rawName = e.Name() + "/"
	case e.IsSymlink():
		rawName = e.Name() + "@"
	default:
		rawName = e.Name()
	}

	rawName = truncateRight(rawName, nameWidth)
	var styledName string
	switch {
	case e.Kind == entry.KindDir:
		styledName = dirStyle.Render(rawName)
	case e.IsSymlink():
		styledName = symlinkStyle.Render(rawName)
	default:
		styledName = fileStyle.Render(rawName)
	}

	// Pad name to fixed width so bar column aligns
	paddedName := styledName + strings.Repeat(" ", max(0, nameWidth-len(rawName)))

	var total int64
	if m.info != nil {
		total = m.info.Totals.TotalSize
	}
	bar := formatBar(entrySize(e), total)

	gap := strings.Repeat(" ", colGap)
	nameGap := strings.Repeat(" ", nameGapWidth)
	line := fmt.Sprintf("%*s%s%*s%s%*s%s%*s%s%s%s%s",
		widths.size, FormatSize(entrySize(e)),
		gap,
		widths.files, countCell(e, e.ChildFiles),
		gap,
		widths.dirs, countCell(e, e.ChildDirs),
		gap,
		widths.when, FormatTime(entryTime(e, m.order)),
		nameGap,
		paddedName,
		gap,
		bar,
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func formatBar(entryVal, parentTotal int64) string {
	if parentTotal <= 0 || entryVal <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf("  %3d%%", 0)
	}

	pct := math.Min(float64(entryVal)/float64(parentTotal)*100, 100)
	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	filled = min(max(filled, 1), barBlockWidth)

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf("  %3d%%", int(math.Round(pct)))
}

func sortLabel(order cache.Order, reverse bool) string {
	if reverse {
		return order.String() + " (reversed)"
	}
	return order.String()
}

func headerLabel(label string, active bool, dir string) string {
	if active {
		return label + dir
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
