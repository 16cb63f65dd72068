package tui

import (
	"path/filepath"
	"strings"

	"github.com/michaelscutari/dircache/internal/cache"
	"github.com/michaelscutari/dircache/internal/entry"

	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the TUI state.
type Model struct {
	cache        *cache.Cache
	currentPath  string
	allEntries   []entry.Entry
	entries      []entry.Entry
	info         *cache.Info
	cursor       int
	order        cache.Order
	reverse      bool
	width        int
	height       int
	filter       string
	filterActive bool
	err          error
}

// NewModel creates a browser over c starting at path.
func NewModel(c *cache.Cache, path string, order cache.Order, reverse bool) *Model {
	return &Model{
		cache:       c,
		currentPath: path,
		order:       order,
		reverse:     reverse,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadDir(m.currentPath, "")
}

type dirLoadedMsg struct {
	path    string
	entries []entry.Entry
	info    cache.Info
	// focus names the entry to put the cursor on, if present.
	focus string
	err   error
}

// loadDir refreshes path in the cache and lists it, directories first.
func (m *Model) loadDir(path, focus string) tea.Cmd {
	c, order, reverse := m.cache, m.order, m.reverse
	return func() tea.Msg {
		return listDir(c, path, focus, order, reverse)
	}
}

func listDir(c *cache.Cache, path, focus string, order cache.Order, reverse bool) tea.Msg {
	if err := c.EnsureFresh(path); err != nil {
		return dirLoadedMsg{path: path, err: err}
	}
	files, dirs, err := c.SortedBy(path, order, reverse)
	if err != nil {
		return dirLoadedMsg{path: path, err: err}
	}
	info, err := c.Info(path)
	if err != nil {
		return dirLoadedMsg{path: path, err: err}
	}
	return dirLoadedMsg{
		path:    info.Path,
		entries: append(dirs, files...),
		info:    info,
		focus:   focus,
	}
}

// sibling moves to the directory offset positions away from the current
// one in its parent's listing, clamped to the ends.
func (m *Model) sibling(offset int) tea.Cmd {
	c, order, reverse := m.cache, m.order, m.reverse
	current := m.currentPath
	parent := filepath.Dir(current)
	if parent == current {
		return nil
	}
	return func() tea.Msg {
		if err := c.EnsureFresh(parent); err != nil {
			return dirLoadedMsg{path: current, err: err}
		}
		idx, ok, err := c.SiblingOffset(parent, filepath.Base(current), offset, order, reverse)
		if err != nil {
			return dirLoadedMsg{path: current, err: err}
		}
		if !ok {
			return nil
		}
		_, dirs, err := c.SortedBy(parent, order, reverse)
		if err != nil {
			return dirLoadedMsg{path: current, err: err}
		}
		return listDir(c, dirs[idx].FullPath, "", order, reverse)
	}
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	return "↑/↓ move | Enter: open | Backspace: up | [/]: sibling | n/m/c: sort | r: reverse | /: filter | q: quit"
}

func (m *Model) setEntries(entries []entry.Entry, focus string) {
	m.allEntries = entries
	m.applyFilter()
	if focus == "" {
		return
	}
	for i := range m.entries {
		if m.entries[i].Name() == focus {
			m.cursor = i
			return
		}
	}
}

func (m *Model) applyFilter() {
	if m.filter == "" {
		m.entries = m.allEntries
	} else {
		filtered := make([]entry.Entry, 0, len(m.allEntries))
		needle := strings.ToLower(m.filter)
		for _, e := range m.allEntries {
			if strings.Contains(strings.ToLower(e.Name()), needle) {
				filtered = append(filtered, e)
			}
		}
		m.entries = filtered
	}
	m.cursor = 0
}
