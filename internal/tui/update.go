package tui

import (
	"path/filepath"

	"github.com/michaelscutari/dircache/internal/cache"
	"github.com/michaelscutari/dircache/internal/entry"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dirLoadedMsg:
		if msg.err != nil {
			// Stay where we are; the error shows in the status line.
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.currentPath = msg.path
		m.info = &msg.info
		m.filter = ""
		m.filterActive = false
		m.setEntries(msg.entries, msg.focus)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		switch msg.String() {
		case "enter":
			m.filterActive = false
			return m, nil

		case "esc":
			m.filterActive = false
			m.filter = ""
			m.applyFilter()
			return m, nil

		case "backspace":
			if len(m.filter) > 0 {
				runes := []rune(m.filter)
				m.filter = string(runes[:len(runes)-1])
				m.applyFilter()
			}
			return m, nil

		case "ctrl+c":
			return m, tea.Quit
		}

		if msg.Type == tea.KeyRunes {
			m.filter += msg.String()
			m.applyFilter()
			return m, nil
		}

		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
		return m, nil

	case "enter", "l", "right":
		if sel, ok := m.selected(); ok && sel.Kind == entry.KindDir {
			return m, m.loadDir(sel.FullPath, "")
		}
		return m, nil

	case "backspace", "h", "left":
		parent := filepath.Dir(m.currentPath)
		if parent != m.currentPath {
			return m, m.loadDir(parent, filepath.Base(m.currentPath))
		}
		return m, nil

	case "[":
		return m, m.sibling(-1)

	case "]":
		return m, m.sibling(1)

	case "n":
		return m.resort(cache.OrderName, m.reverse)

	case "m":
		return m.resort(cache.OrderModified, m.reverse)

	case "c":
		return m.resort(cache.OrderCreated, m.reverse)

	case "r":
		return m.resort(m.order, !m.reverse)

	case "ctrl+r":
		m.cache.Forget(m.currentPath)
		return m, m.loadDir(m.currentPath, m.selectedName())

	case "/":
		m.filterActive = true
		return m, nil

	case "home", "g":
		m.cursor = 0
		return m, nil

	case "end", "G":
		if len(m.entries) > 0 {
			m.cursor = len(m.entries) - 1
		}
		return m, nil

	case "pgup":
		m.cursor -= 10
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case "pgdown":
		m.cursor += 10
		if m.cursor >= len(m.entries) {
			m.cursor = len(m.entries) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) resort(order cache.Order, reverse bool) (tea.Model, tea.Cmd) {
	m.order = order
	m.reverse = reverse
	return m, m.loadDir(m.currentPath, m.selectedName())
}

func (m *Model) selected() (entry.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return entry.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Model) selectedName() string {
	if sel, ok := m.selected(); ok {
		return sel.Name()
	}
	return ""
}
