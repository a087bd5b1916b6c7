package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// uiRefresh is how often the dashboard re-reads the cached snapshot. The
// scan cadence itself lives in the watcher.
const uiRefresh = time.Second

type Model struct {
	provider     Provider
	snapshot     Snapshot
	width        int
	height       int
	scrollOffset int
}

type tickMsg time.Time

func NewModel(provider Provider) Model {
	return Model{
		provider: provider,
		snapshot: provider.GetSnapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.provider.Refresh()
			return m, nil
		case "up", "k":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
		case "down", "j":
			if m.scrollOffset < m.maxScroll() {
				m.scrollOffset++
			}
		case "pageup":
			m.scrollOffset -= m.visibleRows()
			if m.scrollOffset < 0 {
				m.scrollOffset = 0
			}
		case "pagedown":
			m.scrollOffset += m.visibleRows()
			if m.scrollOffset > m.maxScroll() {
				m.scrollOffset = m.maxScroll()
			}
		case "home", "g":
			m.scrollOffset = 0
		case "end", "G":
			m.scrollOffset = m.maxScroll()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.scrollOffset > m.maxScroll() {
			m.scrollOffset = m.maxScroll()
		}
		return m, nil

	case tickMsg:
		m.snapshot = m.provider.GetSnapshot()
		if m.scrollOffset > m.maxScroll() {
			m.scrollOffset = m.maxScroll()
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) View() string {
	return renderView(m.snapshot, m.width, m.visibleRows(), m.scrollOffset)
}

// visibleRows is how many repo lines fit between the header and footer.
func (m Model) visibleRows() int {
	rows := m.height - chromeLines
	if rows < 1 {
		rows = defaultVisibleRows
	}
	return rows
}

func (m Model) maxScroll() int {
	n := len(m.snapshot.Repos) - m.visibleRows()
	if n < 0 {
		return 0
	}
	return n
}

func tickCmd() tea.Cmd {
	return tea.Tick(uiRefresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
