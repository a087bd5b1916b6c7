package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

var (
	// Status colors
	colorClean     = lipgloss.Color("46")  // green
	colorDirty     = lipgloss.Color("196") // red
	colorUntracked = lipgloss.Color("220") // yellow
	colorAhead     = lipgloss.Color("51")  // cyan
	colorBehind    = lipgloss.Color("135") // purple
	colorDiverged  = lipgloss.Color("208") // orange-red
	colorNoRemote  = lipgloss.Color("240") // gray
	colorError     = lipgloss.Color("196") // red

	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingLeft(1).
			PaddingRight(1)

	branchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func statusIcon(status model.Status) string {
	switch status {
	case model.StatusClean:
		return "✓"
	case model.StatusDirty:
		return "✗"
	case model.StatusUntracked:
		return "?"
	case model.StatusAhead:
		return "↑"
	case model.StatusBehind:
		return "↓"
	case model.StatusDiverged:
		return "⇅"
	case model.StatusNoRemote:
		return "∅"
	case model.StatusError:
		return "!"
	default:
		return " "
	}
}

func statusColor(status model.Status) lipgloss.Color {
	switch status {
	case model.StatusClean:
		return colorClean
	case model.StatusDirty:
		return colorDirty
	case model.StatusUntracked:
		return colorUntracked
	case model.StatusAhead:
		return colorAhead
	case model.StatusBehind:
		return colorBehind
	case model.StatusDiverged:
		return colorDiverged
	case model.StatusNoRemote:
		return colorNoRemote
	case model.StatusError:
		return colorError
	default:
		return lipgloss.Color("252")
	}
}
