package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

type styles struct {
	plain    lipgloss.Style
	header   lipgloss.Style
	path     lipgloss.Style
	branch   lipgloss.Style
	good     lipgloss.Style
	bad      lipgloss.Style
	warn     lipgloss.Style
	ahead    lipgloss.Style
	behind   lipgloss.Style
	diverged lipgloss.Style
	dim      lipgloss.Style
}

// newStyles builds the palette, or all-plain styles when color is off so
// output stays grep-friendly in pipes.
func newStyles(color bool) styles {
	plain := lipgloss.NewStyle()
	s := styles{
		plain: plain, header: plain, path: plain, branch: plain,
		good: plain, bad: plain, warn: plain,
		ahead: plain, behind: plain, diverged: plain, dim: plain,
	}
	if !color {
		return s
	}

	s.header = plain.Bold(true)
	s.path = plain.Foreground(lipgloss.Color("39"))
	s.branch = plain.Foreground(lipgloss.Color("51"))
	s.good = plain.Foreground(lipgloss.Color("46"))
	s.bad = plain.Foreground(lipgloss.Color("196"))
	s.warn = plain.Foreground(lipgloss.Color("220"))
	s.ahead = plain.Foreground(lipgloss.Color("51"))
	s.behind = plain.Foreground(lipgloss.Color("135"))
	s.diverged = plain.Foreground(lipgloss.Color("208")).Bold(true)
	s.dim = plain.Foreground(lipgloss.Color("240"))
	return s
}

func (s styles) status(st model.Status) lipgloss.Style {
	switch st {
	case model.StatusClean:
		return s.good
	case model.StatusDirty:
		return s.bad
	case model.StatusUntracked:
		return s.warn
	case model.StatusAhead:
		return s.ahead
	case model.StatusBehind:
		return s.behind
	case model.StatusDiverged:
		return s.diverged
	case model.StatusNoRemote:
		return s.dim
	case model.StatusError:
		return s.bad
	}
	return s.plain
}

func (s styles) ci(st model.CIStatus) lipgloss.Style {
	switch st {
	case model.CIPassing:
		return s.good
	case model.CIFailing:
		return s.bad
	case model.CIPending:
		return s.warn
	}
	return s.dim
}
