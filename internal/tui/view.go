package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

const (
	// Header, separator, scroll markers, footer and its top margin.
	chromeLines        = 7
	defaultVisibleRows = 30

	maxPathWidth = 60
	minPathWidth = 20
)

func renderView(snap Snapshot, width, visible, offset int) string {
	var b strings.Builder

	var dirty, behind, warned int
	for _, r := range snap.Repos {
		switch r.Status {
		case model.StatusDirty:
			dirty++
		case model.StatusBehind, model.StatusDiverged:
			behind++
		}
		if len(r.Warnings) > 0 {
			warned++
		}
	}

	header := fmt.Sprintf("gitfleet │ %d repos │ %d dirty │ %d behind │ %d warnings",
		len(snap.Repos), dirty, behind, warned)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	b.WriteString(renderRepos(snap.Repos, width, visible, offset))

	status := "scanning..."
	if !snap.Timestamp.IsZero() {
		status = "Last scan: " + snap.Timestamp.Format("15:04:05")
		if snap.Scanning {
			status += " │ scanning..."
		}
	}
	footer := fmt.Sprintf("%s │ q:quit r:rescan", status)
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}

func renderRepos(repos []model.Snapshot, width, visible, offset int) string {
	if len(repos) == 0 {
		return emptyStyle.Render("  (no repositories found)") + "\n"
	}

	if offset > len(repos)-1 {
		offset = len(repos) - 1
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + visible
	if end > len(repos) {
		end = len(repos)
	}

	pathWidth := pathColumnWidth(repos, width)

	var b strings.Builder
	if offset > 0 {
		b.WriteString(emptyStyle.Render(fmt.Sprintf("  ↑ %d more", offset)))
		b.WriteString("\n")
	}
	for _, repo := range repos[offset:end] {
		b.WriteString(renderRepoLine(repo, pathWidth))
		b.WriteString("\n")
	}
	if end < len(repos) {
		b.WriteString(emptyStyle.Render(fmt.Sprintf("  ↓ %d more", len(repos)-end)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderRepoLine(repo model.Snapshot, pathWidth int) string {
	path := repo.Path
	if runewidth.StringWidth(path) > pathWidth {
		path = runewidth.Truncate(path, pathWidth, "…")
	}
	pad := pathWidth - runewidth.StringWidth(path)
	if pad > 0 {
		path += strings.Repeat(" ", pad)
	}

	statusLine := fmt.Sprintf("  %s %s  %-10s", statusIcon(repo.Status), path, repo.Status)
	line := lipgloss.NewStyle().Foreground(statusColor(repo.Status)).Render(statusLine)
	return line + " " + branchStyle.Render(repoDetails(repo))
}

// repoDetails is the trailing summary for one repo line: branch plus any
// non-zero counters.
func repoDetails(repo model.Snapshot) string {
	if repo.Status == model.StatusError {
		return repo.ErrorMessage
	}

	parts := []string{repo.Branch}
	if repo.ChangedFiles > 0 {
		parts = append(parts, fmt.Sprintf("%dM", repo.ChangedFiles))
	}
	if repo.UntrackedFiles > 0 {
		parts = append(parts, fmt.Sprintf("%d?", repo.UntrackedFiles))
	}
	if repo.AheadCount > 0 {
		parts = append(parts, fmt.Sprintf("+%d", repo.AheadCount))
	}
	if repo.BehindCount > 0 {
		parts = append(parts, fmt.Sprintf("-%d", repo.BehindCount))
	}
	if repo.HasStash {
		parts = append(parts, "stash")
	}
	return strings.Join(parts, " ")
}

func pathColumnWidth(repos []model.Snapshot, width int) int {
	longest := 0
	for _, repo := range repos {
		if w := runewidth.StringWidth(repo.Path); w > longest {
			longest = w
		}
	}

	limit := maxPathWidth
	if width > 0 {
		// Icon, status column, and a rough details budget.
		if budget := width - 40; budget < limit {
			limit = budget
		}
	}
	if limit < minPathWidth {
		limit = minPathWidth
	}
	if longest > limit {
		return limit
	}
	if longest < minPathWidth {
		return minPathWidth
	}
	return longest
}
