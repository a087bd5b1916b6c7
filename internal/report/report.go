package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

// Options controls what the reporter shows and how.
type Options struct {
	ShowClean bool
	Color     bool
	Verbosity string // quiet, normal, verbose
}

// Reporter renders scan and sync results for a terminal.
type Reporter struct {
	w    io.Writer
	opts Options
	st   styles
	home string
}

func New(w io.Writer, opts Options) *Reporter {
	home, _ := os.UserHomeDir()
	return &Reporter{w: w, opts: opts, st: newStyles(opts.Color), home: home}
}

// Results renders the full report for one scan: summary, status table,
// warnings, and auto-pull outcomes.
func (r *Reporter) Results(result model.ScanResult) {
	if r.opts.Verbosity == "quiet" {
		r.quietSummary(result)
		return
	}

	r.summary(result)

	shown := result.Repos
	if !r.opts.ShowClean {
		shown = nil
		for _, repo := range result.Repos {
			if repo.Status != model.StatusClean || len(repo.Warnings) > 0 {
				shown = append(shown, repo)
			}
		}
	}
	if len(shown) > 0 {
		r.Table(shown)
	}

	var warned []model.Snapshot
	for _, repo := range result.Repos {
		if len(repo.Warnings) > 0 {
			warned = append(warned, repo)
		}
	}
	if len(warned) > 0 {
		r.Warnings(warned)
	}

	if len(result.PullResults) > 0 {
		r.pullResults(result.PullResults)
	}

	if r.opts.Verbosity == "verbose" {
		r.errorDetails(result)
	}
}

func (r *Reporter) summary(result model.ScanResult) {
	var clean, dirty, warned int
	for _, repo := range result.Repos {
		switch {
		case repo.Status == model.StatusClean && len(repo.Warnings) == 0:
			clean++
		case repo.Status == model.StatusDirty:
			dirty++
		}
		if len(repo.Warnings) > 0 {
			warned++
		}
	}

	fmt.Fprintf(r.w, "\nScanned %s repositories\n", r.st.header.Render(fmt.Sprintf("%d", result.TotalScanned)))
	fmt.Fprintf(r.w, "  %s clean, %s dirty, %s with warnings\n",
		r.st.good.Render(fmt.Sprintf("%d", clean)),
		r.st.bad.Render(fmt.Sprintf("%d", dirty)),
		r.st.warn.Render(fmt.Sprintf("%d", warned)))
}

// quietSummary prints one line per repository that needs attention and
// nothing else.
func (r *Reporter) quietSummary(result model.ScanResult) {
	for _, repo := range result.Repos {
		switch {
		case repo.Status == model.StatusDirty || repo.Status == model.StatusError:
			fmt.Fprintf(r.w, "%s %s (%s)\n", r.st.bad.Render("dirty"), r.shortenPath(repo.Path), repo.Branch)
		case len(repo.Warnings) > 0:
			fmt.Fprintf(r.w, "%s %s (%s)\n", r.st.warn.Render("warn"), r.shortenPath(repo.Path), repo.Branch)
		}
	}
}

type cell struct {
	text  string
	style lipgloss.Style
}

// Table renders the status table. Cells are padded on their display width
// before styling, so ANSI escapes never skew the columns.
func (r *Reporter) Table(repos []model.Snapshot) {
	withCI := false
	for _, repo := range repos {
		if repo.CIStatus != "" {
			withCI = true
			break
		}
	}

	headers := []string{"PATH", "BRANCH", "STATUS", "CHANGES", "AHEAD/BEHIND"}
	if withCI {
		headers = append(headers, "CI")
	}

	rows := make([][]cell, 0, len(repos))
	for _, repo := range repos {
		row := []cell{
			{r.shortenPath(repo.Path), r.st.path},
			{repo.Branch, r.st.branch},
			{statusLabel(repo.Status), r.st.status(repo.Status)},
			{formatChanges(repo), r.st.plain},
			{formatAheadBehind(repo), r.st.plain},
		}
		if withCI {
			row = append(row, cell{ciLabel(repo.CIStatus), r.st.ci(repo.CIStatus)})
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := runewidth.StringWidth(c.text); w > widths[i] {
				widths[i] = w
			}
		}
	}

	fmt.Fprintln(r.w)
	var b strings.Builder
	for i, h := range headers {
		b.WriteString(r.st.header.Render(h))
		if i < len(headers)-1 {
			b.WriteString(gutter(h, widths[i]))
		}
	}
	fmt.Fprintln(r.w, "  "+b.String())

	for _, row := range rows {
		b.Reset()
		for i, c := range row {
			b.WriteString(c.style.Render(c.text))
			if i < len(row)-1 {
				b.WriteString(gutter(c.text, widths[i]))
			}
		}
		fmt.Fprintln(r.w, "  "+b.String())
	}
}

// gutter pads text out to the column width plus the two-space separator.
func gutter(text string, width int) string {
	return strings.Repeat(" ", width-runewidth.StringWidth(text)+2)
}

// Warnings renders the warning block for repositories that carry any.
func (r *Reporter) Warnings(repos []model.Snapshot) {
	fmt.Fprintf(r.w, "\n%s\n", r.st.warn.Render("⚠ Warnings:"))
	for _, repo := range repos {
		for _, w := range repo.Warnings {
			fmt.Fprintf(r.w, "  %s: %s\n", r.shortenPath(repo.Path), warningMessage(w))
		}
	}
}

func (r *Reporter) pullResults(results []model.PullResult) {
	var ok, bad []model.PullResult
	for _, pr := range results {
		if pr.Success {
			ok = append(ok, pr)
		} else {
			bad = append(bad, pr)
		}
	}

	if len(ok) > 0 {
		fmt.Fprintf(r.w, "\n%s\n", r.st.good.Render(fmt.Sprintf("↓ Pulled %d repositories:", len(ok))))
		for _, pr := range ok {
			fmt.Fprintf(r.w, "  %s %s: %s\n", r.st.good.Render("✓"), r.shortenPath(pr.Path), pr.Message)
		}
	}
	if len(bad) > 0 {
		fmt.Fprintf(r.w, "\n%s\n", r.st.bad.Render(fmt.Sprintf("✗ Failed to pull %d repositories:", len(bad))))
		for _, pr := range bad {
			fmt.Fprintf(r.w, "  %s %s: %s\n", r.st.bad.Render("✗"), r.shortenPath(pr.Path), pr.Message)
		}
	}
}

// errorDetails lists per-repository failure text; only verbose runs show it.
func (r *Reporter) errorDetails(result model.ScanResult) {
	var lines []string
	for _, repo := range result.Repos {
		if repo.Status == model.StatusError && repo.ErrorMessage != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s", r.shortenPath(repo.Path), repo.ErrorMessage))
		}
	}
	for _, e := range result.ScanErrors {
		lines = append(lines, "  "+e)
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(r.w, "\n%s\n", r.st.bad.Render("Errors:"))
	for _, l := range lines {
		fmt.Fprintln(r.w, l)
	}
}

// SyncResults renders per-repo sync outcomes and a closing summary line.
// Quiet mode drops the skipped entries and the summary.
func (r *Reporter) SyncResults(result model.SyncResult) {
	quiet := r.opts.Verbosity == "quiet"
	for _, res := range result.Results {
		path := r.shortenPath(res.Repo.Path)
		switch res.Action {
		case model.SyncCloned:
			fmt.Fprintf(r.w, "  %s %s: %s\n", r.st.good.Render("+"), path, res.Message)
		case model.SyncPulled:
			fmt.Fprintf(r.w, "  %s %s: %s\n", r.st.ahead.Render("↓"), path, res.Message)
		case model.SyncError:
			fmt.Fprintf(r.w, "  %s %s: %s\n", r.st.bad.Render("✗"), path, res.Message)
		default:
			if !quiet {
				fmt.Fprintf(r.w, "  %s %s: %s\n", r.st.dim.Render("·"), path, res.Message)
			}
		}
	}
	if quiet {
		return
	}

	fmt.Fprintf(r.w, "\nSummary: %s cloned, %s pulled, %s skipped, %s errors\n",
		r.st.good.Render(fmt.Sprintf("%d", result.Cloned)),
		r.st.ahead.Render(fmt.Sprintf("%d", result.Pulled)),
		r.st.dim.Render(fmt.Sprintf("%d", result.Skipped)),
		r.st.bad.Render(fmt.Sprintf("%d", result.Errors)))
}

// WriteJSON emits the machine-readable form of any result aggregate.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// shortenPath renders a path relative to the home directory when possible.
func (r *Reporter) shortenPath(path string) string {
	if r.home == "" {
		return path
	}
	rel, err := filepath.Rel(r.home, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return path
	}
	return "~/" + rel
}

func statusLabel(s model.Status) string {
	if s == model.StatusNoRemote {
		return "no remote"
	}
	return string(s)
}

func ciLabel(s model.CIStatus) string {
	if s == model.CINoWorkflows {
		return "no workflows"
	}
	return string(s)
}

// formatChanges compacts the working-tree counts: "3M 2? S" means three
// modified files, two untracked, and a stash.
func formatChanges(repo model.Snapshot) string {
	var parts []string
	if repo.ChangedFiles > 0 {
		parts = append(parts, fmt.Sprintf("%dM", repo.ChangedFiles))
	}
	if repo.UntrackedFiles > 0 {
		parts = append(parts, fmt.Sprintf("%d?", repo.UntrackedFiles))
	}
	if repo.HasStash {
		parts = append(parts, "S")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func formatAheadBehind(repo model.Snapshot) string {
	if repo.AheadCount == 0 && repo.BehindCount == 0 {
		return "-"
	}
	var parts []string
	if repo.AheadCount > 0 {
		parts = append(parts, fmt.Sprintf("+%d", repo.AheadCount))
	}
	if repo.BehindCount > 0 {
		parts = append(parts, fmt.Sprintf("-%d", repo.BehindCount))
	}
	return strings.Join(parts, "/")
}

func warningMessage(w model.Warning) string {
	switch w {
	case model.WarningDirtyMain:
		return "Uncommitted changes on main branch"
	case model.WarningNoRemote:
		return "No upstream remote configured"
	case model.WarningDetached:
		return "Detached HEAD state"
	case model.WarningHasStash:
		return "Stashed changes present"
	}
	return string(w)
}
