package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

func plainReporter(buf *bytes.Buffer, opts Options) *Reporter {
	opts.Color = false
	return New(buf, opts)
}

func sampleResult() model.ScanResult {
	return model.ScanResult{
		Repos: []model.Snapshot{
			{
				Path:   "/srv/code/alpha",
				Branch: "main",
				Status: model.StatusClean, IsMainBranch: true,
			},
			{
				Path:   "/srv/code/beta",
				Branch: "feature-x",
				Status: model.StatusDirty, ChangedFiles: 3, UntrackedFiles: 2,
				AheadCount: 1, BehindCount: 2,
			},
			{
				Path:   "/srv/code/gamma",
				Branch: "main",
				Status: model.StatusBehind, IsMainBranch: true, BehindCount: 4,
				Warnings: []model.Warning{model.WarningHasStash}, HasStash: true,
			},
		},
		TotalScanned: 3,
	}
}

func TestResultsSummaryAndTable(t *testing.T) {
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{ShowClean: true, Verbosity: "normal"})

	r.Results(sampleResult())
	out := buf.String()

	for _, want := range []string{
		"Scanned 3 repositories",
		"1 clean, 1 dirty, 1 with warnings",
		"PATH", "BRANCH", "STATUS", "CHANGES", "AHEAD/BEHIND",
		"/srv/code/alpha",
		"feature-x",
		"dirty",
		"3M 2?",
		"+1/-2",
		"-4",
		"Stashed changes present",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "CI") {
		t.Error("CI column rendered without any CI data")
	}
}

func TestResultsHidesCleanRepos(t *testing.T) {
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{ShowClean: false, Verbosity: "normal"})

	r.Results(sampleResult())
	out := buf.String()

	if strings.Contains(out, "/srv/code/alpha") {
		t.Errorf("clean repo shown despite show_clean=false:\n%s", out)
	}
	if !strings.Contains(out, "/srv/code/beta") {
		t.Error("dirty repo missing")
	}
	if !strings.Contains(out, "/srv/code/gamma") {
		t.Error("warned repo missing")
	}
}

func TestResultsQuietMode(t *testing.T) {
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{ShowClean: true, Verbosity: "quiet"})

	r.Results(sampleResult())
	out := buf.String()

	if strings.Contains(out, "Scanned") || strings.Contains(out, "PATH") {
		t.Errorf("quiet mode rendered summary or table:\n%s", out)
	}
	if !strings.Contains(out, "dirty /srv/code/beta (feature-x)") {
		t.Errorf("quiet mode missing dirty line:\n%s", out)
	}
	if !strings.Contains(out, "warn /srv/code/gamma (main)") {
		t.Errorf("quiet mode missing warn line:\n%s", out)
	}
	if strings.Contains(out, "alpha") {
		t.Error("quiet mode mentioned a clean repo")
	}
}

func TestResultsPullResults(t *testing.T) {
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{ShowClean: true, Verbosity: "normal"})

	result := sampleResult()
	result.PullResults = []model.PullResult{
		{Path: "/srv/code/gamma", Success: true, Message: "Pull successful", FilesChanged: 4},
		{Path: "/srv/code/delta", Success: false, Message: "timed out after 60s"},
	}
	r.Results(result)
	out := buf.String()

	if !strings.Contains(out, "Pulled 1 repositories") {
		t.Errorf("missing pulled header:\n%s", out)
	}
	if !strings.Contains(out, "/srv/code/gamma: Pull successful") {
		t.Error("missing pulled line")
	}
	if !strings.Contains(out, "Failed to pull 1 repositories") {
		t.Error("missing failed header")
	}
	if !strings.Contains(out, "/srv/code/delta: timed out after 60s") {
		t.Error("missing failed line")
	}
}

func TestResultsVerboseErrorDetails(t *testing.T) {
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{ShowClean: true, Verbosity: "verbose"})

	result := model.ScanResult{
		Repos: []model.Snapshot{
			{Path: "/srv/code/bad", Branch: "unknown", Status: model.StatusError,
				ErrorMessage: "git command timed out after 30s"},
		},
		TotalScanned: 1,
	}
	r.Results(result)
	out := buf.String()

	if !strings.Contains(out, "Errors:") || !strings.Contains(out, "timed out after 30s") {
		t.Errorf("verbose output missing error details:\n%s", out)
	}
}

func TestTableCIColumn(t *testing.T) {
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{ShowClean: true, Verbosity: "normal"})

	repos := []model.Snapshot{
		{Path: "/srv/a", Branch: "main", Status: model.StatusClean, CIStatus: model.CIPassing},
		{Path: "/srv/b", Branch: "main", Status: model.StatusClean, CIStatus: model.CINoWorkflows},
	}
	r.Table(repos)
	out := buf.String()

	if !strings.Contains(out, "CI") {
		t.Errorf("CI header missing:\n%s", out)
	}
	if !strings.Contains(out, "passing") || !strings.Contains(out, "no workflows") {
		t.Errorf("CI values missing:\n%s", out)
	}
}

func TestTableColumnsAligned(t *testing.T) {
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{ShowClean: true, Verbosity: "normal"})

	repos := []model.Snapshot{
		{Path: "/srv/short", Branch: "main", Status: model.StatusClean},
		{Path: "/srv/a-much-longer-repository-path", Branch: "b", Status: model.StatusUntracked, UntrackedFiles: 1},
	}
	r.Table(repos)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows: %q", len(lines), lines)
	}
	// Without color the BRANCH column starts at the same offset everywhere.
	headerIdx := strings.Index(lines[0], "BRANCH")
	row1Idx := strings.Index(lines[1], "main")
	row2Idx := strings.Index(lines[2], "b ")
	if headerIdx != row1Idx || headerIdx != row2Idx {
		t.Errorf("branch column misaligned: header=%d row1=%d row2=%d\n%s",
			headerIdx, row1Idx, row2Idx, buf.String())
	}
}

func TestShortenPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	var buf bytes.Buffer
	r := plainReporter(&buf, Options{})

	if got := r.shortenPath(filepath.Join(home, "code", "x")); got != "~/code/x" {
		t.Errorf("shortenPath home path = %q", got)
	}
	if got := r.shortenPath("/srv/code/x"); got != "/srv/code/x" {
		t.Errorf("shortenPath outside home = %q", got)
	}
}

func TestSyncResults(t *testing.T) {
	result := model.SyncResult{
		Results: []model.SyncRepoResult{
			{Repo: model.TrackedRepo{Path: "/srv/a"}, Action: model.SyncCloned, Message: "Cloned from r"},
			{Repo: model.TrackedRepo{Path: "/srv/b"}, Action: model.SyncPulled, Message: "Pulled 3 files"},
			{Repo: model.TrackedRepo{Path: "/srv/c"}, Action: model.SyncSkipped, Message: "Already up to date"},
			{Repo: model.TrackedRepo{Path: "/srv/d"}, Action: model.SyncError, Message: "Clone failed: boom"},
		},
		Cloned: 1, Pulled: 1, Skipped: 1, Errors: 1,
	}

	var buf bytes.Buffer
	plainReporter(&buf, Options{Verbosity: "normal"}).SyncResults(result)
	out := buf.String()

	for _, want := range []string{
		"/srv/a: Cloned from r",
		"/srv/b: Pulled 3 files",
		"/srv/c: Already up to date",
		"/srv/d: Clone failed: boom",
		"Summary: 1 cloned, 1 pulled, 1 skipped, 1 errors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	plainReporter(&buf, Options{Verbosity: "quiet"}).SyncResults(result)
	out = buf.String()
	if strings.Contains(out, "Already up to date") || strings.Contains(out, "Summary:") {
		t.Errorf("quiet sync output shows skips or summary:\n%s", out)
	}
	if !strings.Contains(out, "Clone failed: boom") {
		t.Error("quiet sync output should still show errors")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded model.ScanResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalScanned != 3 || len(decoded.Repos) != 3 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
	if decoded.Repos[1].Status != model.StatusDirty {
		t.Errorf("Status = %s", decoded.Repos[1].Status)
	}

	if !strings.Contains(buf.String(), `"total_scanned": 3`) {
		t.Errorf("JSON keys not snake_case:\n%s", buf.String())
	}
}

func TestFormatHelpers(t *testing.T) {
	changes := []struct {
		snap model.Snapshot
		want string
	}{
		{model.Snapshot{}, "-"},
		{model.Snapshot{ChangedFiles: 3}, "3M"},
		{model.Snapshot{UntrackedFiles: 2}, "2?"},
		{model.Snapshot{ChangedFiles: 3, UntrackedFiles: 2}, "3M 2?"},
		{model.Snapshot{ChangedFiles: 1, HasStash: true}, "1M S"},
	}
	for _, tt := range changes {
		if got := formatChanges(tt.snap); got != tt.want {
			t.Errorf("formatChanges(%+v) = %q, want %q", tt.snap, got, tt.want)
		}
	}

	aheadBehind := []struct {
		snap model.Snapshot
		want string
	}{
		{model.Snapshot{}, "-"},
		{model.Snapshot{AheadCount: 2}, "+2"},
		{model.Snapshot{BehindCount: 3}, "-3"},
		{model.Snapshot{AheadCount: 2, BehindCount: 3}, "+2/-3"},
	}
	for _, tt := range aheadBehind {
		if got := formatAheadBehind(tt.snap); got != tt.want {
			t.Errorf("formatAheadBehind(%+v) = %q, want %q", tt.snap, got, tt.want)
		}
	}
}
