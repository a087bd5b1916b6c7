package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

type fakeProvider struct {
	mu       sync.Mutex
	snapshot Snapshot
	refreshs int
}

func (p *fakeProvider) GetSnapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

func (p *fakeProvider) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshs++
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Timestamp: time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC),
		Repos: []model.Snapshot{
			{Path: "/home/dev/code/alpha", Branch: "main", Status: model.StatusClean},
			{Path: "/home/dev/code/beta", Branch: "fix/auth", Status: model.StatusDirty, ChangedFiles: 3, Warnings: []model.Warning{model.WarningHasStash}, HasStash: true},
			{Path: "/home/dev/code/gamma", Branch: "main", Status: model.StatusBehind, BehindCount: 4},
		},
	}
}

func TestModelQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}} {
		m := NewModel(&fakeProvider{snapshot: sampleSnapshot()})
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("key %q: expected quit command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %q: expected QuitMsg, got %T", key.String(), cmd())
		}
	}
}

func TestModelRefreshKeyKicksProvider(t *testing.T) {
	provider := &fakeProvider{snapshot: sampleSnapshot()}
	m := NewModel(provider)

	if _, cmd := m.Update(runeKey("r")); cmd != nil {
		t.Error("refresh key should not schedule a command")
	}
	if provider.refreshs != 1 {
		t.Errorf("expected 1 refresh request, got %d", provider.refreshs)
	}
}

func TestModelTickRereadsSnapshot(t *testing.T) {
	provider := &fakeProvider{}
	m := NewModel(provider)

	provider.snapshot = sampleSnapshot()
	got, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if updated := got.(Model); len(updated.snapshot.Repos) != 3 {
		t.Errorf("expected snapshot reread on tick, got %d repos", len(updated.snapshot.Repos))
	}
}

func TestModelScrollClamps(t *testing.T) {
	provider := &fakeProvider{snapshot: sampleSnapshot()}
	m := NewModel(provider)
	m.height = chromeLines + 2 // two visible rows, one overflow

	got, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = got.(Model)
	if m.scrollOffset != 1 {
		t.Fatalf("expected offset 1 after down, got %d", m.scrollOffset)
	}

	got, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = got.(Model)
	if m.scrollOffset != 1 {
		t.Errorf("offset should clamp at 1, got %d", m.scrollOffset)
	}

	got, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = got.(Model)
	if m.scrollOffset != 0 {
		t.Errorf("expected offset 0 after up, got %d", m.scrollOffset)
	}

	got, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = got.(Model)
	if m.scrollOffset != 0 {
		t.Errorf("offset should not go negative, got %d", m.scrollOffset)
	}
}

func TestRenderViewHeaderCounts(t *testing.T) {
	out := renderView(sampleSnapshot(), 0, defaultVisibleRows, 0)

	for _, want := range []string{
		"3 repos",
		"1 dirty",
		"1 behind",
		"1 warnings",
		"Last scan: 14:30:05",
		"q:quit r:rescan",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestRenderViewScanningBeforeFirstResult(t *testing.T) {
	out := renderView(Snapshot{Scanning: true}, 0, defaultVisibleRows, 0)

	if !strings.Contains(out, "scanning...") {
		t.Errorf("expected scanning indicator:\n%s", out)
	}
	if !strings.Contains(out, "(no repositories found)") {
		t.Errorf("expected empty placeholder:\n%s", out)
	}
}

func TestRenderReposScrollMarkers(t *testing.T) {
	repos := make([]model.Snapshot, 10)
	for i := range repos {
		repos[i] = model.Snapshot{
			Path:   "/code/repo" + string(rune('a'+i)),
			Branch: "main",
			Status: model.StatusClean,
		}
	}

	out := renderRepos(repos, 0, 3, 2)
	if !strings.Contains(out, "↑ 2 more") {
		t.Errorf("expected above marker:\n%s", out)
	}
	if !strings.Contains(out, "↓ 5 more") {
		t.Errorf("expected below marker:\n%s", out)
	}
	if !strings.Contains(out, "repoc") || strings.Contains(out, "repof") {
		t.Errorf("expected window [repoc, repoe]:\n%s", out)
	}
}

func TestRepoDetails(t *testing.T) {
	tests := []struct {
		name string
		repo model.Snapshot
		want string
	}{
		{
			name: "clean shows branch only",
			repo: model.Snapshot{Branch: "main", Status: model.StatusClean},
			want: "main",
		},
		{
			name: "counters appended when set",
			repo: model.Snapshot{
				Branch: "dev", Status: model.StatusDiverged,
				ChangedFiles: 2, UntrackedFiles: 1,
				AheadCount: 3, BehindCount: 4, HasStash: true,
			},
			want: "dev 2M 1? +3 -4 stash",
		},
		{
			name: "error shows message",
			repo: model.Snapshot{Branch: "unknown", Status: model.StatusError, ErrorMessage: "not a git repository"},
			want: "not a git repository",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repoDetails(tt.repo); got != tt.want {
				t.Errorf("repoDetails() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathColumnWidth(t *testing.T) {
	repos := []model.Snapshot{
		{Path: "/a/b"},
		{Path: "/home/dev/code/some-longer-repo-name"},
	}

	if got := pathColumnWidth(repos, 0); got != 36 {
		t.Errorf("unconstrained width = %d, want longest path width 36", got)
	}
	if got := pathColumnWidth(repos, 60); got != 20 {
		t.Errorf("narrow terminal width = %d, want floor 20", got)
	}
	if got := pathColumnWidth(nil, 0); got != minPathWidth {
		t.Errorf("empty fleet width = %d, want %d", got, minPathWidth)
	}
}

func TestWatcherRefreshIsNonBlocking(t *testing.T) {
	w := &Watcher{kick: make(chan struct{}, 1)}

	done := make(chan struct{})
	go func() {
		w.Refresh()
		w.Refresh()
		w.Refresh()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Refresh blocked with a pending kick")
	}

	if len(w.kick) != 1 {
		t.Errorf("expected exactly one pending kick, got %d", len(w.kick))
	}
}
