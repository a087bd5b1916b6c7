package analyze

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"github.com/marcin-skalski/gitfleet/internal/config"
	"github.com/marcin-skalski/gitfleet/internal/git"
	"github.com/marcin-skalski/gitfleet/internal/model"
	"github.com/marcin-skalski/gitfleet/internal/scan"
)

// Gateway is the slice of the version-control client the analyzer needs.
// Inspection failures with a soft interpretation come back as values; only
// timeouts and launch failures surface as errors.
type Gateway interface {
	CurrentBranch(ctx context.Context, repoPath string) (string, error)
	WorkingTreeStatus(ctx context.Context, repoPath string) (changed, untracked int, err error)
	HasUpstream(ctx context.Context, repoPath string) (bool, error)
	HasStash(ctx context.Context, repoPath string) (bool, error)
	FetchRemote(ctx context.Context, repoPath string) (bool, error)
	AheadBehind(ctx context.Context, repoPath string) (ahead, behind int, err error)
	Pull(ctx context.Context, repoPath string) (git.PullOutcome, error)
}

// Analyzer inspects the repositories the scanner finds and, when asked,
// fast-forwards the ones the auto-pull policy allows.
type Analyzer struct {
	gw      Gateway
	scanner *scan.Scanner
	cfg     *config.Config
	logger  *slog.Logger
	workers int
}

func New(gw Gateway, scanner *scan.Scanner, cfg *config.Config, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		gw:      gw,
		scanner: scanner,
		cfg:     cfg,
		logger:  logger,
		workers: defaultWorkers(),
	}
}

// SetWorkers overrides the analysis pool size. Values below 1 are ignored.
func (a *Analyzer) SetWorkers(n int) {
	if n >= 1 {
		a.workers = n
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU() + 4
	if n > 32 {
		n = 32
	}
	return n
}

// ScanAndAnalyze walks the configured scan paths, analyzes every repository
// found, and optionally fast-forwards the eligible ones. Analysis fans out
// over a bounded worker pool and the snapshots are re-sorted by path, so
// output is deterministic regardless of scheduling.
func (a *Analyzer) ScanAndAnalyze(ctx context.Context, autoPull bool) model.ScanResult {
	var paths []string
	for path := range a.scanner.Scan(a.cfg.ScanPaths) {
		paths = append(paths, path)
	}
	a.logger.Debug("scan complete", "repos", len(paths))

	repos := a.analyzeAll(ctx, paths)

	var pullResults []model.PullResult
	if autoPull {
		pullResults = a.autoPull(ctx, repos)
	}

	return model.ScanResult{
		Repos:        repos,
		PullResults:  pullResults,
		TotalScanned: len(repos),
	}
}

func (a *Analyzer) analyzeAll(ctx context.Context, paths []string) []model.Snapshot {
	sem := make(chan struct{}, a.workers)
	out := make(chan model.Snapshot, len(paths))

	for _, path := range paths {
		sem <- struct{}{}
		go func(p string) {
			defer func() { <-sem }()
			out <- a.AnalyzeRepo(ctx, p)
		}(path)
	}

	repos := make([]model.Snapshot, 0, len(paths))
	for range paths {
		repos = append(repos, <-out)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Path < repos[j].Path })
	return repos
}

// AnalyzeRepo produces the snapshot for a single repository. A gateway
// failure never propagates: it degrades to a snapshot with status error and
// the failure text, so one broken repository cannot take down a scan.
func (a *Analyzer) AnalyzeRepo(ctx context.Context, path string) model.Snapshot {
	branch, err := a.gw.CurrentBranch(ctx, path)
	if err != nil {
		return errorSnapshot(path, err)
	}
	changed, untracked, err := a.gw.WorkingTreeStatus(ctx, path)
	if err != nil {
		return errorSnapshot(path, err)
	}
	hasUpstream, err := a.gw.HasUpstream(ctx, path)
	if err != nil {
		return errorSnapshot(path, err)
	}
	hasStash, err := a.gw.HasStash(ctx, path)
	if err != nil {
		return errorSnapshot(path, err)
	}

	var ahead, behind int
	if hasUpstream {
		// Refresh remote refs first so the counts are current. A failed
		// fetch only means stale counts, never a failed analysis.
		if ok, err := a.gw.FetchRemote(ctx, path); err != nil || !ok {
			a.logger.Debug("fetch failed, ahead/behind may be stale", "repo", path)
		}
		ahead, behind, err = a.gw.AheadBehind(ctx, path)
		if err != nil {
			return errorSnapshot(path, err)
		}
	}

	status := Resolve(changed, untracked, ahead, behind)
	isMain := IsMainBranch(branch, a.cfg.MainBranches)

	return model.Snapshot{
		Path:           path,
		Branch:         branch,
		Status:         status,
		IsMainBranch:   isMain,
		AheadCount:     ahead,
		BehindCount:    behind,
		ChangedFiles:   changed,
		UntrackedFiles: untracked,
		HasStash:       hasStash,
		Warnings:       DetectWarnings(branch, status, isMain, hasUpstream, hasStash),
	}
}

func errorSnapshot(path string, err error) model.Snapshot {
	return model.Snapshot{
		Path:         path,
		Branch:       "unknown",
		Status:       model.StatusError,
		ErrorMessage: err.Error(),
	}
}

// ShouldAutoPull reports whether the policy allows fast-forwarding the
// repository. Under require_clean only clean or purely-behind repositories
// qualify; anything with local work or divergence never does.
func ShouldAutoPull(snap model.Snapshot, policy model.AutoPullPolicy) bool {
	if !policy.Enabled {
		return false
	}
	if snap.Status == model.StatusError {
		return false
	}
	if policy.RequireClean && snap.Status != model.StatusClean && snap.Status != model.StatusBehind {
		return false
	}
	if snap.BehindCount == 0 {
		return false
	}
	return !scan.Matches(snap.Path, policy.SkipPatterns)
}

// autoPull fast-forwards eligible repositories one at a time, in path
// order. Only this phase mutates working trees; analysis never does.
func (a *Analyzer) autoPull(ctx context.Context, repos []model.Snapshot) []model.PullResult {
	policy := a.cfg.AutoPull.Policy()

	var results []model.PullResult
	for i := range repos {
		if !ShouldAutoPull(repos[i], policy) {
			continue
		}
		results = append(results, a.pullOne(ctx, &repos[i]))
	}
	return results
}

// pullOne attempts one fast-forward and updates the snapshot in place on
// success. Failures leave the snapshot exactly as analyzed.
func (a *Analyzer) pullOne(ctx context.Context, snap *model.Snapshot) model.PullResult {
	outcome, err := a.gw.Pull(ctx, snap.Path)
	if err != nil {
		a.logger.Warn("auto-pull failed", "repo", snap.Path, "error", err)
		return model.PullResult{Path: snap.Path, Message: err.Error()}
	}
	if !outcome.Success {
		a.logger.Warn("auto-pull failed", "repo", snap.Path, "message", outcome.Message)
		return model.PullResult{Path: snap.Path, Message: outcome.Message}
	}

	snap.Status = model.StatusClean
	snap.BehindCount = 0
	return model.PullResult{
		Path:         snap.Path,
		Success:      true,
		Message:      outcome.Message,
		FilesChanged: outcome.FilesChanged,
	}
}
