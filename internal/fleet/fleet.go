package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/marcin-skalski/gitfleet/internal/git"
	"github.com/marcin-skalski/gitfleet/internal/model"
	"github.com/marcin-skalski/gitfleet/internal/scan"
)

// Gateway is the slice of the version-control client fleet sync needs.
type Gateway interface {
	FetchRemote(ctx context.Context, repoPath string) (bool, error)
	AheadBehind(ctx context.Context, repoPath string) (ahead, behind int, err error)
	Pull(ctx context.Context, repoPath string) (git.PullOutcome, error)
	Clone(ctx context.Context, remote, dest, branch string) (git.PullOutcome, error)
}

// Synchronizer reconciles the declarative tracked-repo list with the local
// filesystem: clone what is missing, pull what is behind, leave the rest
// alone.
type Synchronizer struct {
	gw      Gateway
	logger  *slog.Logger
	workers int
}

func New(gw Gateway, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{gw: gw, logger: logger, workers: defaultWorkers()}
}

// SetWorkers overrides the sync pool size. Values below 1 are ignored.
func (s *Synchronizer) SetWorkers(n int) {
	if n >= 1 {
		s.workers = n
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU() + 4
	if n > 32 {
		n = 32
	}
	return n
}

// SyncAll processes every tracked repository. Ignored entries resolve
// immediately without touching the filesystem; the rest fan out over a
// bounded pool, where each entry owns a distinct path and so has no
// working tree to race on. Failures stay in their entry's result and never
// abort the run. Results come back sorted by path so reporting is
// deterministic regardless of completion order.
func (s *Synchronizer) SyncAll(ctx context.Context, repos []model.TrackedRepo, pullExisting bool) model.SyncResult {
	results := make([]model.SyncRepoResult, 0, len(repos))

	var pending []model.TrackedRepo
	for _, repo := range repos {
		if repo.Ignore {
			results = append(results, skipped(repo, "Ignored"))
			continue
		}
		pending = append(pending, repo)
	}

	sem := make(chan struct{}, s.workers)
	out := make(chan model.SyncRepoResult, len(pending))
	for _, repo := range pending {
		sem <- struct{}{}
		go func(r model.TrackedRepo) {
			defer func() { <-sem }()
			out <- s.syncRepo(ctx, r, pullExisting)
		}(repo)
	}
	for range pending {
		results = append(results, <-out)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Repo.Path < results[j].Repo.Path
	})

	result := model.SyncResult{Results: results}
	for _, r := range results {
		switch r.Action {
		case model.SyncCloned:
			result.Cloned++
		case model.SyncPulled:
			result.Pulled++
		case model.SyncSkipped:
			result.Skipped++
		default:
			result.Errors++
		}
	}
	return result
}

func (s *Synchronizer) syncRepo(ctx context.Context, repo model.TrackedRepo, pullExisting bool) model.SyncRepoResult {
	if _, err := os.Stat(repo.Path); err != nil {
		return s.clone(ctx, repo)
	}
	return s.updateExisting(ctx, repo, pullExisting)
}

func (s *Synchronizer) updateExisting(ctx context.Context, repo model.TrackedRepo, pullExisting bool) model.SyncRepoResult {
	if !scan.IsRepoRoot(repo.Path) {
		return failed(repo, fmt.Sprintf("Path exists but is not a git repo: %s", repo.Path))
	}
	if !pullExisting {
		return skipped(repo, "Already exists")
	}

	if _, err := s.gw.FetchRemote(ctx, repo.Path); err != nil {
		return failed(repo, err.Error())
	}
	_, behind, err := s.gw.AheadBehind(ctx, repo.Path)
	if err != nil {
		return failed(repo, err.Error())
	}
	if behind == 0 {
		return skipped(repo, "Already up to date")
	}

	outcome, err := s.gw.Pull(ctx, repo.Path)
	if err != nil {
		return failed(repo, err.Error())
	}
	if !outcome.Success {
		return failed(repo, "Pull failed: "+outcome.Message)
	}
	s.logger.Info("pulled tracked repo", "repo", repo.Path, "files", outcome.FilesChanged)
	return model.SyncRepoResult{
		Repo:    repo,
		Action:  model.SyncPulled,
		Message: fmt.Sprintf("Pulled %d files", outcome.FilesChanged),
	}
}

// clone creates the repository at its tracked path. When the requested
// branch does not exist on the remote, the partial clone is removed and one
// retry takes the remote's default branch instead.
func (s *Synchronizer) clone(ctx context.Context, repo model.TrackedRepo) model.SyncRepoResult {
	if err := os.MkdirAll(filepath.Dir(repo.Path), 0o755); err != nil {
		return failed(repo, fmt.Sprintf("create parent dir: %v", err))
	}

	outcome, err := s.gw.Clone(ctx, repo.Remote, repo.Path, repo.Branch)
	if err != nil {
		return failed(repo, err.Error())
	}
	if outcome.Success {
		s.logger.Info("cloned tracked repo", "repo", repo.Path, "remote", repo.Remote)
		return model.SyncRepoResult{Repo: repo, Action: model.SyncCloned, Message: "Cloned from " + repo.Remote}
	}
	if repo.Branch == "" || !isBranchNotFound(outcome.Message) {
		return failed(repo, "Clone failed: "+outcome.Message)
	}

	// The requested branch is missing on the remote. Clear whatever the
	// failed clone left behind and take the default branch.
	s.logger.Info("branch not on remote, cloning default branch",
		"repo", repo.Path, "branch", repo.Branch)
	if err := os.RemoveAll(repo.Path); err != nil {
		return failed(repo, fmt.Sprintf("remove failed clone: %v", err))
	}
	outcome, err = s.gw.Clone(ctx, repo.Remote, repo.Path, "")
	if err != nil {
		return failed(repo, err.Error())
	}
	if !outcome.Success {
		return failed(repo, "Clone failed: "+outcome.Message)
	}
	return model.SyncRepoResult{
		Repo:    repo,
		Action:  model.SyncCloned,
		Message: fmt.Sprintf("Cloned from %s (default branch: %q not on remote)", repo.Remote, repo.Branch),
	}
}

// isBranchNotFound matches git's clone failure text for a branch missing on
// the remote, covering both current and older phrasings.
func isBranchNotFound(msg string) bool {
	m := strings.ToLower(msg)
	if !strings.Contains(m, "remote branch") {
		return false
	}
	return strings.Contains(m, "not found") || strings.Contains(m, "could not find")
}

func skipped(repo model.TrackedRepo, msg string) model.SyncRepoResult {
	return model.SyncRepoResult{Repo: repo, Action: model.SyncSkipped, Message: msg}
}

func failed(repo model.TrackedRepo, msg string) model.SyncRepoResult {
	return model.SyncRepoResult{Repo: repo, Action: model.SyncError, Message: msg}
}
