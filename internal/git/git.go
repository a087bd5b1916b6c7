package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// inspectTimeout bounds read-only queries; mutateTimeout bounds
	// operations that touch the network or the working tree.
	inspectTimeout = 30 * time.Second
	mutateTimeout  = 60 * time.Second
)

// CommandError reports that git could not produce required data: the process
// failed to launch, timed out, or exited non-zero on a query that has no
// soft-failure interpretation.
type CommandError struct {
	Message  string
	RepoPath string
}

func (e *CommandError) Error() string { return e.Message }

// PullOutcome reports one pull or clone attempt. A failed attempt carries the
// underlying tool's error text.
type PullOutcome struct {
	Success      bool
	Message      string
	FilesChanged int
}

// Client issues discrete git operations against individual repositories.
// Expected absences (no upstream, no stash) come back as ordinary values;
// only timeouts and launch failures surface as CommandError.
type Client struct {
	logger *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{logger: logger}
}

// CurrentBranch returns the abbreviated ref name of HEAD, or the literal
// "HEAD" when detached.
func (c *Client) CurrentBranch(ctx context.Context, repoPath string) (string, error) {
	res, err := c.run(ctx, repoPath, inspectTimeout, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if res.exitCode != 0 {
		return "", &CommandError{
			Message:  "failed to get branch: " + strings.TrimSpace(res.stderr),
			RepoPath: repoPath,
		}
	}
	return strings.TrimSpace(res.stdout), nil
}

// WorkingTreeStatus counts changed and untracked entries in the working
// tree. Renames, deletions, and staged edits all count as changed.
func (c *Client) WorkingTreeStatus(ctx context.Context, repoPath string) (changed, untracked int, err error) {
	res, err := c.run(ctx, repoPath, inspectTimeout, "status", "--porcelain")
	if err != nil {
		return 0, 0, err
	}
	if res.exitCode != 0 {
		return 0, 0, &CommandError{
			Message:  "failed to get status: " + strings.TrimSpace(res.stderr),
			RepoPath: repoPath,
		}
	}
	changed, untracked = countStatusEntries(res.stdout)
	return changed, untracked, nil
}

// HasUpstream reports whether the current branch has an upstream configured.
// A missing upstream is an ordinary false, not an error.
func (c *Client) HasUpstream(ctx context.Context, repoPath string) (bool, error) {
	res, err := c.run(ctx, repoPath, inspectTimeout,
		"rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return false, err
	}
	return res.exitCode == 0, nil
}

// HasStash reports whether the repository has stash entries.
func (c *Client) HasStash(ctx context.Context, repoPath string) (bool, error) {
	res, err := c.run(ctx, repoPath, inspectTimeout, "stash", "list")
	if err != nil {
		return false, err
	}
	if res.exitCode != 0 {
		return false, nil
	}
	return strings.TrimSpace(res.stdout) != "", nil
}

// FetchRemote fetches from the default remote. A failed fetch is reported as
// false so callers can carry on with stale counts.
func (c *Client) FetchRemote(ctx context.Context, repoPath string) (bool, error) {
	res, err := c.run(ctx, repoPath, mutateTimeout, "fetch")
	if err != nil {
		return false, err
	}
	return res.exitCode == 0, nil
}

// AheadBehind returns commit counts relative to upstream. Both are zero when
// no upstream is configured or the counts cannot be parsed.
func (c *Client) AheadBehind(ctx context.Context, repoPath string) (ahead, behind int, err error) {
	res, err := c.run(ctx, repoPath, inspectTimeout,
		"rev-list", "--left-right", "--count", "@{upstream}...HEAD")
	if err != nil {
		return 0, 0, err
	}
	if res.exitCode != 0 {
		return 0, 0, nil
	}
	ahead, behind = parseAheadBehind(res.stdout)
	return ahead, behind, nil
}

// Pull fast-forwards the current branch. Histories that cannot fast-forward
// fail instead of producing a merge commit.
func (c *Client) Pull(ctx context.Context, repoPath string) (PullOutcome, error) {
	res, err := c.run(ctx, repoPath, mutateTimeout, "pull", "--ff-only")
	if err != nil {
		return PullOutcome{}, err
	}
	if res.exitCode != 0 {
		msg := strings.TrimSpace(res.stderr)
		if msg == "" {
			msg = "Pull failed"
		}
		return PullOutcome{Message: msg}, nil
	}

	out := strings.TrimSpace(res.stdout)
	msg := "Pull successful"
	if strings.Contains(out, "Already up to date") {
		msg = "Already up to date"
	}
	return PullOutcome{Success: true, Message: msg, FilesChanged: parseFilesChanged(out)}, nil
}

// Clone clones remote into dest. An empty branch means the remote's default
// branch.
func (c *Client) Clone(ctx context.Context, remote, dest, branch string) (PullOutcome, error) {
	args := []string{"clone"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, remote, dest)

	res, err := c.execGit(ctx, dest, mutateTimeout, args)
	if err != nil {
		return PullOutcome{}, err
	}
	if res.exitCode != 0 {
		msg := strings.TrimSpace(res.stderr)
		if msg == "" {
			msg = "Clone failed"
		}
		return PullOutcome{Message: msg}, nil
	}
	return PullOutcome{Success: true, Message: "Cloned " + remote}, nil
}

// RemoteURL returns the origin remote URL, or empty when none is configured.
func (c *Client) RemoteURL(ctx context.Context, repoPath string) (string, error) {
	res, err := c.run(ctx, repoPath, inspectTimeout, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	if res.exitCode != 0 {
		return "", nil
	}
	return strings.TrimSpace(res.stdout), nil
}

type execResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// run executes a git command scoped to one repository via -C.
func (c *Client) run(ctx context.Context, repoPath string, timeout time.Duration, args ...string) (execResult, error) {
	return c.execGit(ctx, repoPath, timeout, append([]string{"-C", repoPath}, args...))
}

// execGit runs git with the given arguments. A non-zero exit comes back in
// the result, not as an error; the error return is reserved for timeouts and
// launch failures. repoPath is only used to attribute failures.
func (c *Client) execGit(ctx context.Context, repoPath string, timeout time.Duration, args []string) (execResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.logger.Debug("exec", "cmd", "git "+strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, "git", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := execResult{stdout: stdout.String(), stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return res, &CommandError{
			Message:  fmt.Sprintf("git %s timed out after %s", strings.Join(args, " "), timeout),
			RepoPath: repoPath,
		}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, &CommandError{
		Message:  fmt.Sprintf("failed to run git: %v", err),
		RepoPath: repoPath,
	}
}

// countStatusEntries classifies `git status --porcelain` lines: the ??
// marker means untracked, everything else counts as changed.
func countStatusEntries(out string) (changed, untracked int) {
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "??") {
			untracked++
		} else {
			changed++
		}
	}
	return changed, untracked
}

// parseAheadBehind reads `git rev-list --left-right --count` output for
// @{upstream}...HEAD: the left count is commits only on upstream (behind),
// the right count commits only on HEAD (ahead).
func parseAheadBehind(out string) (ahead, behind int) {
	parts := strings.Fields(out)
	if len(parts) != 2 {
		return 0, 0
	}
	b, err1 := strconv.Atoi(parts[0])
	a, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return a, b
}

var filesChangedRe = regexp.MustCompile(`(\d+)\s+file`)

func parseFilesChanged(out string) int {
	m := filesChangedRe.FindStringSubmatch(out)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
