package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

const (
	probeTimeout = 5 * time.Second
	queryTimeout = 30 * time.Second

	// CI queries hit the GitHub API; keep the fan-out modest.
	maxConcurrentQueries = 8
)

// RemoteResolver maps a repository path to its remote URL. Satisfied by the
// git client.
type RemoteResolver interface {
	RemoteURL(ctx context.Context, repoPath string) (string, error)
}

// Client annotates snapshots with the state of the most recent GitHub
// Actions run, via the gh CLI. CI data is advisory: any failure, from a
// missing gh binary to a non-GitHub remote, degrades to CIUnknown and
// never blocks a scan.
type Client struct {
	git    RemoteResolver
	logger *slog.Logger
}

func NewClient(git RemoteResolver, logger *slog.Logger) *Client {
	return &Client{git: git, logger: logger}
}

// IsAvailable reports whether the gh CLI can be invoked at all.
func (c *Client) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return exec.CommandContext(probeCtx, "gh", "--version").Run() == nil
}

// Annotate fills in CIStatus on every snapshot, querying concurrently. One
// availability probe covers the whole batch.
func (c *Client) Annotate(ctx context.Context, repos []model.Snapshot) {
	if len(repos) == 0 {
		return
	}
	if !c.IsAvailable(ctx) {
		c.logger.Debug("gh not available, skipping CI annotation")
		for i := range repos {
			repos[i].CIStatus = model.CIUnknown
		}
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentQueries)
	for i := range repos {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			repos[i].CIStatus = c.ciStatus(ctx, repos[i].Path)
		}(i)
	}
	wg.Wait()
}

// CIStatus returns the CI state for a single repository.
func (c *Client) CIStatus(ctx context.Context, repoPath string) model.CIStatus {
	if !c.IsAvailable(ctx) {
		return model.CIUnknown
	}
	return c.ciStatus(ctx, repoPath)
}

func (c *Client) ciStatus(ctx context.Context, repoPath string) model.CIStatus {
	url, err := c.git.RemoteURL(ctx, repoPath)
	if err != nil || url == "" {
		return model.CIUnknown
	}
	slug := ParseRepoSlug(url)
	if slug == "" {
		return model.CIUnknown
	}

	out, err := c.gh(ctx, "run", "list", "--repo", slug, "--limit", "1", "--json", "status,conclusion")
	if err != nil {
		c.logger.Debug("gh run list failed", "repo", slug, "error", err)
		return model.CIUnknown
	}
	return parseRunList(out)
}

var (
	sshRemoteRe   = regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
	httpsRemoteRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?$`)
)

// ParseRepoSlug extracts "owner/repo" from a GitHub remote URL, SSH or
// HTTPS, with or without the .git suffix. Remotes on other hosts map to "".
func ParseRepoSlug(url string) string {
	for _, re := range []*regexp.Regexp{sshRemoteRe, httpsRemoteRe} {
		if m := re.FindStringSubmatch(strings.TrimSpace(url)); m != nil {
			return m[1] + "/" + m[2]
		}
	}
	return ""
}

type workflowRun struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// parseRunList maps the newest workflow run to a CI state. An empty list
// means the repository has never run a workflow.
func parseRunList(data []byte) model.CIStatus {
	var runs []workflowRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return model.CIUnknown
	}
	if len(runs) == 0 {
		return model.CINoWorkflows
	}

	switch runs[0].Status {
	case "queued", "in_progress", "waiting", "pending":
		return model.CIPending
	}
	switch runs[0].Conclusion {
	case "success":
		return model.CIPassing
	case "failure", "cancelled", "timed_out":
		return model.CIFailing
	}
	return model.CIUnknown
}

func (c *Client) gh(ctx context.Context, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	c.logger.Debug("gh", "args", strings.Join(args, " "))
	cmd := exec.CommandContext(runCtx, "gh", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
		}
		return nil, err
	}
	return out, nil
}
