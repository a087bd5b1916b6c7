package model

// Status is the single derived state of a repository. The values are
// mutually exclusive; precedence between them is decided by the resolver.
type Status string

const (
	StatusClean     Status = "clean"
	StatusDirty     Status = "dirty"
	StatusUntracked Status = "untracked"
	StatusAhead     Status = "ahead"
	StatusBehind    Status = "behind"
	StatusDiverged  Status = "diverged"
	StatusNoRemote  Status = "no_remote"
	StatusError     Status = "error"
)

// Warning flags an advisory condition on a repository. Warnings are additive
// and independent of the status.
type Warning string

const (
	WarningDirtyMain Warning = "dirty_main"
	WarningNoRemote  Warning = "no_remote"
	WarningDetached  Warning = "detached"
	WarningHasStash  Warning = "has_stash"
)

// CIStatus is the state of the most recent hosted CI run for a repository.
type CIStatus string

const (
	CIPassing     CIStatus = "passing"
	CIFailing     CIStatus = "failing"
	CIPending     CIStatus = "pending"
	CINoWorkflows CIStatus = "no_workflows"
	CIUnknown     CIStatus = "unknown"
)

// DetachedBranch is the sentinel branch name git reports for a detached HEAD.
const DetachedBranch = "HEAD"

// Snapshot is one analyzer's point-in-time record of a single repository.
// It is immutable after analysis except that a successful auto-pull updates
// Status and BehindCount exactly once.
type Snapshot struct {
	Path           string    `json:"path"`
	Branch         string    `json:"branch"`
	Status         Status    `json:"status"`
	IsMainBranch   bool      `json:"is_main_branch"`
	AheadCount     int       `json:"ahead_count"`
	BehindCount    int       `json:"behind_count"`
	ChangedFiles   int       `json:"changed_files"`
	UntrackedFiles int       `json:"untracked_files"`
	HasStash       bool      `json:"has_stash"`
	Warnings       []Warning `json:"warnings,omitempty"`
	CIStatus       CIStatus  `json:"ci_status,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// PullResult records one auto-pull attempt, successful or not.
type PullResult struct {
	Path         string `json:"path"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	FilesChanged int    `json:"files_changed"`
}

// ScanResult aggregates everything one scan run produced. Repos are sorted
// by path.
type ScanResult struct {
	Repos        []Snapshot   `json:"repos"`
	PullResults  []PullResult `json:"pull_results,omitempty"`
	TotalScanned int          `json:"total_scanned"`
	ScanErrors   []string     `json:"scan_errors,omitempty"`
}

// AutoPullPolicy decides which repositories may be fast-forwarded
// automatically. Loaded once per run and never mutated.
type AutoPullPolicy struct {
	Enabled      bool
	RequireClean bool
	SkipPatterns []string
}

// TrackedRepo is one entry of the declarative fleet list: where a repository
// should exist locally and where to obtain it.
type TrackedRepo struct {
	Path   string `json:"path"`
	Remote string `json:"remote"`
	Branch string `json:"branch"`
	Ignore bool   `json:"ignore,omitempty"`
}

// SyncAction is the outcome category for one tracked repository.
type SyncAction string

const (
	SyncCloned  SyncAction = "cloned"
	SyncPulled  SyncAction = "pulled"
	SyncSkipped SyncAction = "skipped"
	SyncError   SyncAction = "error"
)

// SyncRepoResult is the outcome of syncing a single tracked repository.
type SyncRepoResult struct {
	Repo    TrackedRepo `json:"repo"`
	Action  SyncAction  `json:"action"`
	Message string      `json:"message"`
}

// SyncResult aggregates one fleet sync run. Results are sorted by path.
type SyncResult struct {
	Results []SyncRepoResult `json:"results"`
	Cloned  int              `json:"cloned"`
	Pulled  int              `json:"pulled"`
	Skipped int              `json:"skipped"`
	Errors  int              `json:"errors"`
}
