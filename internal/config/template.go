package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultTemplate is the commented starter config written by `gitfleet init`.
const DefaultTemplate = `# gitfleet configuration

# Directories to scan for git repositories
scan_paths:
  - ~/code
  - ~/projects

# Glob patterns for directories to skip while scanning
exclude_patterns:
  - "**/node_modules"
  - "**/venv"
  - "**/.venv"
  - "**/vendor"
  - "**/__pycache__"

# Absolute paths to skip entirely
exclude_paths: []

# Branch names treated as the main branch (dirty ones get a warning)
main_branches:
  - main
  - master

# Fast-forward eligible repositories automatically during scans
auto_pull:
  enabled: true
  require_clean: true
  skip_patterns: []

output:
  show_clean: true
  color: true
  verbosity: normal   # quiet, normal, verbose

# Rescan interval for the watch dashboard
watch:
  interval: 2m

# Logging; log_file defaults to ~/.local/state/gitfleet/gitfleet.log
log:
  level: info         # debug, info, warn, error
`

// ReposTemplate is the starter tracked-repos list written by
// `gitfleet sync --init`.
const ReposTemplate = `# Repositories tracked by gitfleet sync: cloned when missing, pulled when
# behind. Keep paths unique; duplicate paths would race during sync.

# Optional prefix joined onto relative paths below. A repos.local.yml next
# to this file may override it per machine, and --prefix overrides both.
# prefix: ~/code

repos: []
#  - path: my-project                                  # relative: prefix applies
#    remote: git@github.com:username/my-project.git
#    branch: main                                      # optional, defaults to main
#  - path: ~/work/infra                                # absolute: used as-is
#    remote: git@github.com:username/infra.git
#    ignore: true                                      # keep the entry, skip the repo
`

// CreateDefault writes the starter config. It refuses to overwrite an
// existing file.
func CreateDefault(path string) error {
	return writeTemplate(path, DefaultTemplate, "config")
}

// CreateReposFile writes the starter tracked-repos list. It refuses to
// overwrite an existing file.
func CreateReposFile(path string) error {
	return writeTemplate(path, ReposTemplate, "repos")
}

func writeTemplate(path, template, kind string) error {
	path = ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s file already exists: %s", kind, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", kind, err)
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return fmt.Errorf("write %s file: %w", kind, err)
	}
	return nil
}
