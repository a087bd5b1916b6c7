package scan

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxDepth bounds descent so pathological or cyclic trees cannot run
// away.
const DefaultMaxDepth = 20

// Scanner walks directory trees looking for repository roots. One Scan call
// produces a single-pass stream; the Scanner itself is reusable.
type Scanner struct {
	excludePatterns []string
	excludePaths    map[string]struct{}
	maxDepth        int
	logger          *slog.Logger
}

func New(excludePatterns, excludePaths []string, logger *slog.Logger) *Scanner {
	excluded := make(map[string]struct{}, len(excludePaths))
	for _, p := range excludePaths {
		excluded[p] = struct{}{}
	}
	return &Scanner{
		excludePatterns: excludePatterns,
		excludePaths:    excluded,
		maxDepth:        DefaultMaxDepth,
		logger:          logger,
	}
}

// SetMaxDepth overrides the descent ceiling. Values below 1 keep the default.
func (s *Scanner) SetMaxDepth(depth int) {
	if depth >= 1 {
		s.maxDepth = depth
	}
}

// Scan streams every repository root found under the given roots. The
// channel closes when the walk completes; callers must drain it. Roots that
// do not exist or are not directories are skipped silently.
func (s *Scanner) Scan(roots []string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		visited := make(map[string]struct{})
		for _, root := range roots {
			info, err := os.Stat(root)
			if err != nil || !info.IsDir() {
				continue
			}
			s.walk(root, visited, out)
		}
	}()
	return out
}

type pendingDir struct {
	path  string
	depth int
}

// walk is an explicit worklist traversal. Each directory is pruned before
// any descent: exclusion rules and the visited set are checked first, and a
// repository root is emitted without looking beneath it.
func (s *Scanner) walk(root string, visited map[string]struct{}, out chan<- string) {
	stack := []pendingDir{{path: root, depth: 0}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.depth > s.maxDepth {
			continue
		}

		// Canonical path doubles as the filesystem identity token: symlinked
		// aliases of one directory collapse to the same key.
		id, err := filepath.EvalSymlinks(cur.path)
		if err != nil {
			continue
		}
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		if s.excluded(cur.path) {
			s.logger.Debug("excluded", "dir", cur.path)
			continue
		}

		if IsRepoRoot(cur.path) {
			out <- cur.path
			continue
		}

		entries, err := os.ReadDir(cur.path)
		if err != nil {
			continue
		}
		// Push in reverse so pop order follows directory order.
		for i := len(entries) - 1; i >= 0; i-- {
			child, ok := s.childDir(cur.path, entries[i])
			if !ok {
				continue
			}
			stack = append(stack, pendingDir{path: child, depth: cur.depth + 1})
		}
	}
}

// childDir filters one directory entry: hidden names are never descended
// into, and symlinks are followed only when they point at directories.
func (s *Scanner) childDir(parent string, entry fs.DirEntry) (string, bool) {
	name := entry.Name()
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	child := filepath.Join(parent, name)
	if entry.IsDir() {
		return child, true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return "", false
	}
	info, err := os.Stat(child)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return child, true
}

func (s *Scanner) excluded(path string) bool {
	if _, ok := s.excludePaths[path]; ok {
		return true
	}
	return Matches(path, s.excludePatterns)
}

// IsRepoRoot reports whether the directory holds a .git directory. A .git
// file (linked worktree) does not count.
func IsRepoRoot(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}
