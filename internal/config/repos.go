package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

// reposFile is the raw shape of the tracked-repos list.
type reposFile struct {
	Prefix string             `yaml:"prefix"`
	Repos  []trackedRepoEntry `yaml:"repos"`
}

type trackedRepoEntry struct {
	Path   string `yaml:"path"`
	Remote string `yaml:"remote"`
	Branch string `yaml:"branch"`
	Ignore bool   `yaml:"ignore"`
}

// localOverride is the machine-local sidecar (repos.local.yml) that can
// repoint the prefix without editing the shared repos file.
type localOverride struct {
	Prefix string `yaml:"prefix"`
}

// FindReposFile returns the first existing tracked-repos file in the search
// order: working directory first, then ~/.config/gitfleet. Empty when none
// exists.
func FindReposFile() string {
	for _, path := range searchPaths("repos.yml", "repos.yaml", "repos.yml", "repos.yaml") {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadTrackedRepos reads the tracked-repos list. Relative entry paths are
// resolved against a prefix; the --prefix flag wins over the machine-local
// override file, which wins over the prefix declared in the file itself.
func LoadTrackedRepos(path, prefixFlag string) ([]model.TrackedRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repos file: %w", err)
	}

	var raw reposFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse repos file: %w", err)
	}

	prefix, err := resolvePrefix(path, prefixFlag, raw.Prefix)
	if err != nil {
		return nil, err
	}

	repos := make([]model.TrackedRepo, 0, len(raw.Repos))
	for i, entry := range raw.Repos {
		repo, err := entry.resolve(prefix)
		if err != nil {
			return nil, fmt.Errorf("repos[%d]: %w", i, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (e trackedRepoEntry) resolve(prefix string) (model.TrackedRepo, error) {
	if e.Path == "" {
		return model.TrackedRepo{}, fmt.Errorf("path required")
	}
	if e.Remote == "" {
		return model.TrackedRepo{}, fmt.Errorf("remote required")
	}

	branch := e.Branch
	if branch == "" {
		branch = "main"
	}

	path := e.Path
	if !strings.HasPrefix(path, "~") && !filepath.IsAbs(path) && prefix != "" {
		path = filepath.Join(prefix, path)
	}

	return model.TrackedRepo{
		Path:   ExpandPath(path),
		Remote: e.Remote,
		Branch: branch,
		Ignore: e.Ignore,
	}, nil
}

func resolvePrefix(reposPath, flag, declared string) (string, error) {
	if flag != "" {
		return ExpandPath(flag), nil
	}
	local, err := loadLocalPrefix(localOverridePath(reposPath))
	if err != nil {
		return "", err
	}
	if local != "" {
		return ExpandPath(local), nil
	}
	if declared != "" {
		return ExpandPath(declared), nil
	}
	return "", nil
}

// localOverridePath derives repos.local.yml from repos.yml.
func localOverridePath(reposPath string) string {
	ext := filepath.Ext(reposPath)
	return strings.TrimSuffix(reposPath, ext) + ".local" + ext
}

func loadLocalPrefix(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read local override: %w", err)
	}
	var o localOverride
	if err := yaml.Unmarshal(data, &o); err != nil {
		return "", fmt.Errorf("parse local override %s: %w", path, err)
	}
	return o.Prefix, nil
}
