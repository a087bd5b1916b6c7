package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadTrackedRepos(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repos.yml")
	writeFile(t, path, `
repos:
  - path: /srv/repos/alpha
    remote: git@github.com:acme/alpha.git
    branch: develop
  - path: /srv/repos/beta
    remote: https://github.com/acme/beta.git
  - path: /srv/repos/gamma
    remote: git@github.com:acme/gamma.git
    ignore: true
`)

	repos, err := LoadTrackedRepos(path, "")
	if err != nil {
		t.Fatalf("LoadTrackedRepos: %v", err)
	}
	if len(repos) != 3 {
		t.Fatalf("got %d repos, want 3", len(repos))
	}

	if repos[0].Branch != "develop" {
		t.Errorf("repos[0].Branch = %q", repos[0].Branch)
	}
	if repos[1].Branch != "main" {
		t.Errorf("repos[1].Branch = %q, want default main", repos[1].Branch)
	}
	if repos[0].Ignore || repos[1].Ignore {
		t.Error("ignore should default to false")
	}
	if !repos[2].Ignore {
		t.Error("repos[2].Ignore = false, want true")
	}
}

func TestTrackedReposPrefix(t *testing.T) {
	home, _ := os.UserHomeDir()
	path := filepath.Join(t.TempDir(), "repos.yml")
	writeFile(t, path, `
prefix: /srv/code
repos:
  - path: alpha
    remote: git@github.com:acme/alpha.git
  - path: /opt/beta
    remote: git@github.com:acme/beta.git
  - path: ~/gamma
    remote: git@github.com:acme/gamma.git
`)

	repos, err := LoadTrackedRepos(path, "")
	if err != nil {
		t.Fatalf("LoadTrackedRepos: %v", err)
	}

	if got, want := repos[0].Path, "/srv/code/alpha"; got != want {
		t.Errorf("relative path = %q, want %q", got, want)
	}
	if repos[1].Path != "/opt/beta" {
		t.Errorf("absolute path changed: %q", repos[1].Path)
	}
	if got, want := repos[2].Path, filepath.Join(home, "gamma"); got != want {
		t.Errorf("home path = %q, want %q", got, want)
	}
}

func TestTrackedReposPrefixPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repos.yml")
	writeFile(t, path, `
prefix: /from/file
repos:
  - path: alpha
    remote: git@github.com:acme/alpha.git
`)

	// File prefix alone.
	repos, err := LoadTrackedRepos(path, "")
	if err != nil {
		t.Fatalf("LoadTrackedRepos: %v", err)
	}
	if repos[0].Path != "/from/file/alpha" {
		t.Errorf("path = %q, want file prefix applied", repos[0].Path)
	}

	// The local override beats the file.
	writeFile(t, filepath.Join(dir, "repos.local.yml"), "prefix: /from/local\n")
	repos, err = LoadTrackedRepos(path, "")
	if err != nil {
		t.Fatalf("LoadTrackedRepos: %v", err)
	}
	if repos[0].Path != "/from/local/alpha" {
		t.Errorf("path = %q, want local override applied", repos[0].Path)
	}

	// The flag beats both.
	repos, err = LoadTrackedRepos(path, "/from/flag")
	if err != nil {
		t.Fatalf("LoadTrackedRepos: %v", err)
	}
	if repos[0].Path != "/from/flag/alpha" {
		t.Errorf("path = %q, want flag prefix applied", repos[0].Path)
	}
}

func TestTrackedReposMalformedLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repos.yml")
	writeFile(t, path, "repos:\n  - path: /srv/a\n    remote: r\n")
	writeFile(t, filepath.Join(dir, "repos.local.yml"), "prefix: [broken\n")

	_, err := LoadTrackedRepos(path, "")
	if err == nil || !strings.Contains(err.Error(), "local override") {
		t.Errorf("err = %v, want local override parse error", err)
	}
}

func TestTrackedReposValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing path",
			content: "repos:\n  - remote: git@github.com:acme/a.git\n",
			wantErr: "path required",
		},
		{
			name:    "missing remote",
			content: "repos:\n  - path: /srv/a\n",
			wantErr: "remote required",
		},
		{
			name:    "bad yaml",
			content: "repos: [",
			wantErr: "parse repos file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "repos.yml")
			writeFile(t, path, tt.content)
			_, err := LoadTrackedRepos(path, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestTrackedReposEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repos.yml")
	writeFile(t, path, "repos: []\n")

	repos, err := LoadTrackedRepos(path, "")
	if err != nil {
		t.Fatalf("LoadTrackedRepos: %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("got %d repos, want 0", len(repos))
	}
}

func TestLoadTrackedReposMissingFile(t *testing.T) {
	_, err := LoadTrackedRepos(filepath.Join(t.TempDir(), "repos.yml"), "")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFindReposFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))

	if got := FindReposFile(); got != "" {
		t.Fatalf("FindReposFile in empty dir = %q, want empty", got)
	}

	writeFile(t, filepath.Join(dir, "repos.yml"), "repos: []\n")
	if got := FindReposFile(); got != "repos.yml" {
		t.Errorf("FindReposFile = %q, want repos.yml", got)
	}
}

func TestCreateReposFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repos.yml")

	if err := CreateReposFile(path); err != nil {
		t.Fatalf("CreateReposFile: %v", err)
	}

	repos, err := LoadTrackedRepos(path, "")
	if err != nil {
		t.Fatalf("created template does not load: %v", err)
	}
	if len(repos) != 0 {
		t.Errorf("template should define no repos, got %d", len(repos))
	}

	err = CreateReposFile(path)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second CreateReposFile = %v, want already-exists error", err)
	}
}
