package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/marcin-skalski/gitfleet/internal/config"
)

func TestInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitfleet.yml")

	if err := initCmd.RunE(initCmd, []string{path}); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("template is not valid YAML: %v", err)
	}
	if out["scan_paths"] == nil {
		t.Error("template should contain scan_paths")
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitfleet.yml")

	if err := os.WriteFile(path, []byte("scan_paths: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := initCmd.RunE(initCmd, []string{path})
	if err == nil {
		t.Fatal("expected error when file exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error should mention 'already exists': %v", err)
	}
}

func TestInitCreatedConfigLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitfleet.yml")

	if err := initCmd.RunE(initCmd, []string{path}); err != nil {
		t.Fatalf("init: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("created config does not load: %v", err)
	}
	if len(cfg.ScanPaths) == 0 {
		t.Error("created config should declare scan paths")
	}
}

func TestSyncInitCreatesReposFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repos.yml")

	oldInit, oldPath := syncInit, syncReposPath
	syncInit = true
	syncReposPath = path
	defer func() { syncInit, syncReposPath = oldInit, oldPath }()

	if err := syncCmd.RunE(syncCmd, nil); err != nil {
		t.Fatalf("sync --init: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("repos file not created: %v", err)
	}

	if err := syncCmd.RunE(syncCmd, nil); err == nil {
		t.Fatal("expected error when repos file exists")
	}
}
