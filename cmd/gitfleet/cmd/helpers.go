package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/marcin-skalski/gitfleet/internal/analyze"
	"github.com/marcin-skalski/gitfleet/internal/config"
	"github.com/marcin-skalski/gitfleet/internal/git"
	"github.com/marcin-skalski/gitfleet/internal/logging"
	"github.com/marcin-skalski/gitfleet/internal/report"
	"github.com/marcin-skalski/gitfleet/internal/scan"
)

// loadConfig resolves and loads the config file. Commands that need scan
// paths use this; without a config there is no fleet to scan.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Find()
	}
	if path == "" {
		return nil, fmt.Errorf("no config file found; create one with 'gitfleet init' or pass --config")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	return cfg, nil
}

// loadConfigOrDefault is for commands that work without a config file,
// such as checking a single repository.
func loadConfigOrDefault() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Find()
	}
	if path == "" {
		cfg := config.Default()
		applyFlags(cfg)
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	return cfg, nil
}

// applyFlags folds the global output flags into the loaded config. Flags
// win over file settings.
func applyFlags(cfg *config.Config) {
	if quiet {
		cfg.Output.Verbosity = "quiet"
	} else if verbose {
		cfg.Output.Verbosity = "verbose"
	}
}

func newLogger(cfg *config.Config, fileOnly bool) (*slog.Logger, error) {
	return logging.Setup(cfg.LogFile, cfg.Log.Level, fileOnly)
}

// reporterOptions derives terminal output settings: color only when the
// config allows it, stdout is a terminal, and nothing disables it.
func reporterOptions(cfg *config.Config) report.Options {
	color := cfg.Output.ColorEnabled() &&
		!noColor &&
		os.Getenv("NO_COLOR") == "" &&
		isatty.IsTerminal(os.Stdout.Fd())

	return report.Options{
		ShowClean: cfg.Output.ShowCleanEnabled(),
		Color:     color,
		Verbosity: cfg.Output.Verbosity,
	}
}

func newAnalyzer(cfg *config.Config, logger *slog.Logger) (*analyze.Analyzer, *git.Client) {
	gitClient := git.NewClient(logger)
	scanner := scan.New(cfg.ExcludePatterns, cfg.ExcludePaths, logger)
	return analyze.New(gitClient, scanner, cfg, logger), gitClient
}
