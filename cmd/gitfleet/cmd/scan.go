package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marcin-skalski/gitfleet/internal/config"
	"github.com/marcin-skalski/gitfleet/internal/github"
	"github.com/marcin-skalski/gitfleet/internal/logging"
	"github.com/marcin-skalski/gitfleet/internal/report"
)

type scanOptions struct {
	noPull       bool
	warningsOnly bool
	ci           bool
	jsonOut      bool
}

var scanOpts scanOptions

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan directory trees and report repository status",
	Long: `Walks the configured scan paths (or the given paths), analyzes every git
repository found, and prints a status table. Repositories that are cleanly
behind their upstream are fast-forwarded unless auto-pull is disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args, scanOpts)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanOpts.noPull, "no-pull", false, "skip auto-pull even if enabled in config")
	scanCmd.Flags().BoolVarP(&scanOpts.warningsOnly, "warnings-only", "w", false, "show only repositories with warnings or problems")
	scanCmd.Flags().BoolVar(&scanOpts.ci, "ci", false, "annotate GitHub repositories with CI status")
	scanCmd.Flags().BoolVar(&scanOpts.jsonOut, "json", false, "print the scan result as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string, opts scanOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		paths := make([]string, len(args))
		for i, arg := range args {
			paths[i] = config.ExpandPath(arg)
		}
		cfg.ScanPaths = paths
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logging.CloseFile()

	analyzer, gitClient := newAnalyzer(cfg, logger)

	autoPull := cfg.AutoPull.Policy().Enabled && !opts.noPull
	result := analyzer.ScanAndAnalyze(cmd.Context(), autoPull)

	if opts.ci {
		github.NewClient(gitClient, logger).Annotate(cmd.Context(), result.Repos)
	}

	if opts.jsonOut {
		return report.WriteJSON(os.Stdout, result)
	}

	ropts := reporterOptions(cfg)
	if opts.warningsOnly {
		ropts.ShowClean = false
	}
	report.New(os.Stdout, ropts).Results(result)
	return nil
}
