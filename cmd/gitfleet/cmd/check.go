package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcin-skalski/gitfleet/internal/config"
	"github.com/marcin-skalski/gitfleet/internal/logging"
	"github.com/marcin-skalski/gitfleet/internal/model"
	"github.com/marcin-skalski/gitfleet/internal/report"
	"github.com/marcin-skalski/gitfleet/internal/scan"
)

var checkCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Analyze a single repository",
	Long: `Analyzes one repository and prints its status. Works without a config
file, which makes it usable from scripts and hooks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigOrDefault()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer logging.CloseFile()

		path := config.ExpandPath(args[0])
		if !scan.IsRepoRoot(path) {
			return fmt.Errorf("not a git repository: %s", path)
		}

		analyzer, _ := newAnalyzer(cfg, logger)
		snap := analyzer.AnalyzeRepo(cmd.Context(), path)

		r := report.New(os.Stdout, reporterOptions(cfg))
		r.Table([]model.Snapshot{snap})
		if len(snap.Warnings) > 0 {
			r.Warnings([]model.Snapshot{snap})
		}

		if snap.Status == model.StatusError {
			return fmt.Errorf("analyze %s: %s", path, snap.ErrorMessage)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
