package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcin-skalski/gitfleet/internal/config"
	"github.com/marcin-skalski/gitfleet/internal/fleet"
	"github.com/marcin-skalski/gitfleet/internal/git"
	"github.com/marcin-skalski/gitfleet/internal/logging"
	"github.com/marcin-skalski/gitfleet/internal/report"
)

var (
	syncReposPath string
	syncInit      bool
	syncNoPull    bool
	syncPrefix    string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Clone and update the tracked repository list",
	Long: `Reads the tracked repository list and reconciles the filesystem against
it: missing repositories are cloned, existing ones are pulled. Entries
marked ignore are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncInit {
			path := syncReposPath
			if path == "" {
				path = "repos.yml"
			}
			if err := config.CreateReposFile(path); err != nil {
				return err
			}
			fmt.Printf("Created repos file: %s\n", path)
			return nil
		}

		cfg, err := loadConfigOrDefault()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg, false)
		if err != nil {
			return err
		}
		defer logging.CloseFile()

		path := syncReposPath
		if path == "" {
			path = config.FindReposFile()
		}
		if path == "" {
			return fmt.Errorf("no repos file found; create one with 'gitfleet sync --init' or pass --repos")
		}

		repos, err := config.LoadTrackedRepos(path, syncPrefix)
		if err != nil {
			return err
		}

		if !quiet {
			fmt.Printf("Syncing %d tracked repositories...\n\n", len(repos))
		}

		result := fleet.New(git.NewClient(logger), logger).SyncAll(cmd.Context(), repos, !syncNoPull)

		report.New(os.Stdout, reporterOptions(cfg)).SyncResults(result)

		if result.Errors > 0 {
			return fmt.Errorf("%d repositories failed to sync", result.Errors)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVarP(&syncReposPath, "repos", "r", "", "path to the tracked repos file")
	syncCmd.Flags().BoolVar(&syncInit, "init", false, "create a starter repos file and exit")
	syncCmd.Flags().BoolVar(&syncNoPull, "no-pull", false, "clone missing repositories but do not pull existing ones")
	syncCmd.Flags().StringVar(&syncPrefix, "prefix", "", "base directory for relative repo paths")
	rootCmd.AddCommand(syncCmd)
}
