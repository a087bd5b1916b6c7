package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcin-skalski/gitfleet/internal/logging"
	"github.com/marcin-skalski/gitfleet/internal/tui"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard that rescans on an interval",
	Long: `Runs a full-screen dashboard that rescans the fleet periodically. Watch
mode never pulls; it only observes. Press r to rescan immediately and q to
quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Logs must not write to the terminal while the dashboard owns it.
		logger, err := newLogger(cfg, true)
		if err != nil {
			return err
		}
		defer logging.CloseFile()

		interval := cfg.Watch.Interval
		if watchInterval > 0 {
			interval = watchInterval
		}

		analyzer, _ := newAnalyzer(cfg, logger)
		watcher := tui.NewWatcher(analyzer, interval, logger)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go watcher.Run(ctx)

		p := tea.NewProgram(tui.NewModel(watcher), tea.WithAltScreen())

		// A signal from outside the terminal should also stop the dashboard.
		go func() {
			<-ctx.Done()
			p.Quit()
		}()

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "rescan interval (overrides config)")
	rootCmd.AddCommand(watchCmd)
}
