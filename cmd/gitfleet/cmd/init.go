package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcin-skalski/gitfleet/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter config file",
	Long: `Creates a commented gitfleet.yml in the current directory (or at the given
path) with the default scan, auto-pull, and output settings spelled out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "gitfleet.yml"
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.CreateDefault(path); err != nil {
			return err
		}

		fmt.Printf("Created config file: %s\n", path)
		fmt.Println("Edit scan_paths to point at the directories holding your repositories.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
