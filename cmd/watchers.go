package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"dialog-collator/core/config"
	"dialog-collator/core/logger"
	"dialog-collator/feature/watchers"

	"github.com/spf13/cobra"
)

// watchersCmd represents the watchers command
var watchersCmd = &cobra.Command{
	Use:   "watchers",
	Short: "Print the distinct watchers the next pass would visit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		list, err := watchers.NewSource(cfg.Database, nil, logg).Fetch(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		for _, w := range list {
			fmt.Printf("%s@%s\t%s\n", w.User, w.Domain, w.PresentityURI)
		}
		fmt.Printf("%d watcher(s)\n", len(list))
		return nil
	},
}

func init() {
	watchersCmd.Flags().Bool("json", false, "Output as JSON")
	RootCmd.AddCommand(watchersCmd)
}
