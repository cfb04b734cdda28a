package cmd

import (
	"fmt"

	"dialog-collator/core/config"
	"dialog-collator/core/logger"
	"dialog-collator/feature/sharedline"

	"github.com/spf13/cobra"
)

// sharedlineCmd represents the sharedline command
var sharedlineCmd = &cobra.Command{
	Use:   "sharedline",
	Short: "Inspect shared-line users",
}

var sharedlineUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every valid shared-line user",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sharedlineStore()
		if err != nil {
			return err
		}
		users, err := store.Users(cmd.Context())
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}

var sharedlineCheckCmd = &cobra.Command{
	Use:   "check [uri]",
	Short: "Report whether a user is a shared-line user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sharedlineStore()
		if err != nil {
			return err
		}
		shared, err := store.IsSharedLineUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tshared=%t\n", args[0], shared)
		return nil
	},
}

func sharedlineStore() (*sharedline.Store, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return sharedline.NewStore(cfg.Database, nil, logg), nil
}

func init() {
	sharedlineCmd.AddCommand(sharedlineUsersCmd, sharedlineCheckCmd)
	RootCmd.AddCommand(sharedlineCmd)
}
