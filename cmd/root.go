package cmd

import (
	"fmt"
	"os"

	"dialog-collator/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dialog-collator",
	Short: "Presence dialog collator",
	Long: `dialog-collator keeps dialog state subscriptions alive for every presence
watcher, collates the dialog notifications it receives and publishes the
aggregated documents back to the presence server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with ISO8601 timestamps, the command may have failed
		// before its own logger existed
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
