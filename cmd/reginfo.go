package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"dialog-collator/core/logger"
	"dialog-collator/feature/reginfo"

	"github.com/spf13/cobra"
)

// reginfoCmd represents the reginfo command
var reginfoCmd = &cobra.Command{
	Use:   "reginfo [file]",
	Short: "Parse a registration event document and print the subscriptions it yields",
	Long:  `Dry run of the reg-event NOTIFY handling. Reads the document from file, or stdin when file is "-".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			body []byte
			err  error
		)
		if args[0] == "-" {
			body, err = io.ReadAll(cmd.InOrStdin())
		} else {
			body, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		level, _ := cmd.Flags().GetString("log-level")
		logg, err := logger.New(&logger.Config{Level: level, Format: "console"})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		parser := reginfo.NewParser(logg, nil)
		doc, err := parser.Parse(body)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"registrations": doc.Registrations,
			"intents":       parser.Intents(doc),
		})
	},
}

func init() {
	reginfoCmd.Flags().String("log-level", "warn", "Log level for skipped elements")
	RootCmd.AddCommand(reginfoCmd)
}
