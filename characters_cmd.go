package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vobble/studio/internal/script"
)

var charactersCmd = &cobra.Command{
	Use:   "characters SCRIPT",
	Short: "List the characters detected in a script",
	Long: "Characters parses the script and prints the distinct speakers it\n" +
		"found, in sorted order, so an episode config can be prepared for them.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}

		events := script.NewParser().Parse(string(raw))
		if len(events) == 0 {
			return fmt.Errorf("no dialogue detected in script")
		}

		for _, ch := range script.DetectCharacters(events) {
			fmt.Fprintln(cmd.OutOrStdout(), ch)
		}
		return nil
	},
}
