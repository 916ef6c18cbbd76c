package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vobble/studio/internal/episode"
)

var (
	generateConfig string
	generateOut    string

	generateCmd = &cobra.Command{
		Use:   "generate SCRIPT",
		Short: "Generate the full episode and per-character stems",
		Long: "Generate parses the script, synthesizes or retrieves every line's\n" +
			"audio using the voices in the episode config, mixes them onto one\n" +
			"timeline and writes a ZIP containing the full mix and one stem per\n" +
			"character. API keys are read from ELEVEN_API_KEY and HUME_API_KEY.",
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
)

func init() {
	generateCmd.Flags().StringVarP(&generateConfig, "config", "c", "episode.yaml", "episode configuration file")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "episode_and_stems.zip", "output archive path")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	cfg, err := episode.LoadConfig(generateConfig)
	if err != nil {
		return err
	}
	creds, err := episode.LoadCredentials()
	if err != nil {
		return err
	}

	gen, err := episode.NewGenerator(cfg, creds)
	if err != nil {
		return err
	}

	_, err = gen.Run(cmd.Context(), string(raw), generateOut)
	return err
}
