// Package main provides the entry point for the Vobble Studio CLI.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	debug bool

	rootCmd = &cobra.Command{
		Use:   "vobble-studio",
		Short: "Assemble multi-character audio episodes from plain-text scripts",
		Long: "vobble-studio turns a plain-text script into a finished audio episode:\n" +
			"each speaker gets a synthesized or pre-recorded voice, every line becomes\n" +
			"a clip, and the clips are mixed into a full episode plus per-character\n" +
			"stem tracks with consistent pacing.",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(generateCmd, charactersCmd, takesCmd)
}
