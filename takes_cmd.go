package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vobble/studio/internal/audio"
)

var (
	takesMinSilence  time.Duration
	takesThresholdDb float64
	takesKeepSilence time.Duration

	takesCmd = &cobra.Command{
		Use:   "takes RECORDING",
		Short: "Preview how a recording splits into takes",
		Long: "Takes segments a recorded file (.wav or .mp3) at silences and\n" +
			"prints each detected take with its duration, so the silence\n" +
			"thresholds can be tuned before generating an episode.",
		Args: cobra.ExactArgs(1),
		RunE: runTakes,
	}
)

func init() {
	takesCmd.Flags().DurationVar(&takesMinSilence, "min-silence", audio.DefaultMinSilence, "minimum silence that splits takes")
	takesCmd.Flags().Float64Var(&takesThresholdDb, "threshold-db", audio.DefaultThresholdDb, "silence threshold (dBFS)")
	takesCmd.Flags().DurationVar(&takesKeepSilence, "keep-silence", audio.DefaultKeepSilence, "silence kept around each take")
}

func runTakes(cmd *cobra.Command, args []string) error {
	rec, err := audio.DecodeFile(args[0], audio.SampleRate)
	if err != nil {
		return err
	}

	takes := audio.SplitTakes(rec, audio.SegmentOptions{
		MinSilence:  takesMinSilence,
		ThresholdDb: takesThresholdDb,
		KeepSilence: takesKeepSilence,
	})
	if len(takes) == 0 {
		return fmt.Errorf("no usable takes detected; try a higher threshold or shorter min-silence")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "detected %d takes in %s (%s)\n", len(takes), args[0], rec.Duration().Round(time.Millisecond))
	for i, take := range takes {
		fmt.Fprintf(out, "  take %d: %s\n", i+1, take.Duration().Round(time.Millisecond))
	}
	return nil
}
