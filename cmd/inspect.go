package cmd

import (
	"fmt"

	"github.com/jsphweid/saxchart/midi"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a MIDI file",
	Long:  `Prints the tempo, meter and notes of a MIDI file, e.g. one written by convert --midi.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	s, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	summary := midi.Summarize(s)
	fmt.Printf("resolution: %v ticks per quarter\n", summary.Resolution)
	fmt.Printf("tempo: %.2f qpm\n", summary.QPM)
	fmt.Printf("meter: %d/%d\n", summary.Numerator, summary.Denominator)
	fmt.Printf("notes: %d\n", len(summary.Notes))
	for _, n := range summary.Notes {
		fmt.Printf("key: %v start: %v end: %v\n", n.Key, n.StartTick, n.EndTick)
	}
	return nil
}
