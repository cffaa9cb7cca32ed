package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jsphweid/saxchart/model"
	"github.com/jsphweid/saxchart/payload"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type outputs struct {
	payloadPath string
	midiPath    string
}

var convertOut outputs

func init() {
	rootCmd.AddCommand(convertCmd)
	addOutputFlags(convertCmd, &convertOut)
	convertCmd.Flags().IntVarP(&cfg.TransposeSemitones, "transpose", "t", cfg.TransposeSemitones, "semitones from written to sounding pitch")
	convertCmd.Flags().Float64Var(&cfg.DefaultQPM, "qpm", cfg.DefaultQPM, "tempo used when the score has none")
}

func addOutputFlags(cmd *cobra.Command, out *outputs) {
	cmd.Flags().StringVarP(&out.payloadPath, "out", "o", "", "write the payload JSON here instead of stdout")
	cmd.Flags().StringVar(&out.midiPath, "midi", "", "also write the MIDI rendition to this path")
}

var convertCmd = &cobra.Command{
	Use:   "convert <score.musicxml|score.mxl>",
	Short: "Converts one score to a payload",
	Long:  `Converts one score to the same JSON payload POST /api/parse returns.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := convert(args[0])
		if err != nil {
			return err
		}
		return writeOutputs(p, convertOut)
	},
}

func convert(path string) (*model.Payload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := payload.FromMusicXML(raw, payload.Options{
		TransposeSemitones: cfg.TransposeSemitones,
		DefaultQPM:         cfg.DefaultQPM,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return p, nil
}

func writeOutputs(p *model.Payload, out outputs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	if out.payloadPath == "" {
		fmt.Println(string(data))
	} else if err := os.WriteFile(out.payloadPath, data, 0644); err != nil {
		return err
	}

	if out.midiPath != "" {
		smf, err := base64.StdEncoding.DecodeString(p.MidiBase64)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.midiPath, smf, 0644); err != nil {
			return err
		}
	}

	for _, w := range p.Metadata.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}
