package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jsphweid/saxchart/fingering"
	"github.com/jsphweid/saxchart/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var reportTablePath string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportTablePath, "table", "", "report on this YAML table instead of the built-in alto table")
}

var reportCmd = &cobra.Command{
	Use:   "report [score]",
	Short: "Creates a fingering coverage report",
	Long: `Reports which written pitches the fingering table covers and how often
each key is used. With a score, also reports the score's pitches the table
cannot finger.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(reportTablePath)
		if err != nil {
			return err
		}
		r := analyzeTable(table)
		printReport(r)

		if len(args) == 1 {
			return reportScore(table, args[0])
		}
		return nil
	},
}

// loadTable reads a YAML table, or returns the built-in alto table for "".
func loadTable(path string) (*fingering.Table, error) {
	if path == "" {
		return fingering.Alto(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading fingering table")
	}
	table, err := fingering.ParseTable(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return table, nil
}

type registerReport struct {
	name    string
	lowest  int
	highest int
	covered int
}

type tableReport struct {
	instrument   string
	numEntries   int
	lowest       int
	highest      int
	gaps         []int
	registers    []registerReport
	unregistered []int
	keyUsage     map[string]int
	unusedKeys   []string
}

func analyzeTable(table *fingering.Table) tableReport {
	report := tableReport{
		instrument: table.Instrument,
		numEntries: len(table.Entries()),
		keyUsage:   map[string]int{},
	}
	report.lowest, report.highest = table.Range()

	for midi := report.lowest; midi <= report.highest && report.numEntries > 0; midi++ {
		if !table.IsSupported(midi) {
			report.gaps = append(report.gaps, midi)
		}
	}
	for _, r := range table.Registers() {
		rr := registerReport{name: r.Name, lowest: r.Lowest, highest: r.Highest}
		for midi := r.Lowest; midi <= r.Highest; midi++ {
			if table.IsSupported(midi) {
				rr.covered++
			}
		}
		report.registers = append(report.registers, rr)
	}
	for _, e := range table.Entries() {
		if table.Register(e.MIDI) == "" {
			report.unregistered = append(report.unregistered, e.MIDI)
		}
		for _, k := range e.Pressed {
			report.keyUsage[k]++
		}
	}
	for _, k := range table.Keys() {
		if report.keyUsage[k] == 0 {
			report.unusedKeys = append(report.unusedKeys, k)
		}
	}
	return report
}

func printReport(r tableReport) {
	fmt.Printf("instrument: %v\n", r.instrument)
	fmt.Printf("entries: %v\n", r.numEntries)
	fmt.Printf("written range: %v..%v\n", r.lowest, r.highest)
	fmt.Printf("gaps in range: %v\n", r.gaps)
	for _, rr := range r.registers {
		fmt.Printf("register %-8s %v..%v: %v of %v pitches fingered\n",
			rr.name, rr.lowest, rr.highest, rr.covered, rr.highest-rr.lowest+1)
	}
	if len(r.unregistered) > 0 {
		fmt.Printf("outside every register: %v\n", r.unregistered)
	}
	for _, k := range util.GetKeysSorted(r.keyUsage) {
		fmt.Printf("key %-10s pressed in %v fingerings\n", k, r.keyUsage[k])
	}
	if len(r.unusedKeys) > 0 {
		fmt.Printf("never pressed: %v\n", strings.Join(r.unusedKeys, ", "))
	}
}

func reportScore(table *fingering.Table, path string) error {
	p, err := convert(path)
	if err != nil {
		return err
	}
	written := make([]int, 0, len(p.Events))
	for _, ev := range p.Events {
		written = append(written, ev.WrittenMIDI)
	}
	fmt.Printf("score events: %v\n", len(p.Events))
	fmt.Printf("distinct written pitches: %v\n", util.SortedUnique(written))
	if w := table.UnsupportedWarning(written); w != "" {
		fmt.Println(w)
	} else {
		fmt.Println("every pitch has a fingering")
	}
	return nil
}
