package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"
)

const (
	watchPollInterval = 250 * time.Millisecond
	watchQuietPeriod  = 500 * time.Millisecond
)

var watchOut outputs

func init() {
	rootCmd.AddCommand(watchCmd)
	addOutputFlags(watchCmd, &watchOut)
}

var watchCmd = &cobra.Command{
	Use:   "watch <score>",
	Short: "Reconverts a score whenever it changes",
	Long: `Watches a score file and reconverts it once edits settle. Stop with
Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return watch(ctx, args[0], func() { reconvert(args[0]) })
	},
}

func reconvert(path string) {
	p, err := convert(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if err := writeOutputs(p, watchOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %d events at %g qpm\n", path, len(p.Events), p.Metadata.QPM)
}

// watch calls onChange once up front and then once per burst of
// modifications to path until ctx is done.
func watch(ctx context.Context, path string, onChange func()) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	onChange()

	debounced := debounce.New(watchQuietPeriod)
	lastMod, lastSize := info.ModTime(), info.Size()

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				// editors often replace the file; try again next tick
				continue
			}
			if info.ModTime().Equal(lastMod) && info.Size() == lastSize {
				continue
			}
			lastMod, lastSize = info.ModTime(), info.Size()
			debounced(onChange)
		}
	}
}
