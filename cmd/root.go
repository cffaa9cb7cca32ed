package cmd

import (
	"github.com/jsphweid/saxchart/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cfg is loaded before flags are registered so flag defaults come from the
// environment
var cfg = loadConfig()

func loadConfig() *config.Config {
	// .env is optional
	_ = godotenv.Load()
	return config.Load()
}

// Config returns the configuration commands run with
func Config() *config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "saxchart",
	Short: "MusicXML to alto sax fingering charts",
	Long: `saxchart turns a MusicXML melody into timed note events, an alto sax
fingering for every event and a playable MIDI rendition.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
