// Package cli implements the otd command tree.
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	silent  bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

var rootCmd = &cobra.Command{
	Use:   "otd",
	Short: "OpenTraceDraw - Pretty drawings of KiCad boards",
	Long: `OpenTraceDraw (otd) renders KiCad PCB files into presentation-ready
drawings using SVG component artwork libraries.

Examples:
  otd draw board.kicad_pcb board.svg            # Draw the front side
  otd draw --side back --mirror board.kicad_pcb back.png
  otd draw --highlight R1,C3 board.kicad_pcb marked.svg
  otd sexp board.kicad_pcb                      # Inspect the board file`,
	Version:       "0.9.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case silent:
			logger.SetLevel(log.ErrorLevel)
		case verbose:
			logger.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "only report errors")
}
