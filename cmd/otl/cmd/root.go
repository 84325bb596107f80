package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "otl",
	Short: "OpenTraceLength - PCB trace length and connectivity analysis",
	Long: `OpenTraceLength (otl) measures the copper between pads of a PCB.

Boards are read from KiCad (.kicad_pcb) files or from the JSON export
format (components, tracks, arcs and vias in mils).

Examples:
  otl nets board.kicad_pcb                        # List nets
  otl nets board.json AVDD                        # Components on a net
  otl path board.json AVDD U1.20 C3.2             # Resolve one path
  otl critical board.json PHC --pairs U1.62:R29.1 # Rank pad pairs
  otl islands board.json GND                      # Explain a broken net`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
}
