package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board/jsonboard"
)

var convertCmd = &cobra.Command{
	Use:   "convert <board_file> <output.json>",
	Short: "Write a board in the JSON export format",
	Long: `Load a board (KiCad or JSON) and write its netted copper as JSON,
coordinates in mils.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	b, err := loadBoard(args[0])
	if err != nil {
		return fmt.Errorf("error loading board: %w", err)
	}
	if err := jsonboard.WriteFile(args[1], b); err != nil {
		return err
	}

	st := b.Stats()
	fmt.Printf("✓ Wrote %s: %d pads, %d tracks, %d arcs, %d vias\n",
		args[1], st.Pads, st.Tracks, st.Arcs, st.Vias)
	return nil
}
