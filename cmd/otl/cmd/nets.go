package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/trace"
)

var netsCmd = &cobra.Command{
	Use:   "nets <board_file> [net_name]",
	Short: "Show board net information",
	Long: `Display information about the nets of a board.

Without net_name: Lists all nets with component/pad/track/arc/via counts
With net_name: Lists the components and pads on that net`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)
}

func runNets(cmd *cobra.Command, args []string) error {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) >= 2 {
		return showNetDetails(s, args[1])
	}
	return listAllNets(s)
}

func listAllNets(s *trace.Session) error {
	summaries := s.Index.Summaries()
	if jsonOutput {
		return printJSON(summaries)
	}

	fmt.Printf("Board %s: %d nets\n\n", s.Board.Name, len(summaries))
	fmt.Printf("%-30s %6s %6s %6s %6s %6s\n", "Net Name", "Comps", "Pads", "Tracks", "Arcs", "Vias")
	fmt.Println(rule)
	for _, n := range summaries {
		fmt.Printf("%-30s %6d %6d %6d %6d %6d\n",
			n.Name, n.Components, n.Pads, n.Tracks, n.Arcs, n.Vias)
	}
	return nil
}

func showNetDetails(s *trace.Session, net string) error {
	summary, err := s.Index.Summary(net)
	if err != nil {
		return err
	}
	components, err := s.Index.Components(net)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(struct {
			Summary    any `json:"summary"`
			Components any `json:"components"`
		}{summary, components})
	}

	fmt.Printf("Net: %s (%d objects)\n\n", summary.Name, summary.Objects)
	fmt.Printf("Components (%d):\n", len(components))
	for _, c := range components {
		fmt.Printf("  %-10s pads %v\n", c.Designator, c.Pads)
	}
	fmt.Printf("\nTracks: %d  Arcs: %d  Vias: %d\n", summary.Tracks, summary.Arcs, summary.Vias)
	return nil
}
