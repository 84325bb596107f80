package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/trace"
)

var pathCmd = &cobra.Command{
	Use:   "path <board_file> <net_name> <start_pad> <end_pad>",
	Short: "Resolve the copper path between two pads",
	Long: `Find the shortest copper path between two pads of a net.

Pads are written DESIGNATOR.NUMBER, e.g. U1.20. An empty net name ("")
takes the net of the start pad. Strategies are tried in priority order
until one connects the pads.`,
	Args: cobra.ExactArgs(4),
	RunE: runPath,
}

func init() {
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) error {
	start, err := board.ParsePadRef(args[2])
	if err != nil {
		return err
	}
	end, err := board.ParsePadRef(args[3])
	if err != nil {
		return err
	}

	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Resolver.Resolve(args[1], start, end)
	if err != nil {
		var np *trace.NoPathError
		if errors.As(err, &np) {
			return printNoPath(np)
		}
		return err
	}

	if jsonOutput {
		return printJSON(res)
	}
	printResolution(res)
	return nil
}

// noPathReport is the JSON form of an unconnected pad pair.
type noPathReport struct {
	Net      string          `json:"net_name"`
	Start    board.PadKey    `json:"start"`
	End      board.PadKey    `json:"end"`
	NoPath   bool            `json:"no_path"`
	Attempts []trace.Attempt `json:"attempts"`
}

// printNoPath reports pads that no strategy could connect. This is a
// result, not a command failure.
func printNoPath(np *trace.NoPathError) error {
	if jsonOutput {
		return printJSON(noPathReport{
			Net:      np.Net,
			Start:    np.Start,
			End:      np.End,
			NoPath:   true,
			Attempts: np.Attempts,
		})
	}

	fmt.Printf("No path found from %s to %s on net %s\n\n", np.Start, np.End, np.Net)
	for _, a := range np.Attempts {
		fmt.Printf("  %-10s %s\n", a.Strategy, a.Message)
	}
	return nil
}

func printResolution(res *trace.Resolution) {
	fmt.Println(res.Description)
	fmt.Printf("Net: %s  Strategy: %s  Length: %.5f mm (%.3f mil)\n\n",
		res.Net, res.Strategy, res.LengthMM, res.LengthMils)
	for _, a := range res.Attempts {
		fmt.Printf("  (%s strategy found no path)\n", a.Strategy)
	}

	fmt.Printf("%4s %-6s %-8s %-22s %10s\n", "#", "Type", "Layer", "Description", "Length")
	fmt.Println(rule)
	for _, el := range res.Elements {
		layer := string(el.Layer)
		if el.Type == board.KindVia {
			layer = fmt.Sprintf("%s/%s", el.FromLayer, el.ToLayer)
		}
		fmt.Printf("%4d %-6s %-8s %-22s %10s\n",
			el.Index, el.Type, layer, el.Description, formatLength(el.LengthMM))
	}
}

func formatLength(mm float64) string {
	if mm == 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f mm", mm)
}

