package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/geom"
)

var islandsStrategy string

var islandsCmd = &cobra.Command{
	Use:   "islands <board_file> <net_name>",
	Short: "Split a net into its connected copper islands",
	Long: `Build the connectivity graph of a net and list its connected
components. A net with more than one island has pads that no path can join
under the chosen strategy.`,
	Args: cobra.ExactArgs(2),
	RunE: runIslands,
}

func init() {
	rootCmd.AddCommand(islandsCmd)
	islandsCmd.Flags().StringVarP(&islandsStrategy, "strategy", "s", connectivity.StrategyExact, "strategy used to build the graph")
}

func runIslands(cmd *cobra.Command, args []string) error {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	net := args[1]
	g, err := s.Resolver.Graph(net, islandsStrategy)
	if err != nil {
		return err
	}
	islands := connectivity.Islands(g)

	if jsonOutput {
		return printJSON(islands)
	}

	fmt.Printf("Net %s (%s): %d nodes, %d edges, %d pruned, %d island(s)\n\n",
		net, g.Strategy, len(g.Nodes), len(g.Edges), len(g.Pruned), len(islands))
	fmt.Printf("%6s %6s %6s %5s %12s  %s\n", "Island", "Nodes", "Edges", "Vias", "Copper", "Pads")
	fmt.Println(rule)
	for i, is := range islands {
		fmt.Printf("%6d %6d %6d %5d %9.3f mm  %v\n",
			i+1, len(is.Nodes), is.Edges, is.Vias, geom.MilsToMillimeters(is.Length), is.Pads)
	}
	return nil
}
