package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/board"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/trace"
)

var (
	criticalPairs string
	criticalTop   int
)

var criticalCmd = &cobra.Command{
	Use:   "critical <board_file> <net_name>",
	Short: "Rank pad pairs of a net by trace length",
	Long: `Resolve pad pairs of a net and rank them longest first.

Without --pairs every pair of pads on the net is measured. Pairs that are
not connected are listed as skipped.

Example:
  otl critical board.json PHC --pairs "U1.62:R29.1, U1.62:C44.1"`,
	Args: cobra.ExactArgs(2),
	RunE: runCritical,
}

func init() {
	rootCmd.AddCommand(criticalCmd)
	criticalCmd.Flags().StringVarP(&criticalPairs, "pairs", "p", "", "pad pairs to rank, e.g. U1.62:R29.1,U1.62:C44.1")
	criticalCmd.Flags().IntVarP(&criticalTop, "top", "n", 0, "show only the N longest paths")
}

func runCritical(cmd *cobra.Command, args []string) error {
	var pairs []board.PadPair
	if criticalPairs != "" {
		var err error
		if pairs, err = board.ParsePairs(criticalPairs); err != nil {
			return err
		}
	}

	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	net := args[1]
	var report *trace.CriticalReport
	if pairs == nil {
		report, err = s.Analyzer.RankAll(cmd.Context(), net)
	} else {
		report, err = s.Analyzer.Rank(cmd.Context(), net, pairs)
	}
	if err != nil {
		return err
	}
	resolved := len(report.Paths)
	if criticalTop > 0 && len(report.Paths) > criticalTop {
		report.Paths = report.Paths[:criticalTop]
	}

	if jsonOutput {
		return printJSON(report)
	}

	fmt.Printf("Critical paths on %s (%d resolved, %d skipped)\n\n", report.Net, resolved, len(report.Skipped))
	fmt.Printf("%4s %-24s %12s %7s %-9s %5s\n", "Rank", "Pair", "Length", "% max", "Strategy", "Elems")
	fmt.Println(rule)
	for _, p := range report.Paths {
		fmt.Printf("%4d %-24s %9.3f mm %6.1f%% %-9s %5d\n",
			p.Rank, p.Pair(), p.LengthMM, p.Percent, p.Strategy, p.Elements)
	}
	if report.Longest != nil {
		fmt.Printf("\nLongest: %s (%.3f mm)\n", report.Longest.Pair(), report.MaxMM)
	}
	for _, sk := range report.Skipped {
		fmt.Printf("Skipped: %s: %s\n", sk.Pair, sk.Reason)
	}
	return nil
}
