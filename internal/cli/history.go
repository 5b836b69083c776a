package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deukgeun/deukgeun/internal/app/tracker"
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of sessions to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished battle sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			records, err := t.SessionHistory(historyLimit)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet. Start one through the API with 'deukgeun serve'.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DAY\tKIND\tOUTCOME\tSETS\tBOSSES\tXP\tPOINTS")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%d\n",
					r.Day, r.Kind, r.Outcome,
					r.CompletedSets, r.TotalSets,
					r.BossesDefeated, r.XPGranted, r.PointsGranted,
				)
			}
			return w.Flush()
		})
	},
}
