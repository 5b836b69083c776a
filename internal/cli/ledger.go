package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deukgeun/deukgeun/internal/app/tracker"
	"github.com/deukgeun/deukgeun/internal/domain"
)

func init() {
	attendCmd.Flags().StringVar(&attendDay, "day", "", "Day to check in (YYYY-MM-DD, default today)")

	logCmd.Flags().IntVar(&logSets, "sets", 3, "Number of sets")
	logCmd.Flags().IntVar(&logReps, "reps", 12, "Reps per set")
	logCmd.Flags().StringVar(&logDay, "day", "", "Day of the workout (YYYY-MM-DD, default today)")

	achievementsCmd.Flags().BoolVar(&achievementsEval, "evaluate", false, "Re-evaluate before listing")

	rootCmd.AddCommand(attendCmd, logCmd, xpCmd, achievementsCmd)
}

var (
	attendDay        string
	logSets          int
	logReps          int
	logDay           string
	achievementsEval bool
)

var attendCmd = &cobra.Command{
	Use:   "attend",
	Short: "Check in for today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			res, err := t.MarkAttendance(domain.DayID(attendDay))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", IconDone,
				goodStyle.Render("Checked in."), labelValue("Attendance streak", res.State.AttendanceStreak))
			printResult(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log <exercise>",
	Short: "Record a workout done outside a battle session",
	Long: `Record a workout done outside a battle session.
Each day accepts at most 5 manual entries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			res, err := t.RecordManual(domain.DayID(logDay), args[0], logSets, logReps)
			if err != nil {
				return err
			}
			logs := res.State.ManualWorkoutLogs
			day := logs[len(logs)-1].Day
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", IconDone,
				goodStyle.Render(fmt.Sprintf("Logged %s %dx%d.", args[0], logSets, logReps)),
				mutedStyle.Render(fmt.Sprintf("(%d/%d today)", res.State.ManualWorkoutCounts[day], domain.ManualLogLimit)))
			printResult(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var xpCmd = &cobra.Command{
	Use:   "xp <amount>",
	Short: "Grant XP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		return withTracker(func(t *tracker.Tracker) error {
			res, err := t.GrantXP(amount)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			fmt.Fprintln(cmd.OutOrStdout(), labelValue("Level", res.State.Level), labelValue("XP", res.State.CurrentXP))
			return nil
		})
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and their progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			var st domain.ProgressionState
			if achievementsEval {
				res, err := t.EvaluateAchievements()
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				st = res.State
			} else {
				st = t.State()
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, heading(IconTrophy, "Achievements"))
			for _, a := range st.Achievements {
				mark := IconLock
				progress := mutedStyle.Render(fmt.Sprintf("%d/%d", a.CurrentProgress, a.Requirement))
				if a.Completed {
					mark = IconDone
					progress = goodStyle.Render("done")
				}
				fmt.Fprintf(w, "%s %s %s %s %s\n", mark, a.Icon, h2Style.Render(a.Title),
					progress, mutedStyle.Render(a.Description))
			}
			return nil
		})
	},
}
