package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deukgeun/deukgeun/internal/app/tracker"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, streaks, points and the current boss",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			renderStatus(cmd.OutOrStdout(), t.Summary())
			return nil
		})
	},
}

func renderStatus(w io.Writer, s tracker.Summary) {
	var b strings.Builder
	fmt.Fprintln(&b, heading(IconLevel, "deukgeun"))

	xp := fmt.Sprintf("%d / %d XP", s.CurrentXP, s.XPForNextLevel)
	if s.XPForNextLevel == 0 {
		xp = "max level"
	}
	fmt.Fprintf(&b, "%s %s %3.0f%%  %s\n",
		labelValue("Level", s.Level), renderBar(s.ProgressPct, goldStyle), s.ProgressPct, mutedStyle.Render(xp))
	fmt.Fprintln(&b, labelValue("Total XP", s.TotalXP))
	fmt.Fprintln(&b, labelValue("Points", s.Points))
	fmt.Fprintln(&b, labelValue("Workouts", s.WorkoutsDone))

	checkIn := warnStyle.Render("not yet today")
	if s.AttendedToday {
		checkIn = goodStyle.Render("checked in today")
	}
	fmt.Fprintf(&b, "%s %s %d days  %s %d days (%s)\n",
		keyStyle.Render("Streak:"), IconStreak, s.CurrentStreak,
		keyStyle.Render("Attendance:"), s.AttendanceStreak, checkIn)
	fmt.Fprintln(&b, labelValue("Achievements", fmt.Sprintf("%d / %d", s.Unlocked, s.Achievements)))
	if s.BMI > 0 {
		fmt.Fprintln(&b, labelValue("BMI", fmt.Sprintf("%.1f", s.BMI)))
	}

	hp := s.Boss.HPPct()
	fmt.Fprintf(&b, "%s %s Lv.%d %s %d/%d HP",
		keyStyle.Render("Boss:"), IconBoss, s.Boss.Level,
		renderBar(hp, hpStyle(hp)), s.Boss.CurrentHP, s.Boss.MaxHP)

	fmt.Fprintln(w, panelStyle.Render(b.String()))
}
