// Package cli implements the deukgeun command-line interface using Cobra.
// Each subcommand opens the local state, runs one operation and prints the
// result; serve runs the HTTP API.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deukgeun/deukgeun/internal/app/tracker"
	"github.com/deukgeun/deukgeun/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "deukgeun",
	Short: "deukgeun — gamified workout tracker",
	Long: `deukgeun turns workouts into boss battles.
Log sets to damage the boss, earn XP and points, keep your streaks alive
and unlock achievements. State lives in a local SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	daemon.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render(IconError+" "+err.Error()))
		os.Exit(1)
	}
}

// withTracker opens the local services, runs fn and closes them again.
func withTracker(fn func(t *tracker.Tracker) error) (err error) {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(d.Tracker)
}

// printResult prints what an operation granted.
func printResult(w io.Writer, res tracker.Result) {
	out := res.Outcome
	var parts []string
	if out.XPGranted > 0 {
		parts = append(parts, goldStyle.Render(fmt.Sprintf("+%d XP", out.XPGranted)))
	}
	if out.PointsGranted > 0 {
		parts = append(parts, goodStyle.Render(fmt.Sprintf("+%d points", out.PointsGranted)))
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, strings.Join(parts, "  "))
	}
	if out.LevelsGained > 0 {
		fmt.Fprintf(w, "%s %s\n", badgeLevelUp, labelValue("Level", res.State.Level))
	}
	for _, id := range out.Unlocked {
		title := id
		if i := res.State.FindAchievement(id); i >= 0 {
			title = res.State.Achievements[i].Icon + " " + res.State.Achievements[i].Title
		}
		fmt.Fprintf(w, "%s %s\n", IconTrophy, goldStyle.Render(title))
	}
}
