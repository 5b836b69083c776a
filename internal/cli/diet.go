package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/app/tracker"
	"github.com/deukgeun/deukgeun/internal/domain"
)

func init() {
	mealCmd.Flags().Float64Var(&mealInput.Calories, "calories", 0, "Calories (kcal)")
	mealCmd.Flags().Float64Var(&mealInput.Protein, "protein", 0, "Protein (g)")
	mealCmd.Flags().Float64Var(&mealInput.Carbs, "carbs", 0, "Carbohydrates (g)")
	mealCmd.Flags().Float64Var(&mealInput.Fat, "fat", 0, "Fat (g)")
	mealCmd.Flags().StringVar(&mealInput.Evaluation, "evaluation", "", "Free-text evaluation of the meal")

	mealTargetsCmd.Flags().Float64Var(&targetCalories, "calories", 2000, "Daily calorie target")
	mealTargetsCmd.Flags().Float64Var(&targetProtein, "protein", 120, "Daily protein target (g)")

	bodyCmd.Flags().Float64Var(&bodyInput.MuscleMass, "muscle-mass", 0, "Skeletal muscle mass (kg)")
	bodyCmd.Flags().Float64Var(&bodyInput.BodyFat, "body-fat", 0, "Body fat (%)")
	bodyCmd.Flags().Float64Var(&bodyInput.Height, "height", 0, "Height (cm)")
	bodyCmd.Flags().Float64Var(&bodyInput.Weight, "weight", 0, "Weight (kg)")

	mealCmd.AddCommand(mealResetCmd, mealTargetsCmd)
	rootCmd.AddCommand(mealCmd, bodyCmd)
}

var (
	mealInput      domain.Meal
	targetCalories float64
	targetProtein  float64
	bodyInput      progression.BodyInput
)

var mealCmd = &cobra.Command{
	Use:   "meal <name>",
	Short: "Log a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal := mealInput
		meal.Name = args[0]
		return withTracker(func(t *tracker.Tracker) error {
			res, err := t.AddMeal(meal)
			if err != nil {
				return err
			}
			d := res.State.Diet
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", IconMeal, goodStyle.Render("Logged "+meal.Name+"."))
			fmt.Fprintln(cmd.OutOrStdout(),
				labelValue("Calories", fmt.Sprintf("%.0f / %.0f kcal", d.DailyCalories, d.TargetCalories)),
				labelValue("Protein", fmt.Sprintf("%.0f / %.0f g", d.DailyProtein, d.TargetProtein)))
			printResult(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var mealResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear today's meals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			if _, err := t.ResetDailyMeals(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), IconDone, "Today's meals cleared.")
			return nil
		})
	},
}

var mealTargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Set the daily calorie and protein targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			if _, err := t.SetDietTargets(targetCalories, targetProtein); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), IconDone, labelValue("Targets", fmt.Sprintf("%.0f kcal, %.0f g protein", targetCalories, targetProtein)))
			return nil
		})
	},
}

var bodyCmd = &cobra.Command{
	Use:   "body",
	Short: "Record body measurements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(t *tracker.Tracker) error {
			res, err := t.UpdateBodyStats(bodyInput)
			if err != nil {
				return err
			}
			b := res.State.Body
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, heading(IconBody, "Body"))
			fmt.Fprintln(w, labelValue("Muscle mass", fmt.Sprintf("%.1f kg (was %.1f)", b.MuscleMass, b.BaseMuscleMass)))
			fmt.Fprintln(w, labelValue("Body fat", fmt.Sprintf("%.1f%% (was %.1f%%)", b.BodyFat, b.BaseBodyFat)))
			fmt.Fprintln(w, labelValue("BMI", fmt.Sprintf("%.1f", progression.BMI(res.State))))
			return nil
		})
	},
}
