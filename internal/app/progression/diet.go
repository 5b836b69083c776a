package progression

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// AddMeal logs a meal. A meal for today grows today's intake totals; the
// first time today's protein reaches the target, today is added to the
// protein-goal days. A meal for another day only goes into the history.
// Achievements are re-evaluated.
func (e *Engine) AddMeal(s domain.ProgressionState, meal domain.Meal) (domain.ProgressionState, domain.Outcome, error) {
	var out domain.Outcome

	meal.Name = strings.TrimSpace(meal.Name)
	if meal.Name == "" {
		return s, out, domain.Invalid("meal", "name is required")
	}
	for field, v := range map[string]float64{
		"calories": meal.Calories, "protein": meal.Protein,
		"carbs": meal.Carbs, "fat": meal.Fat,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return s, out, domain.Invalid(field, "must be a non-negative number")
		}
	}
	if meal.Day != "" && !meal.Day.Valid() {
		return s, out, domain.Invalid("day", "want YYYY-MM-DD, got %q", meal.Day)
	}

	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.Day == "" {
		meal.Day = e.Today()
	}
	if meal.Time == "" {
		meal.Time = e.clock.Now().Format("15:04")
	}

	s, _ = e.RollDietDay(s)
	s = s.Clone()
	s.Diet.MealHistory = append(s.Diet.MealHistory, meal)
	if meal.Day == s.Diet.Day {
		s.Diet.MealsToday = append(s.Diet.MealsToday, meal)
		s.Diet.DailyCalories += meal.Calories
		s.Diet.DailyProtein += meal.Protein
		if s.Diet.TargetProtein > 0 && s.Diet.DailyProtein >= s.Diet.TargetProtein {
			s.Diet.ProteinGoalDates, _ = domain.AddDay(s.Diet.ProteinGoalDates, s.Diet.Day)
		}
	}

	out.Merge(e.evaluate(&s))
	return s, out, nil
}

// RollDietDay clears the intake totals once the day they belong to has
// passed. A log without a day takes it from its latest meal. Reports whether
// the state changed.
func (e *Engine) RollDietDay(s domain.ProgressionState) (domain.ProgressionState, bool) {
	today := e.Today()
	day := s.Diet.Day
	if day == "" && len(s.Diet.MealsToday) > 0 {
		day = s.Diet.MealsToday[len(s.Diet.MealsToday)-1].Day
	}
	if day == "" || day == today {
		if s.Diet.Day == today {
			return s, false
		}
		s = s.Clone()
		s.Diet.Day = today
		return s, true
	}
	s = ResetDailyMeals(s)
	s.Diet.Day = today
	return s, true
}

// ResetDailyMeals clears today's intake. History is kept.
func ResetDailyMeals(s domain.ProgressionState) domain.ProgressionState {
	s = s.Clone()
	s.Diet.DailyCalories = 0
	s.Diet.DailyProtein = 0
	s.Diet.MealsToday = []domain.Meal{}
	return s
}

// SetDietTargets replaces the daily calorie and protein targets.
func SetDietTargets(s domain.ProgressionState, calories, protein float64) (domain.ProgressionState, error) {
	if calories <= 0 || math.IsNaN(calories) {
		return s, domain.Invalid("target_calories", "must be positive")
	}
	if protein <= 0 || math.IsNaN(protein) {
		return s, domain.Invalid("target_protein", "must be positive")
	}
	s = s.Clone()
	s.Diet.TargetCalories = calories
	s.Diet.TargetProtein = protein
	return s, nil
}
