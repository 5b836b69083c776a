package progression_test

import (
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deukgeun/deukgeun/internal/app/progression"
	"github.com/deukgeun/deukgeun/internal/domain"
)

var testNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.Local)

func fixedClock(t time.Time) domain.Clock {
	return domain.ClockFunc(func() time.Time { return t })
}

func newEngine() *progression.Engine {
	return progression.NewEngine(progression.WithClock(fixedClock(testNow)))
}

func day(offset int) domain.DayID {
	return domain.DayOf(testNow.AddDate(0, 0, offset))
}

func achievement(t *testing.T, s domain.ProgressionState, id string) domain.Achievement {
	t.Helper()
	i := s.FindAchievement(id)
	require.GreaterOrEqual(t, i, 0, "achievement %s missing", id)
	return s.Achievements[i]
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestStreak_Empty(t *testing.T) {
	assert.Equal(t, 0, progression.Streak(nil, testNow))
	assert.Equal(t, 0, progression.Streak([]domain.DayID{}, testNow))
}

func TestStreak_ContiguousRunEndingToday(t *testing.T) {
	dates := []domain.DayID{day(-2), day(0), day(-4), day(-1), day(-3)}
	assert.Equal(t, 5, progression.Streak(dates, testNow))
}

func TestStreak_TodayAndYesterdayMissing(t *testing.T) {
	dates := []domain.DayID{day(-2), day(-3), day(-4)}
	assert.Equal(t, 0, progression.Streak(dates, testNow))
}

func TestStreak_TodayMissingShortCircuits(t *testing.T) {
	// Yesterday present, today not yet logged: the walk stops at today.
	dates := []domain.DayID{day(-1), day(-2)}
	assert.Equal(t, 0, progression.Streak(dates, testNow))
}

func TestStreak_StopsAtFirstGap(t *testing.T) {
	dates := []domain.DayID{day(0), day(-1), day(-3), day(-4), day(-5)}
	assert.Equal(t, 2, progression.Streak(dates, testNow))
}

func TestStreak_IgnoresDuplicatesAndGarbage(t *testing.T) {
	dates := []domain.DayID{day(0), day(0), "not-a-day", day(-1)}
	assert.Equal(t, 2, progression.Streak(dates, testNow))
}

func TestStreak_DoesNotMutateInput(t *testing.T) {
	dates := []domain.DayID{day(-1), day(0), day(-2)}
	orig := append([]domain.DayID(nil), dates...)

	first := progression.Streak(dates, testNow)
	second := progression.Streak(dates, testNow)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, dates)
}

func TestRecompute_RepairsStaleStreak(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	s.AttendanceDates = []domain.DayID{day(0), day(-1)}
	s.AttendanceStreak = 9

	fixed, drifted := e.Recompute(s)
	assert.True(t, drifted)
	assert.Equal(t, 2, fixed.AttendanceStreak)
	assert.Equal(t, 9, s.AttendanceStreak, "input must not change")

	_, drifted = e.Recompute(fixed)
	assert.False(t, drifted)
}

// ═══════════════════════════════════════════════════════════════════════════
// Ledger Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestGrantXP_BelowThreshold(t *testing.T) {
	e := newEngine()
	s, out, err := e.GrantXP(e.NewState(), 999)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Level)
	assert.Equal(t, int64(999), s.CurrentXP)
	assert.Equal(t, int64(999), s.TotalXP)
	assert.Equal(t, 0, out.LevelsGained)
	assert.Empty(t, out.Unlocked)
}

func TestGrantXP_LevelUpPaysLevelAchievement(t *testing.T) {
	e := newEngine()
	s, out, err := e.GrantXP(e.NewState(), 1000)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Level)
	// 1000 consumed by the promotion, 100 back from level-2.
	assert.Equal(t, int64(100), s.CurrentXP)
	assert.Equal(t, int64(1100), s.TotalXP)
	assert.Equal(t, int64(300), s.Points)
	assert.Equal(t, []string{"level-2"}, out.Unlocked)
	assert.Equal(t, int64(1100), out.XPGranted)
	assert.Equal(t, 1, out.LevelsGained)
}

func TestGrantXP_CapsAtMaxLevel(t *testing.T) {
	e := newEngine()
	s, out, err := e.GrantXP(e.NewState(), 100000)
	require.NoError(t, err)

	assert.Equal(t, domain.MaxLevel, s.Level)
	assert.ElementsMatch(t, []string{"level-2", "level-3", "level-5"}, out.Unlocked)
	assert.Equal(t, int64(101400), s.TotalXP)
	assert.Equal(t, int64(82900), s.CurrentXP)
	assert.Equal(t, int64(3800), s.Points)
	assert.Equal(t, 100.0, e.ProgressPct(s))
	assert.Equal(t, int64(0), e.XPForNextLevel(s))

	s, _, err = e.GrantXP(s, 50000)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxLevel, s.Level)
	assert.Equal(t, int64(151400), s.TotalXP)
}

func TestGrantXP_TotalMatchesSumOfGrants(t *testing.T) {
	e := newEngine()
	s := e.NewState()

	var granted int64
	prevLevel := s.Level
	for _, amount := range []int64{300, 700, 1, 2400, 0, 5000, 12000, 90} {
		var out domain.Outcome
		var err error
		s, out, err = e.GrantXP(s, amount)
		require.NoError(t, err)
		granted += out.XPGranted

		assert.GreaterOrEqual(t, s.Level, prevLevel, "level must never decrease")
		assert.LessOrEqual(t, s.Level, domain.MaxLevel)
		prevLevel = s.Level
	}
	assert.Equal(t, granted, s.TotalXP)
}

func TestGrantXP_RejectsNegative(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	got, _, err := e.GrantXP(s, -5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, s.TotalXP, got.TotalXP)
}

func TestGrantXP_DoesNotMutateInput(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	_, _, err := e.GrantXP(s, 5000)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, int64(0), s.TotalXP)
	assert.False(t, achievement(t, s, "level-2").Completed)
}

func TestGrantPoints(t *testing.T) {
	e := newEngine()
	s, err := e.GrantPoints(e.NewState(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), s.Points)
	assert.Equal(t, int64(0), s.TotalXP)

	_, err = e.GrantPoints(s, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProgressPct(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	s.CurrentXP = 500
	assert.InDelta(t, 50.0, e.ProgressPct(s), 0.001)
	assert.Equal(t, int64(1000), e.XPForNextLevel(s))
}

func TestThresholdsFrom(t *testing.T) {
	th, err := progression.ThresholdsFrom([]int64{100, 200, 300, 400})
	require.NoError(t, err)
	assert.Equal(t, int64(100), th[2])
	assert.Equal(t, int64(400), th[5])

	_, err = progression.ThresholdsFrom([]int64{100, 200})
	assert.Error(t, err)
	_, err = progression.ThresholdsFrom([]int64{100, 100, 300, 400})
	assert.Error(t, err)
}

func TestCustomThresholds(t *testing.T) {
	th, err := progression.ThresholdsFrom([]int64{10, 20, 30, 40})
	require.NoError(t, err)
	e := progression.NewEngine(progression.WithThresholds(th), progression.WithClock(fixedClock(testNow)))

	s, _, err := e.GrantXP(e.NewState(), 30)
	require.NoError(t, err)
	// 30 → L2 (20 left) → L3 (0 left); then level rewards add 100+300.
	assert.GreaterOrEqual(t, s.Level, 3)
}

func TestCompleteWorkout(t *testing.T) {
	e := newEngine()
	s, out := e.CompleteWorkout(e.NewState(), day(0))

	assert.Equal(t, 1, s.WorkoutsCompleted)
	assert.True(t, s.CompletedDays[day(0)])
	assert.Equal(t, []domain.DayID{day(0)}, s.WorkoutDates)
	assert.Equal(t, 1, s.CurrentStreak)
	require.NotNil(t, s.LastWorkoutDate)
	assert.Equal(t, day(0), *s.LastWorkoutDate)
	// 100 for the workout, 100 from first-workout.
	assert.Equal(t, int64(200), s.Points)
	assert.Equal(t, int64(50), s.TotalXP)
	assert.True(t, achievement(t, s, "first-workout").Completed)
	assert.Equal(t, int64(200), out.PointsGranted)
	assert.Equal(t, []string{"first-workout"}, out.Unlocked)
}

// ═══════════════════════════════════════════════════════════════════════════
// Attendance Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestMarkAttendance_PaysOncePerDay(t *testing.T) {
	e := newEngine()
	s, out, err := e.MarkAttendance(e.NewState(), day(0))
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.Points)
	assert.Equal(t, int64(10), out.PointsGranted)
	assert.Equal(t, 1, s.AttendanceStreak)
	assert.True(t, progression.IsAttendanceMarked(s, day(0)))

	s, out, err = e.MarkAttendance(s, day(0))
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.Points)
	assert.Zero(t, out.PointsGranted)
	assert.Len(t, s.AttendanceDates, 1)
}

func TestMarkAttendance_RejectsMalformedDay(t *testing.T) {
	e := newEngine()
	_, _, err := e.MarkAttendance(e.NewState(), "07/10/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkAttendance_WeekUnlocksStreakAchievements(t *testing.T) {
	e := newEngine()
	s := e.NewState()

	for offset := -6; offset <= 0; offset++ {
		var err error
		s, _, err = e.MarkAttendance(s, day(offset))
		require.NoError(t, err)
		if offset < 0 {
			// Today is not in the set yet, so the streak walk stops at once.
			assert.Equal(t, 0, s.AttendanceStreak)
		}
	}

	assert.Equal(t, 7, s.AttendanceStreak)
	assert.True(t, achievement(t, s, "streak-3").Completed)
	assert.True(t, achievement(t, s, "streak-7").Completed)
	assert.True(t, achievement(t, s, "perfect-week").Completed)
	assert.False(t, achievement(t, s, "streak-30").Completed)

	// 7 check-ins + 200 + 500 + 1000.
	assert.Equal(t, int64(1770), s.Points)
	assert.Equal(t, int64(900), s.TotalXP)
	assert.Equal(t, 1, s.Level)
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCatalog_Shape(t *testing.T) {
	cat := progression.Catalog()
	assert.Len(t, cat, 13)

	seen := map[string]bool{}
	for _, a := range cat {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
		assert.False(t, a.Completed)
		assert.Positive(t, a.Requirement)
		if a.Category == domain.CatLevel {
			assert.Equal(t, 1, a.CurrentProgress)
		}
	}
}

func TestEvaluate_LatchIsOneWay(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	s.WorkoutsCompleted = 1

	s, out := e.EvaluateAchievements(s)
	assert.Equal(t, []string{"first-workout"}, out.Unlocked)
	assert.Equal(t, int64(100), s.Points)
	assert.Equal(t, int64(50), s.TotalXP)
	first := achievement(t, s, "first-workout")
	require.NotNil(t, first.CompletedAt)

	s, out = e.EvaluateAchievements(s)
	assert.Empty(t, out.Unlocked)
	assert.Equal(t, int64(100), s.Points)
	assert.Equal(t, int64(50), s.TotalXP)

	// Counters going back down never un-complete an entry.
	s.WorkoutsCompleted = 0
	s, out = e.EvaluateAchievements(s)
	assert.Empty(t, out.Unlocked)
	assert.True(t, achievement(t, s, "first-workout").Completed)
	assert.Equal(t, *first.CompletedAt, *achievement(t, s, "first-workout").CompletedAt)
}

func TestEvaluate_RewardXPChainsIntoLevelAchievement(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	s.CurrentXP = 960
	s.TotalXP = 960
	s.WorkoutsCompleted = 1

	// first-workout pays 50 XP which crosses level 2; level-2 must latch
	// within the same evaluation.
	s, out := e.EvaluateAchievements(s)
	assert.Equal(t, []string{"first-workout", "level-2"}, out.Unlocked)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, int64(400), s.Points)
	assert.Equal(t, int64(960+50+100), s.TotalXP)
}

func TestEvaluate_RewardsPaidExactlyOnce(t *testing.T) {
	e := newEngine()
	s := e.NewState()

	paid := map[string]int{}
	for i := 0; i < 12; i++ {
		var out domain.Outcome
		s, out = e.CompleteWorkout(s, day(0))
		for _, id := range out.Unlocked {
			paid[id]++
		}
		s, out = e.EvaluateAchievements(s)
		for _, id := range out.Unlocked {
			paid[id]++
		}
	}
	for id, n := range paid {
		assert.Equal(t, 1, n, "achievement %s paid %d times", id, n)
	}
	assert.True(t, achievement(t, s, "workout-10").Completed)
}

func TestEvaluate_HealthyMeals(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	faker := gofakeit.New(42)

	for i := 0; i < 9; i++ {
		var err error
		s, _, err = e.AddMeal(s, domain.Meal{Name: faker.Lunch(), Calories: 400, Evaluation: "아주 좋은 식단이에요"})
		require.NoError(t, err)
	}
	s, _, err := e.AddMeal(s, domain.Meal{Name: faker.Snack(), Calories: 300, Evaluation: "당이 많아요"})
	require.NoError(t, err)
	assert.False(t, achievement(t, s, "healthy-meal-10").Completed)
	assert.Equal(t, 9, achievement(t, s, "healthy-meal-10").CurrentProgress)

	s, out, err := e.AddMeal(s, domain.Meal{Name: faker.Dinner(), Calories: 500, Evaluation: "완벽한 균형"})
	require.NoError(t, err)
	assert.Contains(t, out.Unlocked, "healthy-meal-10")
	assert.Equal(t, 10, progression.HealthyMeals(s))
}

func TestEvaluate_UnknownEntryFallsBackToCategory(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	s.Achievements = append(s.Achievements, domain.Achievement{
		ID: "legacy-workout-2", Category: domain.CatWorkout, Requirement: 2,
		Reward: domain.Reward{Points: 7},
	})
	s.WorkoutsCompleted = 2

	s, out := e.EvaluateAchievements(s)
	assert.Contains(t, out.Unlocked, "legacy-workout-2")
}

// ═══════════════════════════════════════════════════════════════════════════
// Manual Log Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestRecordManual_CapAtFive(t *testing.T) {
	e := newEngine()
	s := e.NewState()

	for i := 0; i < domain.ManualLogLimit; i++ {
		var err error
		s, _, err = e.RecordManual(s, day(0), "Squat", 3, 10)
		require.NoError(t, err, "record %d", i+1)
	}

	got, out, err := e.RecordManual(s, day(0), "Squat", 3, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))
	var capErr *domain.CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, domain.ManualLogLimit, capErr.Limit)
	assert.Zero(t, out.PointsGranted)

	assert.Equal(t, 5, got.ManualWorkoutCounts[day(0)])
	assert.Len(t, got.ManualWorkoutLogs, 5)
	assert.Equal(t, 5, got.WorkoutsCompleted)
	// 5 × 50 plus first-workout's 100.
	assert.Equal(t, int64(350), got.Points)

	// Another day is unaffected by today's cap.
	got, _, err = e.RecordManual(got, day(-1), "Row", 4, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ManualWorkoutCounts[day(-1)])
}

func TestRecordManual_FeedsStreak(t *testing.T) {
	e := newEngine()
	s, _, err := e.RecordManual(e.NewState(), day(-1), "Bench", 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentStreak)

	s, _, err = e.RecordManual(s, day(0), "Bench", 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.True(t, s.CompletedDays[day(0)])
	assert.Len(t, progression.ManualLogsFor(s, day(0)), 1)
}

func TestRecordManual_Validation(t *testing.T) {
	e := newEngine()
	s := e.NewState()

	tests := []struct {
		name     string
		day      domain.DayID
		exercise string
		sets     int
		reps     int
	}{
		{"bad day", "yesterday", "Squat", 3, 10},
		{"blank exercise", day(0), "  ", 3, 10},
		{"zero sets", day(0), "Squat", 0, 10},
		{"too many reps", day(0), "Squat", 3, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := e.RecordManual(s, tt.day, tt.exercise, tt.sets, tt.reps)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, got.ManualWorkoutLogs)
		})
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Diet / Body / Shop / Program Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAddMeal_ProteinGoalDay(t *testing.T) {
	e := newEngine()
	s := e.NewState()

	s, _, err := e.AddMeal(s, domain.Meal{Name: "Chicken breast", Calories: 300, Protein: 100})
	require.NoError(t, err)
	assert.Empty(t, s.Diet.ProteinGoalDates)

	s, _, err = e.AddMeal(s, domain.Meal{Name: "Shake", Calories: 200, Protein: 60})
	require.NoError(t, err)
	assert.Equal(t, []domain.DayID{day(0)}, s.Diet.ProteinGoalDates)
	assert.Equal(t, 500.0, s.Diet.DailyCalories)
	assert.Len(t, s.Diet.MealsToday, 2)
	assert.NotEmpty(t, s.Diet.MealsToday[0].ID)

	s = progression.ResetDailyMeals(s)
	assert.Zero(t, s.Diet.DailyCalories)
	assert.Empty(t, s.Diet.MealsToday)
	assert.Len(t, s.Diet.MealHistory, 2)
}

func TestAddMeal_RollsOverAtMidnight(t *testing.T) {
	e := newEngine()
	s, _, err := e.AddMeal(e.NewState(), domain.Meal{Name: "Steak", Calories: 900, Protein: 150})
	require.NoError(t, err)
	assert.Equal(t, []domain.DayID{day(0)}, s.Diet.ProteinGoalDates)
	assert.Equal(t, day(0), s.Diet.Day)

	tomorrow := progression.NewEngine(progression.WithClock(fixedClock(testNow.AddDate(0, 0, 1))))
	s, _, err = tomorrow.AddMeal(s, domain.Meal{Name: "Apple", Calories: 80, Protein: 1})
	require.NoError(t, err)

	assert.Equal(t, day(1), s.Diet.Day)
	assert.Equal(t, 1.0, s.Diet.DailyProtein)
	assert.Equal(t, 80.0, s.Diet.DailyCalories)
	assert.Len(t, s.Diet.MealsToday, 1)
	assert.Len(t, s.Diet.MealHistory, 2)
	assert.Equal(t, []domain.DayID{day(0)}, s.Diet.ProteinGoalDates)
}

func TestAddMeal_BackdatedMealSkipsTodayTotals(t *testing.T) {
	e := newEngine()
	s, _, err := e.AddMeal(e.NewState(), domain.Meal{Name: "Shake", Protein: 100})
	require.NoError(t, err)

	s, _, err = e.AddMeal(s, domain.Meal{Name: "Brisket", Protein: 200, Day: day(-1)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.Diet.DailyProtein)
	assert.Len(t, s.Diet.MealsToday, 1)
	assert.Len(t, s.Diet.MealHistory, 2)
	assert.Empty(t, s.Diet.ProteinGoalDates)

	_, _, err = e.AddMeal(s, domain.Meal{Name: "Toast", Day: "someday"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRollDietDay(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	s.Diet.Day = day(0)
	_, changed := e.RollDietDay(s)
	assert.False(t, changed)

	// Older blobs carry no day; the latest meal supplies it.
	s.Diet.Day = ""
	s.Diet.DailyProtein = 40
	s.Diet.MealsToday = []domain.Meal{{Name: "Oats", Protein: 40, Day: day(-2)}}
	rolled, changed := e.RollDietDay(s)
	require.True(t, changed)
	assert.Equal(t, day(0), rolled.Diet.Day)
	assert.Zero(t, rolled.Diet.DailyProtein)
	assert.Empty(t, rolled.Diet.MealsToday)
	assert.Equal(t, 40.0, s.Diet.DailyProtein, "input must not be mutated")
}

func TestAddMeal_Validation(t *testing.T) {
	e := newEngine()
	_, _, err := e.AddMeal(e.NewState(), domain.Meal{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = e.AddMeal(e.NewState(), domain.Meal{Name: "Rice", Calories: -10})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateBodyStats(t *testing.T) {
	e := newEngine()
	s, err := progression.UpdateBodyStats(e.NewState(), progression.BodyInput{
		MuscleMass: 27, BodyFat: 20, Height: 175, Weight: 72,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, s.Body.BaseMuscleMass)
	assert.Equal(t, 22.0, s.Body.BaseBodyFat)
	assert.Equal(t, 27.0, s.Body.MuscleMass)
	assert.InDelta(t, 72/(1.75*1.75), progression.BMI(s), 0.0001)

	_, err = progression.UpdateBodyStats(s, progression.BodyInput{MuscleMass: 27, BodyFat: 20, Height: 0, Weight: 72})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBMI_Default(t *testing.T) {
	e := newEngine()
	assert.InDelta(t, 24.22, progression.BMI(e.NewState()), 0.01)
}

func TestCreateOrder(t *testing.T) {
	e := newEngine()
	s := e.NewState()
	item := domain.ShopItem{ID: "protein-bar", Name: "Protein bar"}

	_, _, err := e.CreateOrder(s, item, 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	s.Points = 800
	s, order, err := e.CreateOrder(s, item, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(300), s.Points)
	assert.Equal(t, domain.OrderPreparing, order.Status)
	require.Len(t, s.Orders, 1)

	s, err = e.UpdateOrderStatus(s, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	require.NotNil(t, s.Orders[0].DeliveredAt)
	assert.True(t, s.Orders[0].DeliveredAt.Equal(testNow))

	_, err = e.UpdateOrderStatus(s, "order-missing", domain.OrderShipping)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = e.UpdateOrderStatus(s, order.ID, "lost")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestShippingAddress(t *testing.T) {
	e := newEngine()
	s, err := progression.UpdateShippingAddress(e.NewState(), domain.ShippingAddress{Name: "Kim", Address: "Seoul"})
	require.NoError(t, err)
	require.NotNil(t, s.ShippingAddress)

	_, err = progression.UpdateShippingAddress(s, domain.ShippingAddress{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPrograms_AdvanceWeekdays(t *testing.T) {
	e := newEngine()
	s, p, err := e.SaveCustomProgram(e.NewState(), domain.Program{
		Name: "Upper/Lower",
		Days: []domain.ProgramDay{{Day: "Monday"}, {Day: "Thursday"}},
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, s.ActiveProgram)
	assert.Equal(t, "Monday", s.CurrentWorkoutDay)

	s = progression.AdvanceToNextWorkoutDay(s)
	assert.Equal(t, "Thursday", s.CurrentWorkoutDay)
	s = progression.AdvanceToNextWorkoutDay(s)
	assert.Equal(t, "Monday", s.CurrentWorkoutDay)

	// Completing a workout moves the program along too.
	s, _ = e.CompleteWorkout(s, day(0))
	assert.Equal(t, "Thursday", s.CurrentWorkoutDay)

	_, err = progression.SetActiveProgram(s, "nope")
	assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	s, err = progression.SetActiveProgram(s, "")
	require.NoError(t, err)
	_, ok := progression.ActiveProgram(s)
	assert.False(t, ok)
}

func TestPrograms_RejectUnknownWeekday(t *testing.T) {
	e := newEngine()
	_, _, err := e.SaveCustomProgram(e.NewState(), domain.Program{
		Name: "Bad", Days: []domain.ProgramDay{{Day: "Funday"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
