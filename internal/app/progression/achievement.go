package progression

import (
	"strings"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// healthyMealMarkers are the evaluation phrases that count a meal as healthy.
var healthyMealMarkers = []string{"좋은", "훌륭", "완벽"}

// definition pairs a catalog entry with the counter it reads.
type definition struct {
	domain.Achievement
	Progress func(s domain.ProgressionState, current int) int
}

// EvaluateAchievements runs the two-phase evaluation on a copy of s.
// Returns the new state and what the newly completed achievements paid.
func (e *Engine) EvaluateAchievements(s domain.ProgressionState) (domain.ProgressionState, domain.Outcome) {
	s = s.Clone()
	out := e.evaluate(&s)
	return s, out
}

// evaluate is the two-phase latch. Phase one scans uncompleted entries,
// refreshes their progress and flips the ones that now meet the requirement
// without paying anything. Phase two pays the queued rewards. Reward XP can
// itself satisfy more entries (a level achievement), so the pair repeats
// until a scan queues nothing. Completed entries are skipped by the scan, so
// a reward is paid once per achievement.
func (e *Engine) evaluate(s *domain.ProgressionState) domain.Outcome {
	var out domain.Outcome
	if len(s.Achievements) == 0 {
		s.Achievements = Catalog()
	}

	for {
		queued := e.scan(s)
		if len(queued) == 0 {
			return out
		}
		for _, r := range queued {
			out.LevelsGained += e.addXP(s, r.reward.XP)
			s.Points += r.reward.Points
			out.XPGranted += r.reward.XP
			out.PointsGranted += r.reward.Points
			out.Unlocked = append(out.Unlocked, r.id)
		}
	}
}

type queuedReward struct {
	id     string
	reward domain.Reward
}

// scan is phase one.
func (e *Engine) scan(s *domain.ProgressionState) []queuedReward {
	now := e.clock.Now()
	var queued []queuedReward

	for i := range s.Achievements {
		a := &s.Achievements[i]
		if a.Completed {
			continue
		}

		a.CurrentProgress = e.progressFor(*s, *a)
		if a.CurrentProgress < a.Requirement {
			continue
		}

		at := now
		a.Completed = true
		a.CompletedAt = &at
		queued = append(queued, queuedReward{id: a.ID, reward: a.Reward})
	}
	return queued
}

// progressFor reads the counter behind a. Entries from the stock catalog use
// their own reader; unknown ids fall back to their category.
func (e *Engine) progressFor(s domain.ProgressionState, a domain.Achievement) int {
	for _, def := range e.catalog {
		if def.ID == a.ID && def.Progress != nil {
			return def.Progress(s, a.CurrentProgress)
		}
	}

	switch a.Category {
	case domain.CatWorkout:
		return s.WorkoutsCompleted
	case domain.CatStreak:
		return s.AttendanceStreak
	case domain.CatLevel:
		return s.Level
	}
	return a.CurrentProgress
}

// HealthyMeals counts meal-history entries whose evaluation carries a
// positive marker.
func HealthyMeals(s domain.ProgressionState) int {
	n := 0
	for _, m := range s.Diet.MealHistory {
		for _, marker := range healthyMealMarkers {
			if strings.Contains(m.Evaluation, marker) {
				n++
				break
			}
		}
	}
	return n
}

// Unlocked returns the completed achievements.
func Unlocked(s domain.ProgressionState) []domain.Achievement {
	var out []domain.Achievement
	for _, a := range s.Achievements {
		if a.Completed {
			out = append(out, a)
		}
	}
	return out
}

// ─── Achievement Catalog ────────────────────────────────────────────────────
// 13 achievements across 5 categories. Each reads one counter of the state.

// Catalog returns the stock achievements with fresh progress.
func Catalog() []domain.Achievement {
	defs := definitions()
	out := make([]domain.Achievement, len(defs))
	for i, d := range defs {
		out[i] = d.Achievement
	}
	return out
}

func workouts(s domain.ProgressionState, _ int) int   { return s.WorkoutsCompleted }
func attendance(s domain.ProgressionState, _ int) int { return s.AttendanceStreak }
func level(s domain.ProgressionState, _ int) int      { return s.Level }

func definitions() []definition {
	return []definition{
		// ── Workout (4) ────────────────────────────────────────────────
		{
			Achievement: domain.Achievement{
				ID: "first-workout", Title: "First Workout", Description: "Finish your first workout",
				Icon: "💪", Category: domain.CatWorkout, Requirement: 1,
				Reward: domain.Reward{XP: 50, Points: 100},
			},
			Progress: workouts,
		},
		{
			Achievement: domain.Achievement{
				ID: "workout-10", Title: "Ten Down", Description: "Finish 10 workouts",
				Icon: "🔥", Category: domain.CatWorkout, Requirement: 10,
				Reward: domain.Reward{XP: 200, Points: 500},
			},
			Progress: workouts,
		},
		{
			Achievement: domain.Achievement{
				ID: "workout-50", Title: "Gym Regular", Description: "Finish 50 workouts",
				Icon: "⚡", Category: domain.CatWorkout, Requirement: 50,
				Reward: domain.Reward{XP: 500, Points: 1000},
			},
			Progress: workouts,
		},
		{
			Achievement: domain.Achievement{
				ID: "workout-100", Title: "Iron Legend", Description: "Finish 100 workouts",
				Icon: "👑", Category: domain.CatWorkout, Requirement: 100,
				Reward: domain.Reward{XP: 1000, Points: 2000},
			},
			Progress: workouts,
		},

		// ── Streak (3) ─────────────────────────────────────────────────
		{
			Achievement: domain.Achievement{
				ID: "streak-3", Title: "Three in a Row", Description: "Check in 3 days in a row",
				Icon: "🎯", Category: domain.CatStreak, Requirement: 3,
				Reward: domain.Reward{XP: 100, Points: 200},
			},
			Progress: attendance,
		},
		{
			Achievement: domain.Achievement{
				ID: "streak-7", Title: "Week Challenge", Description: "Check in 7 days in a row",
				Icon: "🌟", Category: domain.CatStreak, Requirement: 7,
				Reward: domain.Reward{XP: 300, Points: 500},
			},
			Progress: attendance,
		},
		{
			Achievement: domain.Achievement{
				ID: "streak-30", Title: "Month Challenge", Description: "Check in 30 days in a row",
				Icon: "🏆", Category: domain.CatStreak, Requirement: 30,
				Reward: domain.Reward{XP: 1000, Points: 2000},
			},
			Progress: attendance,
		},

		// ── Level (3) ──────────────────────────────────────────────────
		{
			Achievement: domain.Achievement{
				ID: "level-2", Title: "Beginner No More", Description: "Reach level 2",
				Icon: "🎖️", Category: domain.CatLevel, Requirement: 2, CurrentProgress: 1,
				Reward: domain.Reward{XP: 100, Points: 300},
			},
			Progress: level,
		},
		{
			Achievement: domain.Achievement{
				ID: "level-3", Title: "Intermediate", Description: "Reach level 3",
				Icon: "🥈", Category: domain.CatLevel, Requirement: 3, CurrentProgress: 1,
				Reward: domain.Reward{XP: 300, Points: 500},
			},
			Progress: level,
		},
		{
			Achievement: domain.Achievement{
				ID: "level-5", Title: "Muscle Deity", Description: "Reach the top level",
				Icon: "🥇", Category: domain.CatLevel, Requirement: 5, CurrentProgress: 1,
				Reward: domain.Reward{XP: 1000, Points: 3000},
			},
			Progress: level,
		},

		// ── Diet (2) ───────────────────────────────────────────────────
		{
			Achievement: domain.Achievement{
				ID: "healthy-meal-10", Title: "Clean Eater", Description: "Eat 10 meals rated healthy",
				Icon: "🥗", Category: domain.CatDiet, Requirement: 10,
				Reward: domain.Reward{XP: 200, Points: 400},
			},
			Progress: func(s domain.ProgressionState, _ int) int { return HealthyMeals(s) },
		},
		{
			Achievement: domain.Achievement{
				ID: "protein-goal-7", Title: "Protein Master", Description: "Hit the daily protein target on 7 days",
				Icon: "🍗", Category: domain.CatDiet, Requirement: 7,
				Reward: domain.Reward{XP: 300, Points: 600},
			},
			Progress: func(s domain.ProgressionState, _ int) int { return len(s.Diet.ProteinGoalDates) },
		},

		// ── Special (1) ────────────────────────────────────────────────
		{
			Achievement: domain.Achievement{
				ID: "perfect-week", Title: "Perfect Week", Description: "Check in and train every day for a week",
				Icon: "✨", Category: domain.CatSpecial, Requirement: 7,
				Reward: domain.Reward{XP: 500, Points: 1000},
			},
			Progress: func(s domain.ProgressionState, _ int) int {
				if s.AttendanceStreak >= 7 && s.WorkoutsCompleted >= 7 {
					return 7
				}
				return s.AttendanceStreak
			},
		},
	}
}
