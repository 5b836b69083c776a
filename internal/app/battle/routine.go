package battle

import "github.com/deukgeun/deukgeun/internal/domain"

// DefaultRoutine is the beginner full-body day used when no program is
// active and the caller names no exercises.
func DefaultRoutine() []domain.Exercise {
	return []domain.Exercise{
		{ID: "push-up", Name: "푸시업", Sets: 4, Reps: 12, MuscleGroup: "가슴", Difficulty: "초급"},
		{ID: "squat", Name: "스쿼트", Sets: 4, Reps: 12, MuscleGroup: "하체", Difficulty: "초급"},
		{ID: "plank", Name: "플랭크", Sets: 4, Reps: 12, MuscleGroup: "복근", Difficulty: "초급"},
		{ID: "lunge", Name: "런지", Sets: 4, Reps: 12, MuscleGroup: "하체", Difficulty: "초급"},
		{ID: "burpee", Name: "버피", Sets: 4, Reps: 12, MuscleGroup: "전신", Difficulty: "초급"},
	}
}
