// Package battle runs the set-by-set workout session: every completed set
// strikes a leveled boss, defeats pay out through the progression engine and
// an abandoned session rolls back to the snapshot taken at its first set.
package battle

import (
	"math"
	"math/rand"
	"time"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// ─── Randomness ─────────────────────────────────────────────────────────────

// Source supplies uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// NewSource returns a math/rand source. A zero seed picks one from the clock.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ─── Damage ─────────────────────────────────────────────────────────────────

const (
	// CriticalRoll is the draw a set must exceed to land a critical hit.
	CriticalRoll = 0.7
	// CriticalMultiplier scales a critical hit.
	CriticalMultiplier = 1.5

	jitterMin  = 0.9
	jitterSpan = 0.2
)

// BaseDamage is the un-jittered strength of a set.
func BaseDamage(weight float64, reps int) float64 {
	return weight*0.5 + float64(reps)*2
}

// PreviewDamage is the whole-number damage shown before a set is logged.
func PreviewDamage(weight float64, reps int) int {
	return int(math.Floor(BaseDamage(weight, reps)))
}

// RollDamage draws the critical roll and then the jitter, in that order.
func RollDamage(src Source, weight float64, reps int) (int, bool) {
	critical := src.Float64() > CriticalRoll
	mult := 1.0
	if critical {
		mult = CriticalMultiplier
	}
	jitter := jitterMin + src.Float64()*jitterSpan
	return int(math.Floor(BaseDamage(weight, reps) * mult * jitter)), critical
}

// ─── Boss ───────────────────────────────────────────────────────────────────

const (
	BaseBossHP     = 1000
	BossHPPerLevel = 200
)

// MaxHP returns the boss HP pool at level.
func MaxHP(level int) int {
	if level < 1 {
		level = 1
	}
	return BaseBossHP + (level-1)*BossHPPerLevel
}

// NewBoss builds the boss for level with the given remaining HP, clamped to
// the pool.
func NewBoss(level, hp int) domain.Boss {
	if level < 1 {
		level = 1
	}
	max := MaxHP(level)
	if hp < 0 {
		hp = 0
	}
	if hp > max {
		hp = max
	}
	return domain.Boss{Level: level, CurrentHP: hp, MaxHP: max}
}

// DefeatReward is the payout for beating a boss of level.
func DefeatReward(level int) domain.Reward {
	return domain.Reward{XP: int64(level) * 50, Points: int64(level) * 20}
}

// ─── Session Rewards ────────────────────────────────────────────────────────

var (
	// BaseSessionReward is paid on top of the workout-completion points.
	BaseSessionReward = domain.Reward{XP: 500}
	// HiddenMissionReward is paid for the extra set of an accepted mission.
	HiddenMissionReward = domain.Reward{XP: 150, Points: 50}
)

// BonusReward returns the payout of a bonus session of count exercises.
func BonusReward(count int) domain.Reward {
	switch {
	case count <= 1:
		return domain.Reward{XP: 150, Points: 30}
	case count == 2:
		return domain.Reward{XP: 250, Points: 50}
	case count == 3:
		return domain.Reward{XP: 350, Points: 70}
	default:
		return domain.Reward{XP: 450, Points: 90}
	}
}
