// Package metrics provides Prometheus metrics for deukgeun.
// Counters and gauges for battle sets, bosses, sessions, the XP/points
// ledger, achievements and manual logs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Battle ─────────────────────────────────────────────────────────────────

// SetsCompleted tracks logged battle sets by session kind.
var SetsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "sets_completed_total",
	Help:      "Total battle sets logged.",
}, []string{"kind"})

// DamageDealt tracks damage per set.
var DamageDealt = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "deukgeun",
	Name:      "set_damage",
	Help:      "Damage dealt per set.",
	Buckets:   []float64{10, 25, 50, 75, 100, 150, 200, 300, 500},
})

// CriticalHits tracks critical sets.
var CriticalHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "critical_hits_total",
	Help:      "Total critical sets.",
})

// BossesDefeated tracks defeated bosses by level.
var BossesDefeated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "bosses_defeated_total",
	Help:      "Total bosses defeated, by boss level.",
}, []string{"level"})

// MonsterLevel tracks the current boss level.
var MonsterLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "deukgeun",
	Name:      "monster_level",
	Help:      "Current boss level.",
})

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsFinished tracks sessions by kind and outcome.
var SessionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "sessions_total",
	Help:      "Total finished sessions by kind and outcome.",
}, []string{"kind", "outcome"})

// HiddenMissions tracks hidden mission offers and their resolution.
var HiddenMissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "hidden_missions_total",
	Help:      "Hidden mission events (offered, accepted, declined, completed).",
}, []string{"event"})

// ─── Ledger ─────────────────────────────────────────────────────────────────

// XPGranted tracks total XP granted.
var XPGranted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "xp_granted_total",
	Help:      "Total XP granted, achievement rewards included.",
})

// PointsGranted tracks total points granted.
var PointsGranted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "points_granted_total",
	Help:      "Total points granted.",
})

// PointsBalance tracks the current point balance.
var PointsBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "deukgeun",
	Name:      "points_balance_current",
	Help:      "Current point balance.",
})

// Level tracks the current user level (1-5).
var Level = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "deukgeun",
	Name:      "level",
	Help:      "Current user level (1-5).",
})

// ─── Achievements / Logs ────────────────────────────────────────────────────

// AchievementsUnlocked tracks unlocks by achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievement unlocks by id.",
}, []string{"id"})

// ManualLogs tracks manual workout log attempts by result.
var ManualLogs = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "manual_logs_total",
	Help:      "Manual workout log attempts (accepted, capped, invalid).",
}, []string{"result"})

// StreakRepairs tracks stale streak caches repaired on recompute.
var StreakRepairs = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "streak_repairs_total",
	Help:      "Stored streak values found stale and recomputed.",
})

// ─── Storage ────────────────────────────────────────────────────────────────

// SaveFailures tracks failed state writes.
var SaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "save_failures_total",
	Help:      "Total failed progression writes.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests tracks API requests by method and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "deukgeun",
	Name:      "http_requests_total",
	Help:      "Total API requests by method and status.",
}, []string{"method", "status"})

// HTTPRequestDuration tracks API latency.
var HTTPRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "deukgeun",
	Name:      "http_request_duration_seconds",
	Help:      "API request latency.",
	Buckets:   prometheus.DefBuckets,
})
