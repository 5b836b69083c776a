package domain

import "time"

// ─── Progression State ──────────────────────────────────────────────────────

// ManualLogLimit caps manual workout entries per calendar day.
const ManualLogLimit = 5

// ProgressionState is the single root aggregate for one user. Engine
// operations take it by value and return a new one; Clone before mutating.
type ProgressionState struct {
	Level     int   `json:"level"`
	CurrentXP int64 `json:"current_xp"`
	TotalXP   int64 `json:"total_xp"`
	Points    int64 `json:"points"`

	WorkoutsCompleted int     `json:"workouts_completed"`
	CurrentStreak     int     `json:"current_streak"`
	AttendanceStreak  int     `json:"attendance_streak"`
	WorkoutDates      []DayID `json:"workout_dates"`
	AttendanceDates   []DayID `json:"attendance_dates"`
	LastWorkoutDate   *DayID  `json:"last_workout_date"`

	CompletedDays       map[DayID]bool `json:"completed_days"`
	ManualWorkoutCounts map[DayID]int  `json:"manual_workout_counts"`
	ManualWorkoutLogs   []ManualLog    `json:"manual_workout_logs"`

	Body BodyStats `json:"body"`
	Diet DietLog   `json:"diet"`

	Orders          []Order          `json:"orders"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`

	CustomPrograms    []Program `json:"custom_programs"`
	ActiveProgram     string    `json:"active_program,omitempty"`
	CurrentWorkoutDay string    `json:"current_workout_day,omitempty"`

	Achievements []Achievement `json:"achievements"`
	MonsterLevel int           `json:"monster_level"`
}

// ManualLog is one ad-hoc workout entry recorded outside a battle session.
type ManualLog struct {
	Day      DayID  `json:"day"`
	Exercise string `json:"exercise"`
	Sets     int    `json:"sets"`
	Reps     int    `json:"reps"`
}

// ─── Body / Diet Types ──────────────────────────────────────────────────────

// BodyStats are the user's last two body measurements. Base values hold the
// previous measurement so callers can render a delta.
type BodyStats struct {
	MuscleMass       float64  `json:"muscle_mass"`
	BodyFat          float64  `json:"body_fat"`
	BaseMuscleMass   float64  `json:"base_muscle_mass"`
	BaseBodyFat      float64  `json:"base_body_fat"`
	Height           float64  `json:"height"` // cm
	Weight           float64  `json:"weight"` // kg
	TargetWeight     *float64 `json:"target_weight,omitempty"`
	TargetMuscleMass *float64 `json:"target_muscle_mass,omitempty"`
	TargetBodyFat    *float64 `json:"target_body_fat,omitempty"`
}

// Meal is one logged meal. Evaluation is free text supplied by the caller.
type Meal struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Time       string  `json:"time"`
	Day        DayID   `json:"day"`
	Evaluation string  `json:"evaluation,omitempty"`
}

// DietLog tracks one day's intake against targets plus the full history.
// Day is the calendar day the intake totals belong to.
type DietLog struct {
	Day              DayID   `json:"last_diet_date,omitempty"`
	DailyCalories    float64 `json:"daily_calories"`
	TargetCalories   float64 `json:"target_calories"`
	DailyProtein     float64 `json:"daily_protein"`
	TargetProtein    float64 `json:"target_protein"`
	MealsToday       []Meal  `json:"meals_today"`
	MealHistory      []Meal  `json:"meal_history"`
	ProteinGoalDates []DayID `json:"protein_goal_dates"`
}

// ─── Shop Types ─────────────────────────────────────────────────────────────

// OrderStatus tracks an order through an external fulfillment flow.
type OrderStatus string

const (
	OrderPreparing OrderStatus = "preparing"
	OrderShipping  OrderStatus = "shipping"
	OrderDelivered OrderStatus = "delivered"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPreparing, OrderShipping, OrderDelivered:
		return true
	}
	return false
}

// Order is a points purchase.
type Order struct {
	ID          string      `json:"id"`
	ItemID      string      `json:"item_id"`
	ItemName    string      `json:"item_name"`
	ItemImage   string      `json:"item_image"`
	Points      int64       `json:"points"`
	Status      OrderStatus `json:"status"`
	OrderedAt   time.Time   `json:"ordered_at"`
	DeliveredAt *time.Time  `json:"delivered_at"`
}

// ShopItem is the catalog entry a caller wants to buy.
type ShopItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ShippingAddress is where orders are sent.
type ShippingAddress struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	ZipCode       string `json:"zip_code"`
	Address       string `json:"address"`
	DetailAddress string `json:"detail_address"`
}

// ─── Program Types ──────────────────────────────────────────────────────────

// Program is a user-saved weekly workout plan.
type Program struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   time.Time    `json:"created_at"`
	FocusAreas  []string     `json:"focus_areas"`
	Level       string       `json:"level"`
	DaysPerWeek int          `json:"days_per_week"`
	Days        []ProgramDay `json:"days"`
}

// ProgramDay is one weekday of a program. Day is an English weekday name
// ("Monday") as produced by time.Weekday.String.
type ProgramDay struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// ─── Defaults ───────────────────────────────────────────────────────────────

// DefaultProgressionState returns a fresh state for a new user. The
// achievement catalog is supplied by the caller so the domain package stays
// free of rule definitions.
func DefaultProgressionState(catalog []Achievement) ProgressionState {
	achievements := make([]Achievement, len(catalog))
	copy(achievements, catalog)
	return ProgressionState{
		Level:               1,
		WorkoutDates:        []DayID{},
		AttendanceDates:     []DayID{},
		CompletedDays:       map[DayID]bool{},
		ManualWorkoutCounts: map[DayID]int{},
		ManualWorkoutLogs:   []ManualLog{},
		Body: BodyStats{
			MuscleMass:     25.0,
			BodyFat:        22.0,
			BaseMuscleMass: 25.0,
			BaseBodyFat:    22.0,
			Height:         170,
			Weight:         70,
		},
		Diet: DietLog{
			TargetCalories:   2500,
			TargetProtein:    150,
			MealsToday:       []Meal{},
			MealHistory:      []Meal{},
			ProteinGoalDates: []DayID{},
		},
		Orders:         []Order{},
		CustomPrograms: []Program{},
		Achievements:   achievements,
		MonsterLevel:   1,
	}
}

// Clone returns a deep copy so the receiver can be kept as a snapshot.
func (s ProgressionState) Clone() ProgressionState {
	out := s

	out.WorkoutDates = append([]DayID(nil), s.WorkoutDates...)
	out.AttendanceDates = append([]DayID(nil), s.AttendanceDates...)
	if s.LastWorkoutDate != nil {
		d := *s.LastWorkoutDate
		out.LastWorkoutDate = &d
	}

	out.CompletedDays = make(map[DayID]bool, len(s.CompletedDays))
	for k, v := range s.CompletedDays {
		out.CompletedDays[k] = v
	}
	out.ManualWorkoutCounts = make(map[DayID]int, len(s.ManualWorkoutCounts))
	for k, v := range s.ManualWorkoutCounts {
		out.ManualWorkoutCounts[k] = v
	}
	out.ManualWorkoutLogs = append([]ManualLog(nil), s.ManualWorkoutLogs...)

	out.Body = s.Body.clone()
	out.Diet.MealsToday = append([]Meal(nil), s.Diet.MealsToday...)
	out.Diet.MealHistory = append([]Meal(nil), s.Diet.MealHistory...)
	out.Diet.ProteinGoalDates = append([]DayID(nil), s.Diet.ProteinGoalDates...)

	out.Orders = make([]Order, len(s.Orders))
	for i, o := range s.Orders {
		if o.DeliveredAt != nil {
			t := *o.DeliveredAt
			o.DeliveredAt = &t
		}
		out.Orders[i] = o
	}
	if s.ShippingAddress != nil {
		a := *s.ShippingAddress
		out.ShippingAddress = &a
	}

	out.CustomPrograms = make([]Program, len(s.CustomPrograms))
	for i, p := range s.CustomPrograms {
		out.CustomPrograms[i] = p.clone()
	}

	out.Achievements = make([]Achievement, len(s.Achievements))
	for i, a := range s.Achievements {
		if a.CompletedAt != nil {
			t := *a.CompletedAt
			a.CompletedAt = &t
		}
		out.Achievements[i] = a
	}
	return out
}

func (b BodyStats) clone() BodyStats {
	out := b
	out.TargetWeight = cloneFloat(b.TargetWeight)
	out.TargetMuscleMass = cloneFloat(b.TargetMuscleMass)
	out.TargetBodyFat = cloneFloat(b.TargetBodyFat)
	return out
}

func (p Program) clone() Program {
	out := p
	out.FocusAreas = append([]string(nil), p.FocusAreas...)
	out.Days = make([]ProgramDay, len(p.Days))
	for i, d := range p.Days {
		d.Exercises = append([]Exercise(nil), d.Exercises...)
		out.Days[i] = d
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// FindAchievement returns the index of the achievement with id, or -1.
func (s ProgressionState) FindAchievement(id string) int {
	for i, a := range s.Achievements {
		if a.ID == id {
			return i
		}
	}
	return -1
}
