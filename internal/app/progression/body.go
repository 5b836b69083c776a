package progression

import (
	"math"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// BodyInput is a new body measurement.
type BodyInput struct {
	MuscleMass float64 `json:"muscle_mass"`
	BodyFat    float64 `json:"body_fat"`
	Height     float64 `json:"height"`
	Weight     float64 `json:"weight"`
}

// Validate rejects measurements outside plausible human ranges.
func (in BodyInput) Validate() error {
	checks := []struct {
		field    string
		v        float64
		min, max float64
	}{
		{"muscle_mass", in.MuscleMass, 0, 150},
		{"body_fat", in.BodyFat, 0, 80},
		{"height", in.Height, 50, 260},
		{"weight", in.Weight, 10, 400},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || c.v < c.min || c.v > c.max {
			return domain.Invalid(c.field, "must be between %g and %g, got %g", c.min, c.max, c.v)
		}
	}
	return nil
}

// UpdateBodyStats records a measurement. The previous muscle mass and body
// fat become the base values.
func UpdateBodyStats(s domain.ProgressionState, in BodyInput) (domain.ProgressionState, error) {
	if err := in.Validate(); err != nil {
		return s, err
	}
	s = s.Clone()
	s.Body.BaseMuscleMass = s.Body.MuscleMass
	s.Body.BaseBodyFat = s.Body.BodyFat
	s.Body.MuscleMass = in.MuscleMass
	s.Body.BodyFat = in.BodyFat
	s.Body.Height = in.Height
	s.Body.Weight = in.Weight
	return s, nil
}

// BMI returns weight / height² (height in metres), or 0 when unknown.
func BMI(s domain.ProgressionState) float64 {
	if s.Body.Height <= 0 || s.Body.Weight <= 0 {
		return 0
	}
	m := s.Body.Height / 100
	return s.Body.Weight / (m * m)
}
