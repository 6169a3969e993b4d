package models

const (
	// DefaultWeeklyGoalMi is the weekly mileage goal before the user sets one
	DefaultWeeklyGoalMi = 50
	// DefaultShoeMaxMiles is the retirement mileage before the user sets one
	DefaultShoeMaxMiles = 300
	// DefaultVO2 is a placeholder VO2max until the user sets one
	DefaultVO2 = 52
)

// Settings is the single-user preference record persisted as a JSON
// file. Plan is optional; a nil plan means no training plan is set.
type Settings struct {
	GoalMi        float64            `json:"goalMi" validate:"gt=0"`
	VO2           float64            `json:"vo2" validate:"gte=0"`
	ShoeMaxMiles  map[string]float64 `json:"shoeMaxMiles,omitempty"`
	FavoriteShoes []string           `json:"favoriteShoes,omitempty"`
	// Plan must not carry omitempty: an empty-but-present plan means
	// "all planned work done" and reads differently from no plan at all.
	Plan []PlanItem `json:"plan" validate:"omitempty,dive"`
}

// DefaultSettings returns the settings used before any are saved.
func DefaultSettings() Settings {
	return Settings{
		GoalMi: DefaultWeeklyGoalMi,
		VO2:    DefaultVO2,
	}
}

// SettingsUpdate is a partial settings mutation; nil fields are left
// unchanged when merged.
type SettingsUpdate struct {
	GoalMi        *float64           `json:"goalMi,omitempty" validate:"omitempty,gt=0"`
	VO2           *float64           `json:"vo2,omitempty" validate:"omitempty,gte=0"`
	ShoeMaxMiles  map[string]float64 `json:"shoeMaxMiles,omitempty"`
	FavoriteShoes []string           `json:"favoriteShoes,omitempty"`
	Plan          []PlanItem         `json:"plan,omitempty" validate:"omitempty,dive"`
}

// Apply merges the update into s.
func (u SettingsUpdate) Apply(s *Settings) {
	if u.GoalMi != nil {
		s.GoalMi = *u.GoalMi
	}
	if u.VO2 != nil {
		s.VO2 = *u.VO2
	}
	if u.ShoeMaxMiles != nil {
		s.ShoeMaxMiles = u.ShoeMaxMiles
	}
	if u.FavoriteShoes != nil {
		s.FavoriteShoes = u.FavoriteShoes
	}
	if u.Plan != nil {
		s.Plan = u.Plan
	}
}
