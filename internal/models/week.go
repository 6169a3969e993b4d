package models

// WeekDay is one day bubble in the current-week strip.
type WeekDay struct {
	Day   string  `json:"day"`
	Date  int     `json:"date"`
	Miles float64 `json:"miles"`
	Sport string  `json:"sport,omitempty"`
	Today bool    `json:"today"`
}

// WeekSummary is the Monday–Sunday aggregate for the current week.
// Derived per request, never persisted.
type WeekSummary struct {
	WeekDays []WeekDay `json:"weekDays"`
	TotalMi  float64   `json:"totalMi"`
	GoalMi   float64   `json:"goalMi"`
}

// PastWeek is one previous week's aggregate.
type PastWeek struct {
	Label string     `json:"label"`
	Miles float64    `json:"miles"`
	Time  string     `json:"time"`
	Days  []DayMiles `json:"days"`
}

// DayMiles is one day bar inside a past-week summary.
type DayMiles struct {
	Day   string  `json:"d"`
	Miles float64 `json:"mi"`
}
