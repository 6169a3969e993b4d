package models

import "time"

// localTimeLayout is the layout Strava uses for start_date_local once
// the trailing "Z" is stripped. The value is already in the athlete's
// zone; no conversion is applied beyond attaching the configured one.
const localTimeLayout = "2006-01-02T15:04:05"

// Activity is one completed run, shaped for the dashboard. Formatted
// fields (Distance, Pace, MovingTime) are presentation strings built
// from the numeric fields at transform time; core logic uses the
// numeric fields only.
type Activity struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Date           string  `json:"date"`
	Distance       string  `json:"distance"`
	DistanceMi     float64 `json:"distance_raw"`
	Pace           string  `json:"pace"`
	MovingTime     string  `json:"time"`
	Elevation      string  `json:"elev"`
	Shoe           string  `json:"shoe,omitempty"`
	Device         string  `json:"device,omitempty"`
	RunType        string  `json:"runType,omitempty"`
	Sport          string  `json:"sport"`
	Splits         []Split `json:"splits,omitempty"`
	Calories       float64 `json:"cal"`
	Effort         *int    `json:"eff,omitempty"`
	AvgHeartRate   *int    `json:"avg_hr,omitempty"`
	MaxHeartRate   *int    `json:"max_hr,omitempty"`
	AvgCadence     *int    `json:"avg_cadence,omitempty"`
	StartDateLocal string  `json:"start_date_local"`
	Polyline       string  `json:"polyline,omitempty"`
	City           string  `json:"city,omitempty"`
}

// Split is one mile (or km) split of an activity.
type Split struct {
	Mile        int     `json:"m"`
	Pace        string  `json:"p"`
	Elevation   string  `json:"e"`
	DistanceM   float64 `json:"dist"`
	MovingTimeS int     `json:"moving_time"`
}

// StartTime parses the activity's local start timestamp in loc.
// Returns false when the timestamp is missing or malformed.
func (a Activity) StartTime(loc *time.Location) (time.Time, bool) {
	return ParseLocalTime(a.StartDateLocal, loc)
}

// ParseLocalTime parses a Strava-style local timestamp
// ("2026-02-11T07:24:00" with or without a trailing "Z") in loc.
func ParseLocalTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if s[len(s)-1] == 'Z' {
		s = s[:len(s)-1]
	}
	t, err := time.ParseInLocation(localTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
