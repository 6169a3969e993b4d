package strava

import (
	"fmt"
	"math"
	"time"

	"github.com/rkahn/rundash/internal/models"
)

const metersPerMile = 1609.34

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// roundInt rounds to the nearest integer.
func roundInt(v float64) int {
	return int(math.Round(v))
}

// MetersToMiles converts meters to miles rounded to one decimal.
func MetersToMiles(m float64) float64 {
	return math.Round(m/metersPerMile*10) / 10
}

// MetersToFeet converts meters to whole feet.
func MetersToFeet(m float64) int {
	return int(math.Round(m * 3.28084))
}

// SpeedToPace converts meters/second to a "7:42 /mi" pace string.
func SpeedToPace(metersPerSec float64) string {
	if metersPerSec <= 0 {
		return "—"
	}
	secsPerMile := metersPerMile / metersPerSec
	mins := int(secsPerMile) / 60
	secs := int(secsPerMile) % 60
	return fmt.Sprintf("%d:%02d /mi", mins, secs)
}

// SplitPace converts meters/second to a bare "7:42" split pace.
func SplitPace(metersPerSec float64) string {
	if metersPerSec <= 0 {
		return "—"
	}
	secsPerMile := metersPerMile / metersPerSec
	mins := int(secsPerMile) / 60
	secs := int(secsPerMile) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// FormatDuration renders seconds as "1h 42m" or "35m".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "—"
	}
	hours := seconds / 3600
	mins := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// FormatDate renders a local start timestamp as "7:24 AM · Feb 8".
func FormatDate(startDateLocal string, loc *time.Location) string {
	t, ok := models.ParseLocalTime(startDateLocal, loc)
	if !ok {
		return ""
	}
	return t.Format("3:04 PM · Jan 2")
}

// workoutTypeLabels maps Strava's workout_type integers to run-type
// labels. Default (0) and Race (1) carry no label.
var workoutTypeLabels = map[int]string{
	2: "Easy Long Run",
	3: "Tempo Run",
}

// RunTypeLabel maps a Strava workout_type to a dashboard run-type
// label, or "" when none applies.
func RunTypeLabel(workoutType *int) string {
	if workoutType == nil {
		return ""
	}
	return workoutTypeLabels[*workoutType]
}
