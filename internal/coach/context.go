package coach

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rkahn/rundash/internal/models"
	"github.com/rkahn/rundash/internal/timeutil"
)

// maxThisWeekRuns bounds how many current-week runs are described in
// the context, to keep the injected history small.
const maxThisWeekRuns = 5

// ContextInput is everything the assembler renders. GoalMi is the
// explicit goal from settings and takes precedence over the goal
// embedded in Week; zero means unset.
type ContextInput struct {
	Activities []models.Activity
	Week       *models.WeekSummary
	Weather    []models.WeatherHour
	Plan       []models.PlanItem
	Profile    *models.Profile
	GoalMi     float64
}

// BuildContext renders the coaching context: one fact per line, fixed
// order, lines with no source data omitted. Pure and deterministic for
// a given now: identical inputs at the same instant yield an
// identical string.
func BuildContext(in ContextInput, now time.Time) string {
	parts := []string{
		fmt.Sprintf("Today is %s, %s.", now.Format("Monday"), now.Format("3:04 PM")),
		weekPositionLine(now),
	}

	if in.Week != nil {
		parts = append(parts, mileageLine(in.Week, in.GoalMi))
	}

	if line, ok := remainingPlanLine(in.Plan); ok {
		parts = append(parts, line)
	}

	parts = append(parts, activityLines(in.Activities, now)...)
	parts = append(parts, weatherLines(in.Weather)...)

	return strings.Join(parts, "\n")
}

// weekPositionLine states how many days remain in the Monday–Sunday
// week and names them, with grammar matching the count.
func weekPositionLine(now time.Time) string {
	remaining := timeutil.RemainingDays(now)
	n := len(remaining)
	verb, plural := "are", "s"
	if n == 1 {
		verb, plural = "is", ""
	}
	return fmt.Sprintf(
		"The training week runs Monday through Sunday. There %s %d day%s remaining in the week (%s).",
		verb, n, plural, strings.Join(remaining, ", "),
	)
}

func mileageLine(week *models.WeekSummary, goalMi float64) string {
	goal := goalMi
	if goal <= 0 {
		goal = week.GoalMi
	}
	remaining := goal - week.TotalMi
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("Weekly mileage: %.1f of %s mi goal (%.1f mi remaining)",
		week.TotalMi, trimFloat(goal), remaining)
}

func remainingPlanLine(plan []models.PlanItem) (string, bool) {
	var remaining []string
	for _, p := range plan {
		if p.Count > 0 {
			remaining = append(remaining, fmt.Sprintf("%s (×%d)", p.Type, p.Count))
		}
	}
	if len(remaining) == 0 {
		return "", false
	}
	return "Remaining plan items: " + strings.Join(remaining, ", "), true
}

// activityLines partitions activities against the current week's
// Monday boundary and renders the same-day flag, the this-week run
// list, and a single most-recent previous-week run. Activities with
// unparseable timestamps land in the previous-week bucket.
func activityLines(activities []models.Activity, now time.Time) []string {
	monday, _ := timeutil.WeekBounds(now)

	var thisWeek, previous []models.Activity
	todayMi := 0.0
	ranToday := false
	for _, a := range activities {
		start, ok := a.StartTime(now.Location())
		if !ok {
			previous = append(previous, a)
			continue
		}
		if timeutil.SameDay(start, now) {
			ranToday = true
			todayMi += a.DistanceMi
		}
		if !start.Before(monday) {
			thisWeek = append(thisWeek, a)
		} else {
			previous = append(previous, a)
		}
	}

	var lines []string
	if ranToday {
		lines = append(lines, fmt.Sprintf(
			"RAN TODAY: Yes — %.1f mi already completed today. Today's running is done; do not suggest more running today.",
			todayMi))
	} else {
		lines = append(lines, "RAN TODAY: No — no run has been logged yet today.")
	}

	if len(thisWeek) > 0 {
		descs := make([]string, 0, maxThisWeekRuns)
		for _, a := range thisWeek {
			if len(descs) == maxThisWeekRuns {
				break
			}
			descs = append(descs, fmt.Sprintf("%s (%s, %s)", title(a), distanceLabel(a), orUnknown(a.Pace)))
		}
		lines = append(lines, "This week's runs: "+strings.Join(descs, "; "))
	} else {
		lines = append(lines, "No runs yet this week.")
	}

	if len(previous) > 0 {
		// Lists arrive newest-first, so the first previous-week entry
		// is the most recent one.
		a := previous[0]
		dateLabel := ""
		if start, ok := a.StartTime(now.Location()); ok {
			dateLabel = " on " + start.Format("Monday Jan 2")
		}
		lines = append(lines, fmt.Sprintf(
			"Most recent previous-week run: %s — %s in %s at %s pace%s",
			title(a), distanceLabel(a), orUnknown(a.MovingTime), orUnknown(a.Pace), dateLabel))
	}

	return lines
}

// weatherLines partitions hours by day offset and summarizes each
// non-empty partition independently.
func weatherLines(hours []models.WeatherHour) []string {
	var today, tomorrow []models.WeatherHour
	for _, h := range hours {
		switch h.DayOffset {
		case 0:
			today = append(today, h)
		case 1:
			tomorrow = append(tomorrow, h)
		}
	}

	var lines []string
	if line, ok := summarizeHours(today, "Today's"); ok {
		lines = append(lines, line)
	}
	if line, ok := summarizeHours(tomorrow, "Tomorrow's"); ok {
		lines = append(lines, line)
	}
	return lines
}

// summarizeHours picks a representative midday sample (an hour whose
// label contains "11" or "12", else the middle of the list) and folds
// the partition into one line: temperature span, representative wind,
// max rain chance, sun/cloud call.
func summarizeHours(hours []models.WeatherHour, label string) (string, bool) {
	if len(hours) == 0 {
		return "", false
	}

	mid := hours[0]
	found := false
	for _, h := range hours {
		if strings.Contains(h.Time, "11") || strings.Contains(h.Time, "12") {
			mid = h
			found = true
			break
		}
	}
	if !found && len(hours) > 1 {
		mid = hours[len(hours)/2]
	}

	low, high := hours[0].TempF, hours[0].TempF
	maxRain := 0
	for _, h := range hours {
		if h.TempF < low {
			low = h.TempF
		}
		if h.TempF > high {
			high = h.TempF
		}
		if h.RainPct > maxRain {
			maxRain = h.RainPct
		}
	}

	sky := "cloudy"
	if mid.Condition == models.ConditionSun {
		sky = "sunny"
	}

	return fmt.Sprintf("%s weather: %d–%d°F, wind %s, rain up to %d%%, %s",
		label, low, high, orUnknown(mid.Wind), maxRain, sky), true
}

func title(a models.Activity) string {
	if a.Title == "" {
		return "Run"
	}
	return a.Title
}

func distanceLabel(a models.Activity) string {
	if a.Distance != "" {
		return a.Distance
	}
	return fmt.Sprintf("%.1f mi", a.DistanceMi)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// trimFloat renders a float without trailing zeros ("50", "52.5").
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
